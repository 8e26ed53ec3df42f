// Package errors turns failures from the catalog API and the generation
// pipeline into messages and recovery actions the UI can present.
package errors

import (
	"fmt"
	"time"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
)

// ErrorType categorizes failures outside the generation pipeline
type ErrorType string

const (
	ErrorTypeCatalog       ErrorType = "catalog"
	ErrorTypeImport        ErrorType = "import"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeState         ErrorType = "state"
)

// ErrorSeverity indicates how loudly an error is logged
type ErrorSeverity string

const (
	SeverityLow    ErrorSeverity = "low"
	SeverityMedium ErrorSeverity = "medium"
	SeverityHigh   ErrorSeverity = "high"
)

// ContextualError carries a user-facing message next to the technical cause
type ContextualError struct {
	Type        ErrorType
	Severity    ErrorSeverity
	Message     string
	UserMessage string
	Operation   string
	Context     map[string]interface{}
	Timestamp   time.Time
	Cause       error
}

func (e *ContextualError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *ContextualError) Unwrap() error {
	return e.Cause
}

// GetUserMessage returns the message meant for the screen
func (e *ContextualError) GetUserMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	return e.Message
}

// GetRecoveryActions returns the actions offered for the error type
func (e *ContextualError) GetRecoveryActions() []interfaces.Action {
	switch e.Type {
	case ErrorTypeCatalog:
		return []interfaces.Action{RetryFetchAction, DismissAction}
	case ErrorTypeImport:
		return []interfaces.Action{UploadAgainAction, DismissAction}
	default:
		return []interfaces.Action{DismissAction}
	}
}

// ErrorBuilder assembles a ContextualError and logs it on Build
type ErrorBuilder struct {
	err    *ContextualError
	logger *logging.Logger
}

// NewErrorBuilder starts an error of the given type
func NewErrorBuilder(errorType ErrorType, component string) *ErrorBuilder {
	return &ErrorBuilder{
		err: &ContextualError{
			Type:      errorType,
			Severity:  SeverityMedium,
			Context:   make(map[string]interface{}),
			Timestamp: time.Now(),
		},
		logger: logging.GetGlobalLogger().WithComponent(component),
	}
}

// WithSeverity sets the error severity level
func (eb *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	eb.err.Severity = severity
	return eb
}

// WithMessage sets the technical error message
func (eb *ErrorBuilder) WithMessage(message string) *ErrorBuilder {
	eb.err.Message = message
	return eb
}

// WithUserMessage sets a user-friendly error message
func (eb *ErrorBuilder) WithUserMessage(userMessage string) *ErrorBuilder {
	eb.err.UserMessage = userMessage
	return eb
}

// WithOperation sets the operation that failed
func (eb *ErrorBuilder) WithOperation(operation string) *ErrorBuilder {
	eb.err.Operation = operation
	return eb
}

// WithCause sets the underlying error
func (eb *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	eb.err.Cause = cause
	return eb
}

// WithContext adds a diagnostic value
func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	eb.err.Context[key] = value
	return eb
}

// Build logs the error at a level matching its severity and returns it
func (eb *ErrorBuilder) Build() *ContextualError {
	args := []interface{}{
		"error_type", eb.err.Type,
		"severity", eb.err.Severity,
		"operation", eb.err.Operation,
	}
	for k, v := range eb.err.Context {
		args = append(args, "ctx_"+k, v)
	}
	if eb.err.Cause != nil {
		args = append(args, "cause", eb.err.Cause.Error())
	}

	switch eb.err.Severity {
	case SeverityHigh:
		eb.logger.Error(eb.err.Message, args...)
	case SeverityMedium:
		eb.logger.Warn(eb.err.Message, args...)
	default:
		eb.logger.Info(eb.err.Message, args...)
	}
	return eb.err
}

// NewCatalogError starts an error for a failed product list operation
func NewCatalogError(component string) *ErrorBuilder {
	return NewErrorBuilder(ErrorTypeCatalog, component).WithSeverity(SeverityHigh)
}

// NewImportError starts an error for a failed upload
func NewImportError(component string) *ErrorBuilder {
	return NewErrorBuilder(ErrorTypeImport, component).WithSeverity(SeverityHigh)
}

// NewStateError starts an error for a failed flag write
func NewStateError(component string) *ErrorBuilder {
	return NewErrorBuilder(ErrorTypeState, component).WithSeverity(SeverityMedium)
}

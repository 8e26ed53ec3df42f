package errors

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/catalog-console/console/internal/generation"
	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	"github.com/catalog-console/console/internal/protocol"
)

// Commands carried by recovery actions
const (
	CommandRegenerate  = "regenerate"
	CommandDismiss     = "dismiss"
	CommandRetryFetch  = "retry_fetch"
	CommandUploadAgain = "upload_again"
)

var (
	RegenerateAction  = interfaces.Action{Name: "Regenerate", Command: CommandRegenerate, Type: "primary", Icon: "🔄", Key: "r"}
	DismissAction     = interfaces.Action{Name: "Dismiss", Command: CommandDismiss, Type: "cancel", Icon: "👌", Key: "esc"}
	RetryFetchAction  = interfaces.Action{Name: "Retry", Command: CommandRetryFetch, Type: "primary", Icon: "🔄", Key: "r"}
	UploadAgainAction = interfaces.Action{Name: "Upload Files", Command: CommandUploadAgain, Type: "alternative", Icon: "📁", Key: "u"}
)

// ProcessedError is an error prepared for display
type ProcessedError struct {
	Timestamp       time.Time
	Message         string
	Code            string
	Details         string
	RecoveryActions []interfaces.Action
}

// Handler converts errors into ProcessedErrors
type Handler struct {
	logger *logging.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.GetUILogger()
	}
	return &Handler{logger: logger}
}

// Process maps err to a message and recovery actions. It returns nil for a
// nil error and never panics.
func (h *Handler) Process(err error) *ProcessedError {
	if err == nil {
		return nil
	}

	processed := &ProcessedError{
		Timestamp: time.Now(),
		Code:      generation.Classify(err).String(),
		Details:   err.Error(),
	}
	retryable := []interfaces.Action{RegenerateAction, DismissAction}

	var validationErr *generation.ValidationError
	var networkErr *protocol.NetworkError
	var httpErr *protocol.HTTPError
	var contextual *ContextualError

	if stderrors.As(err, &contextual) {
		processed.Code = string(contextual.Type)
		processed.Message = contextual.GetUserMessage()
		processed.RecoveryActions = contextual.GetRecoveryActions()
		h.logger.Debug("Processed error", "code", processed.Code, "message", processed.Message)
		return processed
	}

	switch generation.Classify(err) {
	case generation.KindValidation:
		stderrors.As(err, &validationErr)
		processed.Message = fmt.Sprintf("Please fill in: %s", joinFields(validationErr.Fields))
		processed.RecoveryActions = []interfaces.Action{DismissAction}
	case generation.KindTimeout:
		processed.Message = generation.TimeoutMessage
		processed.RecoveryActions = retryable
	case generation.KindSoftFailure:
		processed.Message = generation.SoftFailureMessage
		processed.RecoveryActions = retryable
	case generation.KindGeneration:
		processed.Message = err.Error()
		processed.RecoveryActions = retryable
	case generation.KindNetwork:
		stderrors.As(err, &networkErr)
		processed.Message = "Could not reach the catalog API - check your connection"
		if networkErr.Err != nil {
			processed.Details = networkErr.Err.Error()
		}
		processed.RecoveryActions = retryable
	case generation.KindHTTP:
		stderrors.As(err, &httpErr)
		processed.Message = httpErr.Error()
		processed.RecoveryActions = retryable
	default:
		processed.Message = err.Error()
		processed.RecoveryActions = []interfaces.Action{DismissAction}
	}

	h.logger.Debug("Processed error", "code", processed.Code, "message", processed.Message)
	return processed
}

func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return "required fields"
	case 1:
		return fields[0]
	}
	out := ""
	for i, f := range fields {
		switch {
		case i == 0:
			out = f
		case i == len(fields)-1:
			out += " and " + f
		default:
			out += ", " + f
		}
	}
	return out
}

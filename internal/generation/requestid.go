package generation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var now = time.Now

// NewRequestID returns a fresh request identifier of the form
// req_<unix millis>_<12 random hex digits>. Every submission attempt gets its
// own identifier; a regeneration never reuses one.
func NewRequestID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("req_%d_%s", now().UnixMilli(), random)
}

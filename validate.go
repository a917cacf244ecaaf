package nucleus

import "fmt"

// MaxMessages is the largest conversation accepted by ValidateChatRequest.
const MaxMessages = 100

// ValidationReason identifies why a chat request is invalid.
type ValidationReason string

// Validation error reasons.
const (
	ErrNoMessages      ValidationReason = "no_messages"
	ErrTooManyMessages ValidationReason = "too_many_messages"
	ErrInvalidRole     ValidationReason = "invalid_role"
	ErrEmptyContent    ValidationReason = "empty_content"
	ErrLastNotUser     ValidationReason = "last_not_user"
)

// ValidationError describes a single validation failure in a chat request.
type ValidationError struct {
	Index  int              // Index of the offending message, -1 for request-level errors
	Reason ValidationReason // Why the request is invalid
	Role   string           // Offending role (for invalid_role errors)
	Count  int              // Actual message count (for too_many_messages errors)
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	switch e.Reason {
	case ErrNoMessages:
		return "messages must not be empty"
	case ErrTooManyMessages:
		return fmt.Sprintf("too many messages: %d (max %d)", e.Count, MaxMessages)
	case ErrInvalidRole:
		return fmt.Sprintf("message %d: invalid role %q (must be user or assistant)", e.Index, e.Role)
	case ErrEmptyContent:
		return fmt.Sprintf("message %d: content must not be empty", e.Index)
	case ErrLastNotUser:
		return "last message must be from the user"
	default:
		return fmt.Sprintf("message %d: invalid", e.Index)
	}
}

// ValidateChatRequest checks the shape of a conversation before it is sent to
// the model. Returns a slice of validation errors, or nil if the request is
// valid.
func ValidateChatRequest(req ChatRequest) []ValidationError {
	if len(req.Messages) == 0 {
		return []ValidationError{{Index: -1, Reason: ErrNoMessages}}
	}
	if len(req.Messages) > MaxMessages {
		return []ValidationError{{Index: -1, Reason: ErrTooManyMessages, Count: len(req.Messages)}}
	}

	var errs []ValidationError
	for i, m := range req.Messages {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			errs = append(errs, ValidationError{Index: i, Reason: ErrInvalidRole, Role: m.Role})
			continue
		}
		// Assistant turns may be empty when the model only called tools.
		if m.Role == RoleUser && m.Content == "" {
			errs = append(errs, ValidationError{Index: i, Reason: ErrEmptyContent})
		}
	}

	if last := req.Messages[len(req.Messages)-1]; last.Role != RoleUser {
		errs = append(errs, ValidationError{Index: len(req.Messages) - 1, Reason: ErrLastNotUser})
	}

	return errs
}

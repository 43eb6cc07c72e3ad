package relay

// Fixed user-facing validation messages.
const (
	MsgNoFile      = "No image file provided"
	MsgInvalidType = "Invalid file type. Only JPG, JPEG, PNG, and WEBP are allowed."
	MsgTooLarge    = "File too large. Maximum size is 5MB."
)

// ValidationError rejects a request before any provider call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

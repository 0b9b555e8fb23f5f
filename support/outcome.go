package support

// Status distinguishes authorized tool results from denials.
type Status string

const (
	StatusAuthorized Status = "authorized"
	StatusDenied     Status = "denied"
)

// Outcome is the result of a support tool: either an authorized value or a
// denial reason. Both carry the message shown to the model.
type Outcome struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Authorized wraps a successful tool result.
func Authorized(value string) Outcome { return Outcome{Status: StatusAuthorized, Message: value} }

// Denied wraps an authorization failure.
func Denied(reason string) Outcome { return Outcome{Status: StatusDenied, Message: reason} }

// IsAuthorized reports whether the tool action was permitted.
func (o Outcome) IsAuthorized() bool { return o.Status == StatusAuthorized }

// String returns the message, which is what text-based model adapters send
// back as the tool response.
func (o Outcome) String() string { return o.Message }

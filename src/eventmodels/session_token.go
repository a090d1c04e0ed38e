package eventmodels

type SessionToken struct {
	Value string `json:"token"`
}

func (t SessionToken) IsZero() bool {
	return t.Value == ""
}

// Prefix returns the first few characters of the token, safe to log.
func (t SessionToken) Prefix() string {
	const n = 10
	if len(t.Value) <= n {
		return t.Value
	}

	return t.Value[:n] + "..."
}

type ValidationOutcome string

const (
	ValidationRotated   ValidationOutcome = "rotated"
	ValidationUnchanged ValidationOutcome = "unchanged"
	ValidationRejected  ValidationOutcome = "rejected"
)

// ValidationResult is the outcome of checking the stored token with the platform.
// Rejections are a normal outcome, not an error.
type ValidationResult struct {
	Outcome    ValidationOutcome `json:"outcome"`
	StatusCode int               `json:"status_code,omitempty"`
	Detail     string            `json:"detail,omitempty"`
}

func (r ValidationResult) Valid() bool {
	return r.Outcome == ValidationRotated || r.Outcome == ValidationUnchanged
}

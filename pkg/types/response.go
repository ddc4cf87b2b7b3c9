package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the single error body shape returned by every route.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

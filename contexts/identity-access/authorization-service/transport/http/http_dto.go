package http

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DecisionDTO reports the outcome of an access check. NotFound decisions are
// reported as-is so callers can mirror the deny-without-revealing behavior.
type DecisionDTO struct {
	Allowed  bool   `json:"allowed"`
	Decision string `json:"decision"`
}

type DecisionResponse struct {
	Status string      `json:"status"`
	Data   DecisionDTO `json:"data"`
}

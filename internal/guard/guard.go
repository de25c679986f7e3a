// Package guard holds the request guards that sit in front of the
// betting and auth paths: rate limiting, idempotency, login lockout and
// a circuit breaker for outbound provider calls.
package guard

// Result is the outcome of a guard check.
type Result struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Guard   string `json:"guard,omitempty"`
}

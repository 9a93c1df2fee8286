package auth

import "fmt"

// AuthError reports a failed or malformed token issuance.
type AuthError struct {
	StatusCode int // 0 when the request never got a response
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("kis auth: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("kis auth: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }
func (e *AuthError) Cause() error  { return e.Err }

// SigningError reports a failed or malformed hash-key issuance.
type SigningError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *SigningError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("kis hashkey: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("kis hashkey: %v", e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }
func (e *SigningError) Cause() error  { return e.Err }

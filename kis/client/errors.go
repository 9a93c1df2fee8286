package client

import "fmt"

// RequestError reports a transport or decoding failure on a trading call,
// or a non-2xx answer from the broker. Business rejections inside a 2xx body
// are not errors.
type RequestError struct {
	Op         string
	TrID       string
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("kis %s (%s): status %d: %v", e.Op, e.TrID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("kis %s (%s): %v", e.Op, e.TrID, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
func (e *RequestError) Cause() error  { return e.Err }

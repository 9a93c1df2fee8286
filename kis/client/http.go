package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/kisgo/kis/types"
	sdkhttp "github.com/betbot/kisgo/pkg/sdk/http"
)

// get issues an unsigned read-only call.
func (c *Client) get(ctx context.Context, op, endpoint, trID string, params map[string]any) (*sdkhttp.Response, error) {
	return c.roundTrip(ctx, op, http.MethodGet, endpoint, trID, &sdkhttp.RequestOptions{
		Headers: c.session.AuthHeaders(trID),
		Params:  params,
	})
}

// post marshals payload once, has the session sign those bytes and sends the
// same bytes. Signing failures are returned as they come from the session.
func (c *Client) post(ctx context.Context, op, endpoint, trID string, payload any) (*sdkhttp.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &RequestError{Op: op, TrID: trID, Err: errors.Wrap(err, "marshal payload")}
	}
	raw := json.RawMessage(body)

	hash, err := c.session.SignPayload(ctx, raw)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string)
	for k, v := range c.session.AuthHeaders(trID) {
		headers[k] = v
	}
	headers[types.HeaderHashKey] = hash

	return c.roundTrip(ctx, op, http.MethodPost, endpoint, trID, &sdkhttp.RequestOptions{
		Headers: headers,
		Data:    raw,
	})
}

func (c *Client) roundTrip(ctx context.Context, op, method, endpoint, trID string, opt *sdkhttp.RequestOptions) (*sdkhttp.Response, error) {
	entry := c.log.WithFields(logrus.Fields{
		"op":     op,
		"tr_id":  trID,
		"req_id": uuid.NewString(),
	})

	start := time.Now()
	resp, err := c.transport.Do(ctx, method, endpoint, opt)
	if err != nil {
		entry.WithError(err).Warn("request failed")
		return nil, &RequestError{Op: op, TrID: trID, Err: err}
	}
	entry.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).String(),
	}).Debugf("%s %s", method, endpoint)

	if !resp.IsSuccess() {
		return nil, &RequestError{
			Op:         op,
			TrID:       trID,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
			Err:        sdkhttp.ParseHTTPError(resp),
		}
	}
	return resp, nil
}

func decode(op, trID string, resp *sdkhttp.Response, out any) error {
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &RequestError{
			Op:         op,
			TrID:       trID,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
			Err:        errors.Wrap(err, "decode response"),
		}
	}
	return nil
}

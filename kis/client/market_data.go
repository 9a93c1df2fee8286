package client

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/betbot/kisgo/kis/types"
)

// FetchPrice returns the current quote of ticker on the bound market.
func (c *Client) FetchPrice(ctx context.Context, ticker string) (*types.QuoteResponse, error) {
	const op = "fetch price"
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return nil, &RequestError{Op: op, TrID: types.TrIDQuote, Err: errors.New("ticker is required")}
	}

	q := types.QuoteQuery{Auth: "", Exchange: c.spec.QuoteExchange, Symbol: ticker}
	resp, err := c.get(ctx, op, types.EndpointQuote, types.TrIDQuote, q.Params())
	if err != nil {
		return nil, err
	}

	var out types.QuoteResponse
	if err := decode(op, types.TrIDQuote, resp, &out); err != nil {
		return nil, err
	}
	out.Raw = resp.Body
	return &out, nil
}

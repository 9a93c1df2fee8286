package client

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/betbot/kisgo/kis/types"
)

// FetchBalance returns the present balance of account (the 8-digit CANO).
// The currency/nation/market/inquiry divisions are fixed; the tr_id comes
// from the market table (live and paper hosts differ).
func (c *Client) FetchBalance(ctx context.Context, account string) (*types.BalanceResponse, error) {
	const op = "fetch balance"
	trID := c.spec.BalanceTrID
	if trID == "" {
		return nil, &RequestError{Op: op, Err: errors.Errorf("balance inquiry not offered for %s", c.market)}
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, &RequestError{Op: op, TrID: trID, Err: errors.New("account is required")}
	}

	q := types.BalanceQuery{
		Account:          account,
		ProductCode:      types.ProductCode,
		CurrencyDivision: types.BalanceCurrencyDivision,
		NationCode:       types.BalanceNationCode,
		MarketCode:       types.BalanceMarketCode,
		InquiryDivision:  types.BalanceInquiryDivision,
	}
	resp, err := c.get(ctx, op, types.EndpointBalance, trID, q.Params())
	if err != nil {
		return nil, err
	}

	var out types.BalanceResponse
	if err := decode(op, trID, resp, &out); err != nil {
		return nil, err
	}
	out.Raw = resp.Body
	return &out, nil
}

// FetchOpenOrders returns the first page of unfilled orders on the bound
// market, newest first. Continuation keys in the response are not followed.
func (c *Client) FetchOpenOrders(ctx context.Context, account string) (*types.OpenOrdersResponse, error) {
	const op = "fetch open orders"
	trID := c.spec.OpenOrdersTrID
	if trID == "" {
		// the paper host has no open-order inquiry
		return nil, &RequestError{Op: op, Err: errors.Errorf("open-order inquiry not offered for %s", c.market)}
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, &RequestError{Op: op, TrID: trID, Err: errors.New("account is required")}
	}

	q := types.OpenOrdersQuery{
		Account:     account,
		ProductCode: types.ProductCode,
		Exchange:    c.spec.OrderExchange,
		Sort:        types.SortDescending,
	}
	resp, err := c.get(ctx, op, types.EndpointOpenOrders, trID, q.Params())
	if err != nil {
		return nil, err
	}

	var out types.OpenOrdersResponse
	if err := decode(op, trID, resp, &out); err != nil {
		return nil, err
	}
	out.Raw = resp.Body
	return &out, nil
}

// =============================================================================
// ORDERS - PLACE / AMEND / CANCEL
// =============================================================================
//
// Every mutating call follows the same path:
//
//   CreateOrder / AmendOrCancelOrder
//      ↓
//   1. validate arguments locally (nothing reaches the broker on failure)
//      ↓
//   2. pick tr_id from the bound market's Spec
//      - buy: BuyTrID, sell: SellTrID
//      - amend and cancel: ReviseTrID (RVSE_CNCL_DVSN_CD 01 / 02)
//      ↓
//   3. post(): marshal the payload once, hash those bytes via /uapi/hashkey,
//      send the same bytes with the hashkey header
//      ↓
//   4. decode the envelope; rt_cd != "0" is returned as a response, not an error
//
// Orders are never retried. A failed round trip surfaces as *RequestError.
// =============================================================================

package client

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/betbot/kisgo/kis/types"
)

var validate = validator.New()

type orderArgs struct {
	Account  string `validate:"required"`
	Ticker   string `validate:"required"`
	Quantity int64  `validate:"gt=0"`
}

type reviseArgs struct {
	Account  string `validate:"required"`
	Ticker   string `validate:"required"`
	OrderID  string `validate:"required"`
	Quantity int64  `validate:"gt=0"`
}

// CreateOrder places a new order. The transaction id is the bound market's
// buy or sell code; the payload is signed and sent exactly once.
func (c *Client) CreateOrder(
	ctx context.Context,
	side types.Side,
	account, ticker string,
	price decimal.Decimal,
	quantity int64,
	orderType types.OrderType,
) (*types.OrderResponse, error) {
	const op = "create order"

	var trID string
	switch side {
	case types.SideBuy:
		trID = c.spec.BuyTrID
	case types.SideSell:
		trID = c.spec.SellTrID
	default:
		return nil, &RequestError{Op: op, Err: errors.Errorf("unknown side %q", side)}
	}

	args := orderArgs{Account: strings.TrimSpace(account), Ticker: strings.TrimSpace(ticker), Quantity: quantity}
	if err := validate.Struct(args); err != nil {
		return nil, &RequestError{Op: op, TrID: trID, Err: errors.Wrap(err, "invalid order")}
	}
	if price.IsNegative() {
		return nil, &RequestError{Op: op, TrID: trID, Err: errors.Errorf("negative price %s", price)}
	}
	if orderType == "" {
		return nil, &RequestError{Op: op, TrID: trID, Err: errors.New("order type is required")}
	}

	payload := types.OrderRequest{
		Account:        args.Account,
		ProductCode:    types.ProductCode,
		Exchange:       c.spec.OrderExchange,
		Ticker:         args.Ticker,
		Quantity:       strconv.FormatInt(quantity, 10),
		Price:          price.String(),
		ServerDivision: types.OrderServerCode,
		OrderType:      string(orderType),
	}
	return c.sendOrder(ctx, op, types.EndpointOrder, trID, payload)
}

// CreateLimitBuyOrder places a limit buy.
func (c *Client) CreateLimitBuyOrder(ctx context.Context, account, ticker string, price decimal.Decimal, quantity int64) (*types.OrderResponse, error) {
	return c.CreateOrder(ctx, types.SideBuy, account, ticker, price, quantity, types.OrderTypeLimit)
}

// CreateLimitSellOrder places a limit sell.
func (c *Client) CreateLimitSellOrder(ctx context.Context, account, ticker string, price decimal.Decimal, quantity int64) (*types.OrderResponse, error) {
	return c.CreateOrder(ctx, types.SideSell, account, ticker, price, quantity, types.OrderTypeLimit)
}

// AmendOrCancelOrder revises or cancels orderID. Both actions share one
// transaction id and differ only in the division code. For a cancel,
// quantity is the number of units to remove and price is not used by the
// broker.
func (c *Client) AmendOrCancelOrder(
	ctx context.Context,
	account, ticker, orderID string,
	price decimal.Decimal,
	quantity int64,
	isAmend bool,
) (*types.OrderResponse, error) {
	op, division := "cancel order", types.DivisionCancel
	if isAmend {
		op, division = "amend order", types.DivisionAmend
	}
	trID := c.spec.ReviseTrID

	args := reviseArgs{
		Account:  strings.TrimSpace(account),
		Ticker:   strings.TrimSpace(ticker),
		OrderID:  strings.TrimSpace(orderID),
		Quantity: quantity,
	}
	if err := validate.Struct(args); err != nil {
		return nil, &RequestError{Op: op, TrID: trID, Err: errors.Wrap(err, "invalid revision")}
	}
	if price.IsNegative() {
		return nil, &RequestError{Op: op, TrID: trID, Err: errors.Errorf("negative price %s", price)}
	}

	payload := types.ReviseCancelRequest{
		Account:         args.Account,
		ProductCode:     types.ProductCode,
		Exchange:        c.spec.OrderExchange,
		Ticker:          args.Ticker,
		OriginalOrderID: args.OrderID,
		Division:        string(division),
		Quantity:        strconv.FormatInt(quantity, 10),
		Price:           price.String(),
		ServerDivision:  types.OrderServerCode,
	}
	return c.sendOrder(ctx, op, types.EndpointReviseOrder, trID, payload)
}

// AmendOrder changes the price and quantity of orderID.
func (c *Client) AmendOrder(ctx context.Context, account, ticker, orderID string, price decimal.Decimal, quantity int64) (*types.OrderResponse, error) {
	return c.AmendOrCancelOrder(ctx, account, ticker, orderID, price, quantity, true)
}

// CancelOrder cancels quantity units of orderID.
func (c *Client) CancelOrder(ctx context.Context, account, ticker, orderID string, quantity int64) (*types.OrderResponse, error) {
	return c.AmendOrCancelOrder(ctx, account, ticker, orderID, decimal.Zero, quantity, false)
}

func (c *Client) sendOrder(ctx context.Context, op, endpoint, trID string, payload any) (*types.OrderResponse, error) {
	resp, err := c.post(ctx, op, endpoint, trID, payload)
	if err != nil {
		return nil, err
	}

	var out types.OrderResponse
	if err := decode(op, trID, resp, &out); err != nil {
		return nil, err
	}
	out.Raw = resp.Body
	return &out, nil
}

package types

import "fmt"

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

func ParseSide(v string) (Side, error) {
	switch Side(v) {
	case SideBuy, SideSell:
		return Side(v), nil
	default:
		return "", fmt.Errorf("unknown side: %q", v)
	}
}

// OrderType is the ORD_DVSN code of an overseas order.
type OrderType string

const (
	OrderTypeLimit         OrderType = "00"
	OrderTypeMarketOnOpen  OrderType = "31" // US sell only
	OrderTypeLimitOnOpen   OrderType = "32" // US
	OrderTypeMarketOnClose OrderType = "33" // US sell only
	OrderTypeLimitOnClose  OrderType = "34" // US
)

// ReviseDivision is RVSE_CNCL_DVSN_CD on the revise/cancel endpoint.
type ReviseDivision string

const (
	DivisionAmend  ReviseDivision = "01"
	DivisionCancel ReviseDivision = "02"
)

// Fixed request constants of the overseas trading API.
const (
	GrantTypeClientCredentials = "client_credentials"

	ProductCode     = "01" // ACNT_PRDT_CD
	OrderServerCode = "0"  // ORD_SVR_DVSN_CD

	// quotations use one tr_id on both hosts
	TrIDQuote = "HHDFS00000300"

	BalanceCurrencyDivision = "02"  // WCRC_FRCR_DVSN_CD: foreign currency
	BalanceNationCode       = "840" // NATN_CD
	BalanceMarketCode       = "00"  // TR_MKET_CD
	BalanceInquiryDivision  = "00"  // INQR_DVSN_CD

	SortDescending = "DS"
)

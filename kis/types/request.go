package types

// TokenRequest is the body of oauth2/tokenP.
type TokenRequest struct {
	GrantType string `json:"grant_type"`
	AppKey    string `json:"appkey"`
	AppSecret string `json:"appsecret"`
}

// OrderRequest is the body of trading/order. Field order follows the broker's
// documentation; the hash key is computed over the marshaled bytes.
type OrderRequest struct {
	Account        string `json:"CANO"`
	ProductCode    string `json:"ACNT_PRDT_CD"`
	Exchange       string `json:"OVRS_EXCG_CD"`
	Ticker         string `json:"PDNO"`
	Quantity       string `json:"ORD_QTY"`
	Price          string `json:"OVRS_ORD_UNPR"`
	ServerDivision string `json:"ORD_SVR_DVSN_CD"`
	OrderType      string `json:"ORD_DVSN"`
}

// ReviseCancelRequest is the body of trading/order-rvsecncl.
type ReviseCancelRequest struct {
	Account         string `json:"CANO"`
	ProductCode     string `json:"ACNT_PRDT_CD"`
	Exchange        string `json:"OVRS_EXCG_CD"`
	Ticker          string `json:"PDNO"`
	OriginalOrderID string `json:"ORGN_ODNO"`
	Division        string `json:"RVSE_CNCL_DVSN_CD"`
	Quantity        string `json:"ORD_QTY"`
	Price           string `json:"OVRS_ORD_UNPR"`
	ContactPhone    string `json:"CTAC_TLNO"`
	AgencyOrderID   string `json:"MGCO_APTM_ODNO"`
	ServerDivision  string `json:"ORD_SVR_DVSN_CD"`
}

// QuoteQuery is the query string of quotations/price.
type QuoteQuery struct {
	Auth     string
	Exchange string
	Symbol   string
}

func (q QuoteQuery) Params() map[string]any {
	return map[string]any{"AUTH": q.Auth, "EXCD": q.Exchange, "SYMB": q.Symbol}
}

// BalanceQuery is the query string of trading/inquire-present-balance.
type BalanceQuery struct {
	Account          string
	ProductCode      string
	CurrencyDivision string
	NationCode       string
	MarketCode       string
	InquiryDivision  string
}

func (q BalanceQuery) Params() map[string]any {
	return map[string]any{
		"CANO":              q.Account,
		"ACNT_PRDT_CD":      q.ProductCode,
		"WCRC_FRCR_DVSN_CD": q.CurrencyDivision,
		"NATN_CD":           q.NationCode,
		"TR_MKET_CD":        q.MarketCode,
		"INQR_DVSN_CD":      q.InquiryDivision,
	}
}

// OpenOrdersQuery is the query string of trading/inquire-nccs. The
// continuation keys are sent empty, so only the first page is requested.
type OpenOrdersQuery struct {
	Account     string
	ProductCode string
	Exchange    string
	Sort        string
	ContextFK   string
	ContextNK   string
}

func (q OpenOrdersQuery) Params() map[string]any {
	return map[string]any{
		"CANO":           q.Account,
		"ACNT_PRDT_CD":   q.ProductCode,
		"OVRS_EXCG_CD":   q.Exchange,
		"SORT_SQN":       q.Sort,
		"CTX_AREA_FK200": q.ContextFK,
		"CTX_AREA_NK200": q.ContextNK,
	}
}

package types

import "encoding/json"

// TokenResponse is the body returned by oauth2/tokenP.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	ExpiredAt   string `json:"access_token_token_expired"` // "2006-01-02 15:04:05" KST
}

// HashKeyResponse is the body returned by uapi/hashkey.
type HashKeyResponse struct {
	Body json.RawMessage `json:"BODY"`
	Hash string          `json:"HASH"`
}

// Envelope carries the business result codes every trading response has.
// The client never interprets them; a rejected order arrives as a normal
// response with a non-zero RtCd.
type Envelope struct {
	RtCd  string `json:"rt_cd"`
	MsgCd string `json:"msg_cd"`
	Msg1  string `json:"msg1"`
}

// OK reports whether the broker accepted the request.
func (e Envelope) OK() bool { return e.RtCd == "0" }

type QuoteOutput struct {
	Rsym string `json:"rsym"` // realtime symbol key
	Zdiv string `json:"zdiv"` // decimal places
	Base string `json:"base"` // previous close
	Pvol string `json:"pvol"` // previous volume
	Last string `json:"last"`
	Sign string `json:"sign"`
	Diff string `json:"diff"`
	Rate string `json:"rate"`
	Tvol string `json:"tvol"`
	Tamt string `json:"tamt"`
	Ordy string `json:"ordy"` // orderable flag
}

type QuoteResponse struct {
	Envelope
	Output QuoteOutput     `json:"output"`
	Raw    json.RawMessage `json:"-"`
}

// BalanceResponse keeps the per-holding, per-currency and summary sections
// opaque; their layout varies with the inquiry division.
type BalanceResponse struct {
	Envelope
	Output1 json.RawMessage `json:"output1"`
	Output2 json.RawMessage `json:"output2"`
	Output3 json.RawMessage `json:"output3"`
	Raw     json.RawMessage `json:"-"`
}

type OpenOrder struct {
	OrderDate       string `json:"ord_dt"`
	OrderID         string `json:"odno"`
	OriginalOrderID string `json:"orgn_odno"`
	Side            string `json:"sll_buy_dvsn_cd"` // 01 sell, 02 buy
	Ticker          string `json:"pdno"`
	ProductName     string `json:"prdt_name"`
	Quantity        string `json:"ft_ord_qty"`
	Price           string `json:"ft_ord_unpr3"`
	FilledQuantity  string `json:"ft_ccld_qty"`
	OpenQuantity    string `json:"nccs_qty"`
	Exchange        string `json:"ovrs_excg_cd"`
	Currency        string `json:"tr_crcy_cd"`
}

type OpenOrdersResponse struct {
	Envelope
	ContextFK string          `json:"ctx_area_fk200"`
	ContextNK string          `json:"ctx_area_nk200"`
	Output    json.RawMessage `json:"output"`
	Raw       json.RawMessage `json:"-"`
}

// Orders decodes the output rows. Rows the broker adds later are ignored.
func (r *OpenOrdersResponse) Orders() ([]OpenOrder, error) {
	if len(r.Output) == 0 || string(r.Output) == "null" {
		return nil, nil
	}
	var out []OpenOrder
	if err := json.Unmarshal(r.Output, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type OrderOutput struct {
	OrgNo   string `json:"KRX_FWDG_ORD_ORGNO"`
	OrderID string `json:"ODNO"`
	Time    string `json:"ORD_TMD"`
}

type OrderResponse struct {
	Envelope
	Output OrderOutput     `json:"output"`
	Raw    json.RawMessage `json:"-"`
}

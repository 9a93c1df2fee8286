// Package fakebroker is an in-process stand-in for the KIS open API. It
// records every request it receives and validates the bearer token and hash
// key the way the real broker does.
package fakebroker

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/betbot/kisgo/kis/types"
)

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Query  url.Values
	Body   []byte
}

type Broker struct {
	mu          sync.Mutex
	token       string
	tokenStatus int
	tokenBody   string
	hashStatus  int
	omitHash    bool
	tradeStatus int
	rejectCode  string
	rejectMsg   string
	requests    []Request

	engine *gin.Engine
}

func New() *Broker {
	gin.SetMode(gin.TestMode)
	b := &Broker{token: "test-token"}

	r := gin.New()
	r.Use(b.record)
	r.POST("/"+types.EndpointToken, b.handleToken)
	r.POST("/"+types.EndpointHashKey, b.handleHashKey)
	r.GET("/"+types.EndpointQuote, b.authorized(false), b.handleQuote)
	r.GET("/"+types.EndpointBalance, b.authorized(false), b.handleBalance)
	r.GET("/"+types.EndpointOpenOrders, b.authorized(false), b.handleOpenOrders)
	r.POST("/"+types.EndpointOrder, b.authorized(true), b.handleOrder)
	r.POST("/"+types.EndpointReviseOrder, b.authorized(true), b.handleOrder)
	b.engine = r
	return b
}

func (b *Broker) Handler() http.Handler { return b.engine }

// HashOf is the hash key the fake broker issues for body.
func HashOf(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// SetToken changes the token handed out by the next issuance.
func (b *Broker) SetToken(tok string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = tok
}

// FailToken makes the token endpoint answer with status and body. A zero
// status restores normal behaviour.
func (b *Broker) FailToken(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokenStatus = status
	b.tokenBody = body
}

// FailHashKey makes the hashkey endpoint answer with status, or succeed
// without a HASH field when omit is set.
func (b *Broker) FailHashKey(status int, omit bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hashStatus = status
	b.omitHash = omit
}

// FailTrading makes every trading endpoint answer with status.
func (b *Broker) FailTrading(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tradeStatus = status
}

// RejectOrders makes order and revise calls answer 200 with rt_cd "1" and
// the given message. An empty code accepts orders again.
func (b *Broker) RejectOrders(code, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rejectCode, b.rejectMsg = code, msg
}

func (b *Broker) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// RequestsTo returns the recorded calls whose path is endpoint.
func (b *Broker) RequestsTo(endpoint string) []Request {
	var out []Request
	for _, r := range b.Requests() {
		if r.Path == "/"+endpoint {
			out = append(out, r)
		}
	}
	return out
}

func (b *Broker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

func (b *Broker) record(c *gin.Context) {
	// the request body can only be read once
	body, _ := c.GetRawData()
	c.Set("body", body)

	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Header: c.Request.Header.Clone(),
		Query:  c.Request.URL.Query(),
		Body:   body,
	})
	b.mu.Unlock()

	c.Next()
}

func bodyOf(c *gin.Context) []byte {
	v, _ := c.Get("body")
	b, _ := v.([]byte)
	return b
}

func (b *Broker) handleToken(c *gin.Context) {
	b.mu.Lock()
	status, failBody, token := b.tokenStatus, b.tokenBody, b.token
	b.mu.Unlock()

	if status != 0 {
		c.Data(status, "application/json", []byte(failBody))
		return
	}

	var req types.TokenRequest
	if err := json.Unmarshal(bodyOf(c), &req); err != nil || req.GrantType != types.GrantTypeClientCredentials || req.AppKey == "" || req.AppSecret == "" {
		c.JSON(http.StatusForbidden, gin.H{"error_code": "EGW00103", "error_description": "유효하지 않은 AppKey입니다."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":               token,
		"token_type":                 "Bearer",
		"expires_in":                 86400,
		"access_token_token_expired": "2026-10-16 09:00:00",
	})
}

func (b *Broker) handleHashKey(c *gin.Context) {
	b.mu.Lock()
	status, omit := b.hashStatus, b.omitHash
	b.mu.Unlock()

	if c.GetHeader(types.HeaderAppKey) == "" || c.GetHeader(types.HeaderAppSecret) == "" {
		c.JSON(http.StatusForbidden, gin.H{"error_code": "EGW00105"})
		return
	}
	if status != 0 {
		c.JSON(status, gin.H{"error_code": "EGW00500"})
		return
	}
	body := bodyOf(c)
	if omit {
		c.JSON(http.StatusOK, gin.H{"BODY": string(body)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"BODY": string(body), "HASH": HashOf(body)})
}

// authorized checks the bearer token and, for mutating calls, that the hash
// key matches the transmitted body. A hash mismatch is a business rejection,
// not an HTTP error.
func (b *Broker) authorized(mutating bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		token, status := b.token, b.tradeStatus
		b.mu.Unlock()

		if status != 0 {
			c.AbortWithStatusJSON(status, gin.H{"rt_cd": "1", "msg_cd": "EGW00500", "msg1": "server error"})
			return
		}
		if c.GetHeader(types.HeaderAuthorization) != types.BearerPrefix+token {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"rt_cd": "1", "msg_cd": "EGW00123", "msg1": "기간이 만료된 token 입니다."})
			return
		}
		if mutating && c.GetHeader(types.HeaderHashKey) != HashOf(bodyOf(c)) {
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"rt_cd": "1", "msg_cd": "EGW00205", "msg1": "hashkey mismatch"})
			return
		}
		c.Next()
	}
}

func (b *Broker) handleQuote(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rt_cd": "0", "msg_cd": "MCA00000", "msg1": "정상처리 되었습니다.",
		"output": gin.H{
			"rsym": "D" + c.Query("EXCD") + c.Query("SYMB"),
			"zdiv": "4", "base": "149.5000", "pvol": "1000", "last": "150.0000",
			"sign": "2", "diff": "0.5000", "rate": "+0.33", "tvol": "2000", "tamt": "300000", "ordy": "매도불가",
		},
	})
}

func (b *Broker) handleBalance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rt_cd": "0", "msg_cd": "KIOK0510", "msg1": "조회되었습니다",
		"output1": []gin.H{{"pdno": "AAPL", "cblc_qty13": "10.00000000"}},
		"output2": []gin.H{{"crcy_cd": "USD", "frcr_dncl_amt_2": "1000.00"}},
		"output3": gin.H{"tot_asst_amt": "1500000"},
	})
}

func (b *Broker) handleOpenOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rt_cd": "0", "msg_cd": "KIOK0510", "msg1": "조회되었습니다",
		"ctx_area_fk200": "", "ctx_area_nk200": "",
		"output": []gin.H{{
			"ord_dt": "20261015", "odno": "0030138295", "orgn_odno": "", "sll_buy_dvsn_cd": "02",
			"pdno": "AAPL", "prdt_name": "애플", "ft_ord_qty": "10", "ft_ord_unpr3": "150.00000000",
			"ft_ccld_qty": "0", "nccs_qty": "10", "ovrs_excg_cd": c.Query("OVRS_EXCG_CD"), "tr_crcy_cd": "USD",
		}},
	})
}

func (b *Broker) handleOrder(c *gin.Context) {
	b.mu.Lock()
	code, msg := b.rejectCode, b.rejectMsg
	b.mu.Unlock()

	if code != "" {
		c.JSON(http.StatusOK, gin.H{"rt_cd": "1", "msg_cd": code, "msg1": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rt_cd": "0", "msg_cd": "APBK0013", "msg1": "주문 전송 완료 되었습니다.",
		"output": gin.H{"KRX_FWDG_ORD_ORGNO": "01790", "ODNO": "0030138295", "ORD_TMD": "103012"},
	})
}

package client

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/betbot/kisgo/kis/auth"
	"github.com/betbot/kisgo/pkg/marketspec"
	sdkhttp "github.com/betbot/kisgo/pkg/sdk/http"
)

// Transport is the HTTP capability the client delegates every call to.
type Transport interface {
	Do(ctx context.Context, method, endpoint string, opt *sdkhttp.RequestOptions) (*sdkhttp.Response, error)
}

// Session provides authenticated headers and hash keys. *auth.Session
// implements it.
type Session interface {
	AuthHeaders(trID string) map[string]string
	SignPayload(ctx context.Context, payload any) (string, error)
}

// Client is a trading client bound to one overseas market.
type Client struct {
	session   Session
	transport Transport
	market    marketspec.Market
	spec      marketspec.Spec
	log       *logrus.Entry
}

type options struct {
	table marketspec.Table
	log   *logrus.Entry
}

type Option func(*options)

// WithMarketTable replaces the broker's default code table.
func WithMarketTable(t marketspec.Table) Option {
	return func(o *options) { o.table = t }
}

func WithLogger(l *logrus.Entry) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// New binds a client to market. The market's codes are resolved once here
// and fixed for the client's lifetime.
func New(session Session, transport Transport, market marketspec.Market, opts ...Option) (*Client, error) {
	if isNil(session) {
		return nil, fmt.Errorf("kis client: session is nil")
	}
	if isNil(transport) {
		return nil, fmt.Errorf("kis client: transport is nil")
	}

	o := options{table: marketspec.DefaultTable()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logrus.WithField("component", "kis.client")
	}

	spec, ok := o.table.Lookup(market)
	if !ok {
		return nil, fmt.Errorf("kis client: no codes for market %q", market)
	}

	return &Client{
		session:   session,
		transport: transport,
		market:    market,
		spec:      spec,
		log:       o.log.WithField("market", market.String()),
	}, nil
}

// Market returns the market the client is bound to.
func (c *Client) Market() marketspec.Market { return c.market }

// Spec returns the broker codes in use.
func (c *Client) Spec() marketspec.Spec { return c.spec }

// isNil also catches a nil pointer of a known concrete type stored in the
// interface, which a plain == nil comparison misses.
func isNil(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *auth.Session:
		return x == nil
	case *sdkhttp.Client:
		return x == nil
	}
	return false
}

package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	client *resty.Client
}

type Option func(*resty.Client)

// WithTimeout 覆盖单次请求超时（<=0 时保持默认 30s）
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		if d > 0 {
			c.SetTimeout(d)
		}
	}
}

// WithProxy 指定代理地址。
// 未设置时 resty 会自动从环境变量读取代理配置（HTTP_PROXY, HTTPS_PROXY, http_proxy, https_proxy）
func WithProxy(proxyURL string) Option {
	return func(c *resty.Client) {
		if strings.TrimSpace(proxyURL) != "" {
			c.SetProxy(proxyURL)
		}
	}
}

// NewClient 创建绑定 host 的传输层。
// 注意：不做任何重试，每次调用恰好一次往返（下单接口重试会造成重复委托）
func NewClient(host string, opts ...Option) *Client {
	host = strings.TrimRight(host, "/")

	client := resty.New().
		SetBaseURL(host).
		SetTimeout(defaultTimeout).
		SetRetryCount(0) // 禁止重试
	for _, opt := range opts {
		opt(client)
	}

	return &Client{client: client}
}

type RequestOptions struct {
	Headers map[string]string
	Data    any
	Params  map[string]any
}

// Response 是一次往返的原始结果。
// 非 2xx 在这一层不算错误，由调用方决定如何处理。
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

func (r *Response) IsSuccess() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// 仅设置本次请求的默认 Header（不要再改 client 级 Header）
func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.client.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	r.SetHeader("Accept", "*/*")
	r.SetHeader("Connection", "keep-alive")
	return r
}

// Do 发出单个请求；endpoint 可以是相对 host 的路径。
func (c *Client) Do(ctx context.Context, method, endpoint string, opt *RequestOptions) (*Response, error) {
	rc := c.newRequest(ctx)
	if opt != nil {
		for k, v := range opt.Headers {
			rc.SetHeader(k, v)
		}
		if opt.Params != nil {
			rc.SetQueryParamsFromValues(toValues(opt.Params))
		}
		if opt.Data != nil {
			rc.SetHeader("Content-Type", "application/json")
			switch b := opt.Data.(type) {
			case json.RawMessage:
				// 已序列化的字节原样发送（签名与发送必须是同一份字节）
				rc.SetBody([]byte(b))
			case []byte:
				rc.SetBody(b)
			case string:
				rc.SetBody(b)
			default:
				rc.SetBody(opt.Data)
			}
		}
	}

	endpoint = "/" + strings.TrimLeft(endpoint, "/")

	var (
		resp *resty.Response
		err  error
	)
	switch strings.ToUpper(method) {
	case http.MethodGet:
		resp, err = rc.Get(endpoint)
	case http.MethodPost:
		resp, err = rc.Post(endpoint)
	case http.MethodDelete:
		resp, err = rc.Delete(endpoint)
	case http.MethodPut:
		resp, err = rc.Put(endpoint)
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", strings.ToUpper(method), endpoint)
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, nil
}

func toValues(m map[string]any) url.Values {
	v := make(url.Values, len(m))
	for k, val := range m {
		switch t := val.(type) {
		case []string:
			v[k] = t
		default:
			v[k] = []string{fmt.Sprint(val)}
		}
	}
	return v
}

// ParseHTTPError 描述非 2xx 响应；成功响应返回 nil。
// body 能解析成 JSON 时带上解析结果，否则带原始文本。
func ParseHTTPError(resp *Response) error {
	if resp == nil {
		return errors.New("http: nil response")
	}
	if resp.IsSuccess() {
		return nil
	}
	var body any
	_ = json.Unmarshal(resp.Body, &body)
	if body == nil {
		body = string(resp.Body)
	}
	return errors.Errorf("http non-2xx: %d %v", resp.StatusCode, body)
}

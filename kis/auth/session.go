package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/kisgo/kis/types"
	sdkhttp "github.com/betbot/kisgo/pkg/sdk/http"
)

// Transport is the HTTP capability a Session needs.
type Transport interface {
	Do(ctx context.Context, method, endpoint string, opt *sdkhttp.RequestOptions) (*sdkhttp.Response, error)
}

// Credentials are the app key/secret pair issued by the broker.
type Credentials struct {
	AppKey    string `validate:"required"`
	AppSecret string `validate:"required"`
}

var validate = validator.New()

// broker timestamps are KST
var kst = time.FixedZone("KST", 9*60*60)

// Session owns the credentials and the current bearer token. The token is
// issued once at construction and only replaced by IssueAccessToken/Refresh;
// there is no background renewal.
type Session struct {
	transport Transport
	creds     Credentials
	log       *logrus.Entry
	now       func() time.Time

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

type Option func(*Session)

func WithLogger(l *logrus.Entry) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession validates creds and synchronously issues the first access token.
func NewSession(ctx context.Context, transport Transport, creds Credentials, opts ...Option) (*Session, error) {
	if transport == nil {
		return nil, errors.New("kis auth: transport is nil")
	}
	if err := validate.Struct(creds); err != nil {
		return nil, &AuthError{Err: errors.Wrap(err, "invalid credentials")}
	}

	s := &Session{
		transport: transport,
		creds:     creds,
		log:       logrus.WithField("component", "kis.session"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := s.IssueAccessToken(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// IssueAccessToken exchanges the credentials for a bearer token and stores
// "Bearer <token>". On failure the previously held token is kept.
func (s *Session) IssueAccessToken(ctx context.Context) (string, error) {
	resp, err := s.transport.Do(ctx, http.MethodPost, types.EndpointToken, &sdkhttp.RequestOptions{
		Headers: map[string]string{types.HeaderContentType: types.ContentTypeJSON},
		Data: types.TokenRequest{
			GrantType: types.GrantTypeClientCredentials,
			AppKey:    s.creds.AppKey,
			AppSecret: s.creds.AppSecret,
		},
	})
	if err != nil {
		return "", &AuthError{Err: errors.Wrap(err, "token request failed")}
	}
	if !resp.IsSuccess() {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(resp.Body), Err: sdkhttp.ParseHTTPError(resp)}
	}

	var tr types.TokenResponse
	if err := json.Unmarshal(resp.Body, &tr); err != nil {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(resp.Body), Err: errors.Wrap(err, "decode token response")}
	}
	if strings.TrimSpace(tr.AccessToken) == "" {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(resp.Body), Err: errors.New("access_token missing from response")}
	}

	token := types.BearerPrefix + tr.AccessToken
	expiresAt := s.expiry(tr)

	s.mu.Lock()
	s.token = token
	s.expiresAt = expiresAt
	s.mu.Unlock()

	s.log.WithField("expires_at", expiresAt.Format(time.RFC3339)).Info("access token issued")
	return token, nil
}

// Refresh re-issues the token. Callers decide when: typically after the
// broker rejects a call as unauthorized.
func (s *Session) Refresh(ctx context.Context) error {
	_, err := s.IssueAccessToken(ctx)
	return err
}

func (s *Session) expiry(tr types.TokenResponse) time.Time {
	if tr.ExpiredAt != "" {
		if t, err := time.ParseInLocation("2006-01-02 15:04:05", tr.ExpiredAt, kst); err == nil {
			return t
		}
	}
	if tr.ExpiresIn > 0 {
		return s.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return time.Time{}
}

// AccessToken returns the current authorization header value.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// ExpiresAt is the expiry the broker reported with the current token, or the
// zero time if it reported none. Informational only.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// SignPayload asks the broker for the hash key of payload. []byte and
// json.RawMessage payloads are sent verbatim; anything else is marshaled.
// The returned hash is only valid for those exact bytes.
func (s *Session) SignPayload(ctx context.Context, payload any) (string, error) {
	body, err := rawPayload(payload)
	if err != nil {
		return "", &SigningError{Err: err}
	}

	resp, err := s.transport.Do(ctx, http.MethodPost, types.EndpointHashKey, &sdkhttp.RequestOptions{
		Headers: map[string]string{
			types.HeaderContentType: types.ContentTypeJSON,
			types.HeaderAppKey:      s.creds.AppKey,
			types.HeaderAppSecret:   s.creds.AppSecret,
			types.HeaderUserAgent:   "Mozilla/5.0",
		},
		Data: body,
	})
	if err != nil {
		return "", &SigningError{Err: errors.Wrap(err, "hashkey request failed")}
	}
	if !resp.IsSuccess() {
		return "", &SigningError{StatusCode: resp.StatusCode, Body: string(resp.Body), Err: sdkhttp.ParseHTTPError(resp)}
	}

	var hr types.HashKeyResponse
	if err := json.Unmarshal(resp.Body, &hr); err != nil {
		return "", &SigningError{StatusCode: resp.StatusCode, Body: string(resp.Body), Err: errors.Wrap(err, "decode hashkey response")}
	}
	if hr.Hash == "" {
		return "", &SigningError{StatusCode: resp.StatusCode, Body: string(resp.Body), Err: errors.New("HASH missing from response")}
	}
	return hr.Hash, nil
}

func rawPayload(payload any) (json.RawMessage, error) {
	switch p := payload.(type) {
	case nil:
		return nil, errors.New("payload is nil")
	case json.RawMessage:
		return p, nil
	case []byte:
		return json.RawMessage(p), nil
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "marshal payload")
		}
		return b, nil
	}
}

// AuthHeaders returns the header set of an authenticated call identified by
// trID. Mutating calls add the hash key on top.
func (s *Session) AuthHeaders(trID string) map[string]string {
	return map[string]string{
		types.HeaderContentType:   types.ContentTypeJSON,
		types.HeaderAuthorization: s.AccessToken(),
		types.HeaderAppKey:        s.creds.AppKey,
		types.HeaderAppSecret:     s.creds.AppSecret,
		types.HeaderTrID:          trID,
	}
}

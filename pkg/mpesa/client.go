package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Client performs the token fetch and STK push calls. A Client is safe for
// concurrent use; it holds no per-request state.
type Client struct {
	creds   Credentials
	baseURL string
	client  *http.Client
	log     *zap.Logger
	now     func() time.Time
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock overrides the time source used for the STK timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:   creds,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAccessToken gets a fresh bearer token with the client-credentials grant.
// Every call goes to Daraja; nothing is cached.
func (c *Client) FetchAccessToken(ctx context.Context) (*oauth2.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tokenPath, nil)
	if err != nil {
		return nil, &Error{Kind: KindTokenFetch, Err: err}
	}
	req.SetBasicAuth(c.creds.ConsumerKey, c.creds.ConsumerSecret)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTokenFetch, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTokenFetch, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: KindTokenFetch, StatusCode: resp.StatusCode, Body: string(body)}
	}
	var out tokenResp
	if err := codec.Unmarshal(body, &out); err != nil {
		return nil, &Error{Kind: KindTokenFetch, StatusCode: resp.StatusCode, Err: err}
	}
	if out.AccessToken == "" {
		return nil, &Error{Kind: KindTokenFetch, StatusCode: resp.StatusCode, Body: "response has no access_token"}
	}
	tok := &oauth2.Token{AccessToken: out.AccessToken, TokenType: "Bearer"}
	if secs, err := strconv.Atoi(strings.Trim(string(out.ExpiresIn), `"`)); err == nil && secs > 0 {
		tok.Expiry = c.now().Add(time.Duration(secs) * time.Second)
	}
	return tok, nil
}

// InitiatePayment sends an STK push prompt to phone for amount and returns
// Daraja's response body untouched. The token is always fetched first.
func (c *Client) InitiatePayment(ctx context.Context, phone string, amount decimal.Decimal) (json.RawMessage, error) {
	if err := c.creds.Validate(); err != nil {
		return nil, err
	}
	tok, err := c.FetchAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	ts := Timestamp(c.now())
	payload := PushPayload{
		BusinessShortCode: c.creds.Shortcode,
		Password:          Password(c.creds.Shortcode, c.creds.Passkey, ts),
		Timestamp:         ts,
		TransactionType:   TransactionType,
		Amount:            json.Number(amount.String()),
		PartyA:            phone,
		PartyB:            c.creds.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       c.creds.CallbackURL,
		AccountReference:  AccountReference,
		TransactionDesc:   TransactionDesc,
	}
	body, err := codec.Marshal(payload)
	if err != nil {
		return nil, &Error{Kind: KindPushRequest, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+stkPath, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindPushRequest, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Info("stk push",
		zap.String("phone", phone),
		zap.String("amount", amount.String()),
		zap.String("timestamp", ts),
	)
	resp, err := c.bearerClient(ctx, tok).Do(req)
	if err != nil {
		return nil, &Error{Kind: KindPushRequest, Err: err}
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindPushRequest, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: KindPushRequest, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var ack PushResponse
	if codec.Unmarshal(respBody, &ack) == nil {
		c.log.Info("stk push accepted",
			zap.String("merchant_request_id", ack.MerchantRequestID),
			zap.String("checkout_request_id", ack.CheckoutRequestID),
			zap.String("response_code", ack.ResponseCode),
		)
	}
	return json.RawMessage(respBody), nil
}

// bearerClient wraps the configured http.Client so requests carry tok.
func (c *Client) bearerClient(ctx context.Context, tok *oauth2.Token) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
	hc.Timeout = c.client.Timeout
	return hc
}

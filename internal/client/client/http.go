package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/legaltrack/internal/client/models"
	"github.com/google/uuid"
)

const (
	RequestIDHeaderName = "X-Request-ID"
	DefaultBaseURL      = "https://arbitr.kazna.tech"
	DefaultTimeout      = 30 * time.Second
	maxErrorBody        = 64 << 10
)

// HTTPClient talks to the LegalTrack JSON API. The session token is sent
// as-is in the Authorization header.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*HTTPClient)

func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) { h.http.Timeout = d }
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) newRequest(ctx context.Context, method, rawURL string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, r)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeaderName, uuid.NewString())
	if t := c.currentToken(); t != "" {
		req.Header.Set("Authorization", t)
	}
	return req, nil
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do performs the request and decodes a 2xx JSON body into out (if non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, readErrorMessage(resp.Body))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil {
		if e.Message != "" {
			return e.Message
		}
		return e.Error
	}
	return ""
}

// mapError classifies transport failures. Cancellation is passed through
// untouched so callers can tell it apart from a real failure.
func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	// timeouts, refused connections and DNS failures all mean "offline" here
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 500 {
		return statusError(resp.StatusCode, "")
	}
	return nil
}

func (c *HTTPClient) Subscriptions(ctx context.Context) (*models.SubscriptionsResponse, error) {
	var out models.SubscriptionsResponse
	if err := c.do(ctx, http.MethodGet, "/subs/get-subscribtions", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CaseDetail(ctx context.Context, id int) (*models.CaseDetail, error) {
	var out models.Envelope[models.CaseDetail]
	q := url.Values{"id": {strconv.Itoa(id)}}
	if err := c.do(ctx, http.MethodGet, "/subs/detail-case", q, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, ErrNoData
	}
	return out.Data, nil
}

func (c *HTTPClient) CalendarEvents(ctx context.Context) ([]models.CalendarEvent, error) {
	var out models.Envelope[[]models.CalendarEvent]
	if err := c.do(ctx, http.MethodGet, "/subs/get-calendar", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return []models.CalendarEvent{}, nil
	}
	return *out.Data, nil
}

func (c *HTTPClient) Notifications(ctx context.Context, page int) (*models.NotificationsPage, error) {
	if page < 1 {
		page = 1
	}
	var out models.NotificationsPage
	q := url.Values{"page": {strconv.Itoa(page)}}
	if err := c.do(ctx, http.MethodGet, "/subs/get-notiffications", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Delays(ctx context.Context) ([]models.DelayItem, error) {
	return c.delays(ctx, "/subs/get-delays", nil)
}

func (c *HTTPClient) SearchDelays(ctx context.Context, caseNumber string) ([]models.DelayItem, error) {
	return c.delays(ctx, "/subs/search-delay", url.Values{"case_number": {caseNumber}})
}

func (c *HTTPClient) delays(ctx context.Context, path string, q url.Values) ([]models.DelayItem, error) {
	var out models.Envelope[[]models.DelayItem]
	if err := c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return []models.DelayItem{}, nil
	}
	return *out.Data, nil
}

func (c *HTTPClient) Tariff(ctx context.Context) (*models.Tariff, error) {
	var out models.Envelope[models.Tariff]
	if err := c.do(ctx, http.MethodGet, "/api/user-tarif", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return &models.Tariff{}, nil
	}
	return out.Data, nil
}

func (c *HTTPClient) AddSubscription(ctx context.Context, kind SubscriptionKind, value string, sou bool) error {
	body := struct {
		Type  SubscriptionKind `json:"type"`
		Value string           `json:"value"`
		Sou   bool             `json:"sou"`
	}{kind, value, sou}
	return c.do(ctx, http.MethodPost, "/subs/new-subscribtion", nil, body, nil)
}

func (c *HTTPClient) DeleteSubscription(ctx context.Context, kind SubscriptionKind, id int) error {
	q := url.Values{"id": {strconv.Itoa(id)}, "type": {string(kind)}}
	return c.do(ctx, http.MethodGet, "/subs/delete", q, nil, nil)
}

func (c *HTTPClient) UpdatePushUID(ctx context.Context, uid string) error {
	body := struct {
		UID string `json:"uid"`
	}{uid}
	return c.do(ctx, http.MethodPost, "/auth/edit-push-uid", nil, body, nil)
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout/", nil, nil, nil)
}

// Download GETs an absolute URL, or a path relative to the base URL, and
// returns the raw body with its content type.
func (c *HTTPClient) Download(ctx context.Context, rawURL string) ([]byte, string, error) {
	if strings.HasPrefix(rawURL, "/") {
		rawURL = c.baseURL + rawURL
	}
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/pdf, */*")
	if !c.sameOrigin(req.URL) {
		// document links may point at third-party court sites
		req.Header.Del("Authorization")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", c.mapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", statusError(resp.StatusCode, readErrorMessage(resp.Body))
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", c.mapError(err)
	}
	return b, resp.Header.Get("Content-Type"), nil
}

func (c *HTTPClient) sameOrigin(u *url.URL) bool {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, base.Scheme) && strings.EqualFold(u.Host, base.Host)
}

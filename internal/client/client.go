// Package client is a Go SDK for the referral HTTP API together with the
// session-side behavior of the web frontend: view routing, the Paid
// confirmation flow, optimistic board updates and reminder polling.
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
	"strings"
	"sync"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	referraldto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/referral"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	Address    string
	HTTPClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func NewClient(address string, opts ...Option) *Client {
	c := &Client{
		Address:    strings.TrimRight(address, "/"),
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the session token sent as a Bearer header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// APIError is a non-2xx response. It unwraps to the matching domain error.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("referral api: %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusBadRequest:
		return domain.ErrValidation
	case e.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return domain.ErrAuth
	case e.StatusCode == http.StatusConflict:
		return domain.ErrConfirmationRequired
	case e.StatusCode >= 500:
		return domain.ErrTransientStore
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Address+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) ([]byte, http.Header, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, resp.Header, nil
	}

	var errorResponse response.ErrorResponse
	if err := json.Unmarshal(body, &errorResponse); err != nil || errorResponse.Error == "" {
		errorResponse.Error = http.StatusText(resp.StatusCode)
	}
	return nil, nil, &APIError{StatusCode: resp.StatusCode, Message: errorResponse.Error}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return err
	}
	body, _, err := c.send(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// LoginGoogle exchanges a Google ID token for a session. The returned token, if any,
// is kept for later calls.
func (c *Client) LoginGoogle(ctx context.Context, idToken string) (*response.LoginResponse, error) {
	var out response.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login/google", request.GoogleLoginRequest{IDToken: idToken}, &out); err != nil {
		return nil, err
	}
	if out.Token != "" {
		c.SetToken(out.Token)
	}
	return &out, nil
}

func (c *Client) Verify(ctx context.Context, token string) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodGet, "/verify/"+url.PathEscape(token), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Services(ctx context.Context) ([]domain.Service, error) {
	var out response.ServicesResponse
	if err := c.do(ctx, http.MethodGet, "/services", nil, &out); err != nil {
		return nil, err
	}
	return out.Services, nil
}

func (c *Client) AdminData(ctx context.Context) (*referraldto.AdminDataOutput, error) {
	var out referraldto.AdminDataOutput
	if err := c.do(ctx, http.MethodGet, "/admin/data", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListReferrals(ctx context.Context, search, status string) ([]*domain.Referral, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if status != "" {
		q.Set("status", status)
	}
	path := "/admin/referrals"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out response.ReferralsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Referrals, nil
}

func (c *Client) DueReminders(ctx context.Context) ([]*domain.Referral, error) {
	var out response.ReferralsResponse
	if err := c.do(ctx, http.MethodGet, "/admin/reminders/due", nil, &out); err != nil {
		return nil, err
	}
	return out.Referrals, nil
}

// Export downloads the referral table as "csv" or "xlsx" and returns the body with its filename.
func (c *Client) Export(ctx context.Context, format string) ([]byte, string, error) {
	if format != "csv" && format != "xlsx" {
		return nil, "", fmt.Errorf("%w: unknown export format %q", domain.ErrValidation, format)
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/export."+format, nil)
	if err != nil {
		return nil, "", err
	}
	body, header, err := c.send(req)
	if err != nil {
		return nil, "", err
	}
	return body, attachmentName(header.Get("Content-Disposition")), nil
}

func attachmentName(disposition string) string {
	_, name, ok := strings.Cut(disposition, "filename=")
	if !ok {
		return ""
	}
	return strings.Trim(name, `"`)
}

func (c *Client) UserData(ctx context.Context, userID string) (*referraldto.UserDataOutput, error) {
	var out referraldto.UserDataOutput
	path := "/user/data?" + url.Values{"userId": {userID}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitReferral(ctx context.Context, in request.SubmitReferralRequest) (*domain.Referral, error) {
	var out response.SubmitReferralResponse
	if err := c.do(ctx, http.MethodPost, "/referral/submit", in, &out); err != nil {
		return nil, err
	}
	return out.Referral, nil
}

func (c *Client) SetStatus(ctx context.Context, in request.SetStatusRequest) (*response.SetStatusResponse, error) {
	var out response.SetStatusResponse
	if err := c.do(ctx, http.MethodPost, "/referral/status", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetReminder(ctx context.Context, in request.SetReminderRequest) (*domain.Referral, error) {
	var out response.SetReminderResponse
	if err := c.do(ctx, http.MethodPost, "/referral/reminder", in, &out); err != nil {
		return nil, err
	}
	return out.Referral, nil
}

func (c *Client) UpdateProfile(ctx context.Context, in request.UpdateProfileRequest) (*response.UpdateProfileResponse, error) {
	var out response.UpdateProfileResponse
	if err := c.do(ctx, http.MethodPost, "/user/profile", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsRetryable reports whether err is a transient failure worth retrying by hand.
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrTransientStore)
}

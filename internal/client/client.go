// Package client provides an HTTP client for the property-management REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/evcraddock/rentroll/internal/agreement"
	"github.com/evcraddock/rentroll/internal/apierr"
	"github.com/evcraddock/rentroll/internal/building"
	"github.com/evcraddock/rentroll/internal/unit"
	"github.com/evcraddock/rentroll/internal/user"
)

// DefaultSessionPath is the endpoint used to resolve the current user from a
// persisted credential.
const DefaultSessionPath = "/api/users/me"

// RequestIDHeader carries a per-request id for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// Client is an HTTP client for the property-management API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	sessionPath string

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero or less disables it.
func WithRateLimit(perSec float64) Option {
	return func(c *Client) {
		if perSec <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSec)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// WithSessionPath sets the endpoint used by Bootstrap.
func WithSessionPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.sessionPath = path
		}
	}
}

// New creates a new API client.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		token:       token,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		sessionPath: DefaultSessionPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer credential sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer credential.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// LoginResult is the response from POST /api/users/login.
type LoginResult struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// Login exchanges credentials for a token. The token is not installed on the
// client; the session decides when to do that.
func (c *Client) Login(ctx context.Context, in user.LoginInput) (*LoginResult, error) {
	var res LoginResult
	if err := c.post(ctx, "/api/users/login", in, &res, "data"); err != nil {
		return nil, err
	}
	if res.Token == "" || res.User == nil {
		return nil, apierr.Network(fmt.Errorf("login response missing token or user"))
	}
	return &res, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, in user.RegisterInput) error {
	return c.post(ctx, "/api/users/register", in, nil)
}

// Me returns the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (*user.User, error) {
	return c.currentUser(ctx, DefaultSessionPath)
}

// Bootstrap resolves the current user through the configured session path.
func (c *Client) Bootstrap(ctx context.Context) (*user.User, error) {
	return c.currentUser(ctx, c.sessionPath)
}

func (c *Client) currentUser(ctx context.Context, path string) (*user.User, error) {
	var u user.User
	if err := c.get(ctx, path, &u, "data", "user"); err != nil {
		return nil, err
	}
	return &u, nil
}

// ChangePassword replaces the password of the current user.
func (c *Client) ChangePassword(ctx context.Context, in user.PasswordChangeInput) error {
	return c.post(ctx, "/api/users/password", in, nil)
}

// ListBuildings returns the buildings of the current owner.
func (c *Client) ListBuildings(ctx context.Context) ([]building.Building, error) {
	var bs []building.Building
	if err := c.get(ctx, "/api/buildings", &bs, "data", "buildings"); err != nil {
		return nil, err
	}
	return bs, nil
}

// CreateBuilding adds a building.
func (c *Client) CreateBuilding(ctx context.Context, in building.Input) (*building.Building, error) {
	var b building.Building
	if err := c.post(ctx, "/api/buildings", in, &b, "data"); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBuilding replaces the editable fields of a building.
func (c *Client) UpdateBuilding(ctx context.Context, id string, in building.Input) (*building.Building, error) {
	var b building.Building
	if err := c.put(ctx, "/api/buildings/"+url.PathEscape(id), in, &b, "data"); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListUnits returns the units of a building.
func (c *Client) ListUnits(ctx context.Context, buildingID string) ([]unit.Unit, error) {
	var us []unit.Unit
	path := "/api/units?" + url.Values{"buildingId": {buildingID}}.Encode()
	if err := c.get(ctx, path, &us, "units", "data"); err != nil {
		return nil, err
	}
	return us, nil
}

// CreateUnit adds a unit to the building named in the input.
func (c *Client) CreateUnit(ctx context.Context, in unit.Input) (*unit.Unit, error) {
	var u unit.Unit
	if err := c.post(ctx, "/api/units", in, &u, "data"); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUnit replaces the editable fields of a unit.
func (c *Client) UpdateUnit(ctx context.Context, id string, in unit.Input) (*unit.Unit, error) {
	var u unit.Unit
	if err := c.put(ctx, "/api/units/"+url.PathEscape(id), in, &u, "data"); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListAgreements returns the agreements of a unit.
func (c *Client) ListAgreements(ctx context.Context, unitID string) ([]agreement.Agreement, error) {
	var as []agreement.Agreement
	path := "/api/agreements?" + url.Values{"unitId": {unitID}}.Encode()
	if err := c.get(ctx, path, &as, "data", "agreements"); err != nil {
		return nil, err
	}
	return as, nil
}

// OwnerAgreements returns every agreement across the owner's units.
func (c *Client) OwnerAgreements(ctx context.Context) ([]agreement.Agreement, error) {
	var as []agreement.Agreement
	if err := c.get(ctx, "/api/agreements", &as, "data", "agreements"); err != nil {
		return nil, err
	}
	return as, nil
}

// MyAgreements returns the residences of the current tenant.
func (c *Client) MyAgreements(ctx context.Context) ([]agreement.Agreement, error) {
	var as []agreement.Agreement
	if err := c.get(ctx, "/api/tenant/agreements", &as, "data", "agreements"); err != nil {
		return nil, err
	}
	return as, nil
}

// CreateAgreement adds an agreement.
func (c *Client) CreateAgreement(ctx context.Context, in agreement.CreateInput) (*agreement.Agreement, error) {
	var a agreement.Agreement
	if err := c.post(ctx, "/api/agreements", in, &a, "data"); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAgreement changes the mutable fields of an agreement.
func (c *Client) UpdateAgreement(ctx context.Context, id string, in agreement.UpdateInput) (*agreement.Agreement, error) {
	var a agreement.Agreement
	if err := c.put(ctx, "/api/agreements/"+url.PathEscape(id), in, &a, "data"); err != nil {
		return nil, err
	}
	return &a, nil
}

// TerminateAgreement ends an agreement. The response body is not used.
func (c *Client) TerminateAgreement(ctx context.Context, id string) error {
	return c.put(ctx, "/api/agreements/"+url.PathEscape(id)+"/terminate", struct{}{}, nil)
}

// SearchTenant looks a tenant up by email.
func (c *Client) SearchTenant(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	path := "/api/users/search?" + url.Values{"email": {email}}.Encode()
	if err := c.get(ctx, path, &u, "data", "user"); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateTenant creates a tenant account on behalf of the owner.
func (c *Client) CreateTenant(ctx context.Context, in user.TenantInput) (*user.User, error) {
	var u user.User
	if err := c.post(ctx, "/api/tenants", in, &u, "user", "data"); err != nil {
		return nil, err
	}
	return &u, nil
}

// DashboardStats returns the owner's aggregate counts.
func (c *Client) DashboardStats(ctx context.Context) (*user.DashboardStats, error) {
	var s user.DashboardStats
	if err := c.get(ctx, "/api/dashboard/stats", &s, "data"); err != nil {
		return nil, err
	}
	return &s, nil
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, result any, envelope ...string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result, envelope)
}

// post performs a POST request with a JSON body and decodes the response.
func (c *Client) post(ctx context.Context, path string, body, result any, envelope ...string) error {
	return c.send(ctx, http.MethodPost, path, body, result, envelope)
}

// put performs a PUT request with a JSON body and decodes the response.
func (c *Client) put(ctx context.Context, path string, body, result any, envelope ...string) error {
	return c.send(ctx, http.MethodPut, path, body, result, envelope)
}

func (c *Client) send(ctx context.Context, method, path string, body, result any, envelope []string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result, envelope)
}

// do executes an HTTP request with auth header and classifies failures.
func (c *Client) do(req *http.Request, result any, envelope []string) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return apierr.Network(fmt.Errorf("waiting for rate limiter: %w", err))
		}
	}

	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierr.Network(fmt.Errorf("request failed: %w", err))
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierr.Network(fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, respBody)
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(unwrap(respBody, envelope), result); err != nil {
			return apierr.Network(fmt.Errorf("decoding response: %w", err))
		}
	}

	return nil
}

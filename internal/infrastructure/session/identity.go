package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

// IdentityClient fronts the external identity provider's token endpoints.
// Provider internals (password hashing, token issuance) stay behind this
// boundary.
type IdentityClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewIdentityClient(baseURL, apiKey string) *IdentityClient {
	return &IdentityClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := c.post(ctx, "/auth/v1/token?grant_type=password", "", payload, &resp); err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "sign in", err)
	}

	now := time.Now().UTC()
	expiresIn := resp.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	return &domain.Session{
		Token:     resp.AccessToken,
		UserID:    resp.User.ID,
		Email:     resp.User.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(expiresIn) * time.Second),
	}, nil
}

func (c *IdentityClient) SignOut(ctx context.Context, token string) error {
	if err := c.post(ctx, "/auth/v1/logout", token, nil, nil); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (c *IdentityClient) UserFromToken(ctx context.Context, token string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create user request: %w", err)
	}
	c.authorize(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "fetch user", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, providerError("fetch user", resp)
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	return &user, nil
}

func (c *IdentityClient) post(ctx context.Context, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, "identity provider", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return providerError("identity provider", resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *IdentityClient) authorize(req *http.Request, token string) {
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func providerError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = resp.Status
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return domain.WrapError(domain.ErrUnauthorized, operation, fmt.Errorf("%s", msg))
	}
	return fmt.Errorf("%s: %s", operation, msg)
}

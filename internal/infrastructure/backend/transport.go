package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

const identityHeader = "X-User-ID"

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// getJSON performs an idempotent read with retry.
func (c *Client) getJSON(ctx context.Context, ident domain.Identity, path string, out any, operation string) error {
	if err := requireIdentity(ident, operation); err != nil {
		return err
	}
	return c.executor.Execute(ctx, operation, func(ctx context.Context) error {
		return c.roundTrip(ctx, ident, http.MethodGet, path, "", nil, out, operation)
	}, classifyBackendError)
}

// postIdempotent is for POST endpoints that derive rather than mutate
// (validation); they retry like reads.
func (c *Client) postIdempotent(ctx context.Context, ident domain.Identity, path string, out any, operation string) error {
	if err := requireIdentity(ident, operation); err != nil {
		return err
	}
	return c.executor.Execute(ctx, operation, func(ctx context.Context) error {
		return c.roundTrip(ctx, ident, http.MethodPost, path, "", nil, out, operation)
	}, classifyBackendError)
}

// sendJSON performs a one-shot mutation: no retry, failures still feed
// the breaker.
func (c *Client) sendJSON(ctx context.Context, ident domain.Identity, method, path string, payload, out any, operation string) error {
	if err := requireIdentity(ident, operation); err != nil {
		return err
	}

	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", operation, err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	return c.executor.Execute(ctx, operation, func(ctx context.Context) error {
		return c.roundTrip(ctx, ident, method, path, contentType, body, out, operation)
	}, classifyMutationError)
}

// getBlob performs an idempotent binary read with retry and reports the
// response content type alongside the bytes.
func (c *Client) getBlob(ctx context.Context, ident domain.Identity, path, operation string) ([]byte, string, error) {
	if err := requireIdentity(ident, operation); err != nil {
		return nil, "", err
	}

	var blob []byte
	var contentType string
	err := c.executor.Execute(ctx, operation, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("create %s request: %w", operation, err)
		}
		req.Header.Set(identityHeader, ident.UserID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return domain.WrapError(domain.ErrTemporary, operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return statusError(operation, resp)
		}
		contentType = resp.Header.Get("Content-Type")
		blob, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read %s response: %w", operation, err)
		}
		return nil
	}, classifyBackendError)
	if err != nil {
		return nil, "", err
	}
	return blob, contentType, nil
}

func (c *Client) postBlob(ctx context.Context, ident domain.Identity, path, operation string) ([]byte, error) {
	if err := requireIdentity(ident, operation); err != nil {
		return nil, err
	}

	var blob []byte
	err := c.executor.Execute(ctx, operation, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("create %s request: %w", operation, err)
		}
		req.Header.Set(identityHeader, ident.UserID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return domain.WrapError(domain.ErrTemporary, operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return statusError(operation, resp)
		}
		blob, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read %s response: %w", operation, err)
		}
		return nil
	}, classifyMutationError)
	if err != nil {
		return nil, err
	}
	return blob, nil
}

func (c *Client) postMultipart(ctx context.Context, ident domain.Identity, path string, files []domain.UploadFile, out any, operation string) error {
	if err := requireIdentity(ident, operation); err != nil {
		return err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Filename)
		if err != nil {
			return fmt.Errorf("build %s form: %w", operation, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("build %s form: %w", operation, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("build %s form: %w", operation, err)
	}

	return c.executor.Execute(ctx, operation, func(ctx context.Context) error {
		return c.roundTrip(ctx, ident, http.MethodPost, path, writer.FormDataContentType(), bytes.NewReader(buf.Bytes()), out, operation)
	}, classifyMutationError)
}

func (c *Client) roundTrip(ctx context.Context, ident domain.Identity, method, path, contentType string, body io.Reader, out any, operation string) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set(identityHeader, ident.UserID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(operation, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func statusError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	detail := strings.TrimSpace(string(raw))

	var payload struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Detail != "" {
		detail = payload.Detail
	}
	if detail == "" {
		detail = resp.Status
	}

	base := fmt.Errorf("backend %s: %s", operation, detail)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.WrapError(notFoundKind(operation), operation, base)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.WrapError(domain.ErrUnauthorized, operation, base)
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
		return domain.WrapError(domain.ErrInvalidInput, operation, base)
	case resp.StatusCode >= 500:
		return domain.WrapError(domain.ErrTemporary, operation, base)
	default:
		return base
	}
}

func notFoundKind(operation string) error {
	switch {
	case strings.HasPrefix(operation, "documents."):
		return domain.ErrDocumentNotFound
	case strings.HasPrefix(operation, "extractions."):
		return domain.ErrFieldNotFound
	default:
		return domain.ErrProjectNotFound
	}
}

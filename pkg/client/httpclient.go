package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "innkeep/pkg/errors"
)

type HttpClient struct {
	BaseURL    string
	HTTPClient *http.Client
	headers    map[string]string
}

func NewHttpClient(baseURL string) *HttpClient {
	return &HttpClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		headers: map[string]string{},
	}
}

// SetHeader sends key on every subsequent request.
func (c *HttpClient) SetHeader(key, value string) {
	c.headers[key] = value
}

type Response struct {
	*http.Response
	Body []byte
}

type Metadata struct {
	TotalCount int64
	Limit      int
	Offset     int64
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

func (r *Response) ToString() string {
	if r.Response == nil || r.Request == nil {
		return string(r.Body)
	}
	return fmt.Sprintf("%s %s -> %d: %s", r.Request.Method, r.Request.URL.Path, r.StatusCode, r.Body)
}

// DecodeData unwraps the {"data": ...} envelope into T.
func DecodeData[T any](resp *Response) (*T, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode response wrapper:\n%s\n%w", resp.ToString(), err)
	}

	var out T
	if err := json.Unmarshal(wrapper.Data, &out); err != nil {
		return nil, fmt.Errorf("could not decode response data:\n%s\n%w", resp.ToString(), err)
	}
	return &out, nil
}

// DecodePage unwraps a paginated envelope into a slice of T.
func DecodePage[T any](resp *Response) ([]*T, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%s\n%w", resp.ToString(), err)
	}

	var items []*T
	if err := json.Unmarshal(wrapper.Data, &items); err != nil {
		return nil, nil, fmt.Errorf("could not decode list:\n%s\n%w", resp.ToString(), err)
	}

	return items, &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}, nil
}

func (c *HttpClient) GET(path string) (*Response, error) {
	return c.request(http.MethodGet, path, nil, nil)
}

func (c *HttpClient) POST(path string, body any) (*Response, error) {
	return c.request(http.MethodPost, path, body, nil)
}

func (c *HttpClient) PATCH(path string, body any) (*Response, error) {
	return c.request(http.MethodPatch, path, body, nil)
}

func (c *HttpClient) DELETE(path string) (*Response, error) {
	return c.request(http.MethodDelete, path, nil, nil)
}

func (c *HttpClient) POSTWithHeaders(path string, body any, headers map[string]string) (*Response, error) {
	return c.request(http.MethodPost, path, body, headers)
}

// POSTRaw sends rawBody untouched, for malformed-payload and signature tests.
func (c *HttpClient) POSTRaw(path string, rawBody []byte) (*Response, error) {
	return c.requestRaw(http.MethodPost, path, rawBody, nil)
}

// request marshals body as JSON. A nil body sends no payload, which the
// bookings API accepts on bodiless POSTs such as complete.
func (c *HttpClient) request(method, path string, body any, headers map[string]string) (*Response, error) {
	if body == nil {
		return c.requestRaw(method, path, nil, headers)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s %s body: %w", method, path, err)
	}
	return c.requestRaw(method, path, payload, headers)
}

func (c *HttpClient) requestRaw(method, path string, rawBody []byte, headers map[string]string) (*Response, error) {
	var body io.Reader
	if rawBody != nil {
		body = bytes.NewReader(rawBody)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}
	if rawBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, set := range []map[string]string{c.headers, headers} {
		for key, value := range set {
			req.Header.Set(key, value)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}
	return &Response{Response: resp, Body: respBody}, nil
}

// WaitForHealthy polls /ready until the service reports its dependencies up.
func (c *HttpClient) WaitForHealthy(maxWait time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), maxWait)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		if resp, err := c.GET("/ready"); err == nil && resp.StatusCode == http.StatusOK {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("service at %s not ready within %v", c.BaseURL, maxWait)
		case <-ticker.C:
		}
	}
}

// GetErrorMessage extracts the message from an error envelope, falling back
// to its code.
func GetErrorMessage(resp *Response) string {
	var body apperrors.ErrorResponse
	if err := resp.DecodeJSON(&body); err != nil {
		return fmt.Sprintf("non-JSON error body (%v): %s", err, resp.Body)
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Code
}

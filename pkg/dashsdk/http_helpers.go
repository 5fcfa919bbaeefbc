package dashsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any, expected int) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out, expected)
}

func (c *Client) getJSON(ctx context.Context, path string, out any, expected int) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out, expected)
}

// doJSON performs a JSON request, attaching the session token as a bearer
// header when held, and decodes the response or its error body.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, expected int) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expected {
		return parseErrorResponse(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseErrorResponse turns an error body back into an APIError.
func parseErrorResponse(status int, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return &APIError{StatusCode: status, Message: er.Error}
	}
	return &APIError{StatusCode: status, Message: http.StatusText(status)}
}

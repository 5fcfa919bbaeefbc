package httpx

import (
	"bytes"
	"io"
	"net/http"
)

// maxPeekBytes caps how much of a request body middleware will buffer.
const maxPeekBytes = 1 << 20

// peekBody reads the request body and replaces it so downstream handlers can
// read it again.
func peekBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes))
	if err != nil {
		return nil, err
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// Package backend is the HTTP adapter for the DermaSense analysis service.
// All response normalization happens here, at the boundary; application code
// only ever sees the typed domain model and the derrors taxonomy.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/derrors"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/session"
)

// Client issues typed requests against the backend REST API. It attaches the
// session's bearer credential when present; if absent the call still fires
// and the server decides authorization. No retries at this layer; retry is
// a workflow decision.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sess       *session.Session
}

// New creates a backend client bound to a session context.
func New(baseURL string, sess *session.Session, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		sess:       sess,
	}
}

// detailResponse is FastAPI's structured error body.
type detailResponse struct {
	Detail string `json:"detail"`
}

// doJSON sends a JSON request and decodes a JSON response into out (out may
// be nil for fire-and-confirm calls).
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// send fires a prepared request, maps failures onto the error taxonomy and
// decodes the response.
func (c *Client) send(req *http.Request, out any) error {
	if token := c.sess.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return derrors.Wrap(derrors.KindNetwork, "could not reach the analysis service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errorFromStatus(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return derrors.Wrap(derrors.KindServer, "malformed response from the analysis service", err)
	}
	return nil
}

func errorFromStatus(resp *http.Response) error {
	var detail detailResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &detail)
	msg := detail.Detail
	if msg == "" {
		msg = fmt.Sprintf("the analysis service returned status %d", resp.StatusCode)
	}

	e := &derrors.Error{Message: msg, Status: resp.StatusCode}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		e.Kind = derrors.KindAuth
	case resp.StatusCode >= 500:
		e.Kind = derrors.KindServer
	default:
		e.Kind = derrors.KindValidation
	}
	return e
}

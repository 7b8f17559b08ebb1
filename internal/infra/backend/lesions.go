package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/lesions"
)

// List implements lesions.Directory.
func (c *Client) List(ctx context.Context) ([]lesions.Lesion, error) {
	var out []lesions.Lesion
	if err := c.doJSON(ctx, http.MethodGet, "/api/lesions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create registers a new tracked lesion and returns the server's
// representation of it.
func (c *Client) Create(ctx context.Context, nickname, bodyPart string) (*lesions.Lesion, error) {
	body := struct {
		Nickname string `json:"nickname"`
		BodyPart string `json:"body_part"`
	}{Nickname: nickname, BodyPart: bodyPart}

	var out lesions.Lesion
	if err := c.doJSON(ctx, http.MethodPost, "/api/lesions", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a lesion and all of its scans.
func (c *Client) Delete(ctx context.Context, id lesions.ID) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/lesions/%d", id), nil, nil)
}

// Scans fetches the full scan history for one lesion. The service orders
// newest-first but callers must not rely on that.
func (c *Client) Scans(ctx context.Context, id lesions.ID) ([]lesions.Scan, error) {
	var out []lesions.Scan
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/lesions/%d/scans", id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Comparison asks the service for an AI delta between the lesion's two most
// recent scans. The server picks the pair and writes the verdict.
func (c *Client) Comparison(ctx context.Context, id lesions.ID) (*lesions.Comparison, error) {
	var out lesions.Comparison
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/lesions/%d/compare", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Package connector drives the knowledge refresh of the external
// jagmag connector service: three sequential phases (policies, pages,
// batched products) behind an admin bearer secret.
package connector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	productBatchSize = 10
	productSafetyCap = 2000
	maxZeroBatches   = 3
	maxErrorBody     = 800
)

var ErrNotConfigured = errors.New("connector url or admin secret not configured")

// Config locates the connector and carries the admin credential.
type Config struct {
	BaseURL     string
	AdminSecret string
	Timeout     time.Duration
}

// Summary reports how many items each phase curated.
type Summary struct {
	Policies int `json:"policies"`
	Pages    int `json:"pages"`
	Products int `json:"products"`
}

// PhaseError carries the phase label and upstream status so the CRM UI
// can show the real cause of a failed refresh.
type PhaseError struct {
	Phase  string
	Status int
	Body   string
	Err    error
}

func (e *PhaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
	}
	msg := fmt.Sprintf("%s failed: HTTP %d", e.Phase, e.Status)
	if e.Body != "" {
		msg += " | " + e.Body
	}
	return msg
}

func (e *PhaseError) Unwrap() error { return e.Err }

// Client polls the connector's admin endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: timeout}}
}

// Configured reports whether the connector can be reached at all.
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.AdminSecret != ""
}

// Refresh runs all three phases in order and stops on the first
// failure. Products are pulled in fixed-size batches until the safety
// cap or three consecutive empty batches.
func (c *Client) Refresh(ctx context.Context) (Summary, error) {
	if !c.Configured() {
		return Summary{}, ErrNotConfigured
	}

	var sum Summary

	log.Printf("[connector] phase A: refreshing policies")
	res, err := c.updateKnowledge(ctx, "Phase A (policies)", "policies", 0, 50, true)
	if err != nil {
		return Summary{}, err
	}
	sum.Policies = res.ItemsCurated

	log.Printf("[connector] phase B: refreshing pages")
	res, err = c.updateKnowledge(ctx, "Phase B (pages)", "pages", 0, 50, false)
	if err != nil {
		return Summary{}, err
	}
	sum.Pages = res.ItemsCurated

	log.Printf("[connector] phase C: refreshing products")
	zeroBatches := 0
	for offset := 0; offset < productSafetyCap && zeroBatches < maxZeroBatches; offset += productBatchSize {
		label := fmt.Sprintf("Phase C (products) batch offset=%d", offset)
		res, err = c.updateKnowledge(ctx, label, "products", offset, productBatchSize, false)
		if err != nil {
			return Summary{}, err
		}
		sum.Products += res.ItemsCurated
		if res.ItemsCurated == 0 {
			zeroBatches++
		} else {
			zeroBatches = 0
		}
	}

	log.Printf("[connector] refresh complete: %d policies, %d pages, %d products", sum.Policies, sum.Pages, sum.Products)
	return sum, nil
}

type knowledgeResult struct {
	ItemsCurated int `json:"items_curated"`
}

func (c *Client) updateKnowledge(ctx context.Context, phase, kind string, offset, limit int, reset bool) (knowledgeResult, error) {
	url := fmt.Sprintf("%s/api/connector?admin=update-knowledge&kind=%s&offset=%d&limit=%d", c.cfg.BaseURL, kind, offset, limit)
	if reset {
		url += "&reset=1"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return knowledgeResult{}, &PhaseError{Phase: phase, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AdminSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return knowledgeResult{}, &PhaseError{Phase: phase, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return knowledgeResult{}, &PhaseError{Phase: phase, Status: resp.StatusCode, Body: string(body)}
	}

	var result knowledgeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return knowledgeResult{}, &PhaseError{Phase: phase, Err: fmt.Errorf("decode response: %w", err)}
	}
	return result, nil
}

// Package modelservice is the HTTP client for the external model trainer.
// The trainer is a black box: per-call success/failure is the only contract.
package modelservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/tildelab/tildes-backend/internal/config"
)

// Client talks to the external model-training service. Every call carries the
// configured bypass header and is bounded by the configured timeout.
type Client struct {
	baseURL      string
	bypassHeader string
	bypassValue  string
	timeout      time.Duration
	httpClient   *http.Client
	log          zerolog.Logger
}

// NewClient creates a model-service client from configuration.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		baseURL:      cfg.ModelServiceURL,
		bypassHeader: cfg.ModelBypassHeader,
		bypassValue:  cfg.ModelBypassValue,
		timeout:      cfg.ModelCallTimeout,
		httpClient:   &http.Client{},
		log:          log.With().Str("component", "modelservice").Logger(),
	}
}

// ModelMetrics is one row of a model evaluation.
type ModelMetrics struct {
	Model    string  `json:"model"`
	Accuracy float64 `json:"accuracy"`
	Loss     float64 `json:"loss"`
}

// Provision creates a fresh model under the given handle.
// POST /models/:name
func (c *Client) Provision(ctx context.Context, handle string) error {
	return c.do(ctx, http.MethodPost, "/models/"+url.PathEscape(handle), nil, nil)
}

// Train runs one training round against a model with the given answers.
// The service replies with a list of triples; callers decide which fields
// they keep.
// POST /models/:name/train
func (c *Client) Train(ctx context.Context, handle string, answers map[string]string) ([][]string, error) {
	var triples [][]string
	err := c.do(ctx, http.MethodPost, "/models/"+url.PathEscape(handle)+"/train", answers, &triples)
	if err != nil {
		return nil, err
	}
	return triples, nil
}

// TestModels evaluates a set of models in one call.
// POST /models/test
func (c *Client) TestModels(ctx context.Context, modelNames []string) ([]ModelMetrics, error) {
	body := map[string][]string{"model_names": modelNames}
	var metrics []ModelMetrics
	if err := c.do(ctx, http.MethodPost, "/models/test", body, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// ConfusionMatrix fetches the raw (un-normalized) confusion matrix of a model.
// POST /models/:name/matrix
func (c *Client) ConfusionMatrix(ctx context.Context, handle string) ([][]float64, error) {
	var matrix [][]float64
	err := c.do(ctx, http.MethodPost, "/models/"+url.PathEscape(handle)+"/matrix", nil, &matrix)
	if err != nil {
		return nil, err
	}
	return matrix, nil
}

// DeleteClassNamespace asks the trainer to drop every model of a class.
// PUT /class/:code/delete
func (c *Client) DeleteClassNamespace(ctx context.Context, classCode string) error {
	return c.do(ctx, http.MethodPut, "/class/"+url.PathEscape(classCode)+"/delete", nil, nil)
}

// do performs one bounded JSON round trip. Non-2xx statuses and transport
// errors both come back as plain errors; the training controller counts
// either kind against its failure budget.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.bypassHeader, c.bypassValue)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call model service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("model service returned %d for %s %s", resp.StatusCode, method, path)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

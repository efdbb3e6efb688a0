package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Options configures the provider client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client is the HTTP client for the external training/generation
// provider. All calls are blocking JSON round trips; the pipeline's
// gates supply the waiting and retrying on top.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a provider client.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.APIKey),
	}
}

// CreateModel requests a fine-tuned model for a group of uploaded photos
// and returns the provider's opaque model ID.
func (c *Client) CreateModel(ctx context.Context, req CreateModelRequest) (string, error) {
	if len(req.SourceAssetURLs) == 0 {
		return "", errors.New("provider: at least one source asset url required")
	}

	var resp createModelResponse
	if err := c.doJSON(ctx, http.MethodPost, "/models", req, &resp); err != nil {
		return "", err
	}
	if resp.ModelID == "" {
		return "", errors.New("provider: create-model response missing model_id")
	}
	return resp.ModelID, nil
}

// GetModelStatus queries the live training status of a model.
func (c *Client) GetModelStatus(ctx context.Context, modelID string) (ModelStatus, error) {
	var resp ModelStatus
	path := "/models/" + url.PathEscape(modelID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return ModelStatus{}, err
	}
	return resp, nil
}

// SubmitGeneration submits one prompt for generation and returns the
// submission ID to poll for output.
func (c *Client) SubmitGeneration(ctx context.Context, req GenerationRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", errors.New("provider: prompt text required")
	}

	var resp submitGenerationResponse
	if err := c.doJSON(ctx, http.MethodPost, "/generations", req, &resp); err != nil {
		return "", err
	}
	if resp.SubmissionID == "" {
		return "", errors.New("provider: submit-generation response missing submission_id")
	}
	return resp.SubmissionID, nil
}

// GetGenerationImages returns the output image URLs produced so far for
// a submission. The list is empty while the generation is pending.
func (c *Client) GetGenerationImages(ctx context.Context, submissionID string) ([]string, error) {
	var resp generationStatusResponse
	path := "/generations/" + url.PathEscape(submissionID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Images, nil
}

// doJSON performs one JSON round trip against the provider API.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	if c.token == "" {
		return errors.New("provider: API key is missing")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("provider: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("provider: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("provider: %s %s: %s (%s)", method, path, apiErr.Message, resp.Status)
		}
		return fmt.Errorf("provider: %s %s: unexpected status %s", method, path, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("provider: decode response: %w", err)
	}
	return nil
}

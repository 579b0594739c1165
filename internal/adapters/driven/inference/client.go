package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
)

// Ensure Client implements the interfaces.
var (
	_ driven.EmbeddingProvider = (*Client)(nil)
	_ driven.HealthChecker     = (*Client)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8500"
	DefaultModel   = "vit-base-patch16-224"
	DefaultTimeout = 60 * time.Second
)

// maxErrorBody bounds how much of an error response is quoted.
const maxErrorBody = 512

// Config holds configuration for the sidecar client.
type Config struct {
	// BaseURL is the sidecar base URL (default: http://localhost:8500).
	BaseURL string

	// Model is the embedding model name (default: vit-base-patch16-224).
	Model string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// RequestsPerSecond throttles requests across all callers. Zero disables
	// throttling.
	RequestsPerSecond float64
}

// Client talks to the inference sidecar. It is safe for concurrent use.
type Client struct {
	client  *http.Client
	baseURL string
	model   string
	limiter *rate.Limiter
}

type embedRequest struct {
	Model string `json:"model"`
	Image string `json:"image"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

type descriptorsRequest struct {
	Image string `json:"image"`
}

type descriptorsResponse struct {
	DescriptorSize int    `json:"descriptor_size"`
	Descriptors    string `json:"descriptors"`
}

// NewClient creates a new sidecar client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		limiter: limiter,
	}
}

// Embed returns the global embedding of img.
func (c *Client) Embed(ctx context.Context, img image.Image) ([]float32, error) {
	encoded, err := encodeImage(img)
	if err != nil {
		return nil, err
	}

	var resp embedResponse
	if err := c.post(ctx, "/v1/embed", embedRequest{Model: c.model, Image: encoded}, &resp); err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("embed: %w: empty embedding", domain.ErrProviderUnavailable)
	}

	embedding := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		embedding[i] = float32(v)
	}
	return embedding, nil
}

// Descriptors returns the local feature descriptors of img.
// An image without keypoints yields an empty set.
func (c *Client) Descriptors(ctx context.Context, img image.Image) (domain.DescriptorSet, error) {
	encoded, err := encodeImage(img)
	if err != nil {
		return domain.DescriptorSet{}, err
	}

	var resp descriptorsResponse
	if err := c.post(ctx, "/v1/descriptors", descriptorsRequest{Image: encoded}, &resp); err != nil {
		return domain.DescriptorSet{}, fmt.Errorf("descriptors: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Descriptors)
	if err != nil {
		return domain.DescriptorSet{}, fmt.Errorf("descriptors: decode payload: %w", err)
	}
	set, err := domain.NewDescriptorSet(resp.DescriptorSize, data)
	if err != nil {
		return domain.DescriptorSet{}, fmt.Errorf("descriptors: %w", err)
	}
	return set, nil
}

// Ping validates the sidecar is reachable without running inference.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("inference: failed to create ping request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("inference: %w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

// post sends a JSON request and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError maps a non-200 response to a domain error.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", domain.ErrDecode, msg)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d: %s", domain.ErrProviderUnavailable, resp.StatusCode, msg)
	default:
		return fmt.Errorf("inference error (status %d): %s", resp.StatusCode, msg)
	}
}

// encodeImage renders img as base64 PNG.
func encodeImage(img image.Image) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", fmt.Errorf("%w: empty image", domain.ErrDecode)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("%w: encode png: %v", domain.ErrDecode, err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// IsUnavailable reports whether err means the sidecar could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrProviderUnavailable)
}

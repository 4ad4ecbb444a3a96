package aiquery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-compliance/internal/config"

	"go.uber.org/zap"
)

// ErrUnavailable means no query service is configured or it failed to
// produce a usable answer.
var ErrUnavailable = errors.New("ai query service unavailable")

// ParsedQuery is the structured interpretation of a natural-language
// question. Filters stay raw; the caller decodes them into its own filter
// shape.
type ParsedQuery struct {
	EntityType   string          `json:"entity_type"`
	SelectFields []string        `json:"select_fields,omitempty"`
	Filters      json.RawMessage `json:"filters,omitempty"`
	GroupBy      []string        `json:"group_by,omitempty"`
	OrderBy      string          `json:"order_by,omitempty"`
}

type QueryResponse struct {
	ParsedQuery       ParsedQuery              `json:"parsed_query"`
	Data              []map[string]interface{} `json:"data,omitempty"`
	InterpretedQuery  string                   `json:"interpreted_query,omitempty"`
	VisualizationType string                   `json:"visualization_type,omitempty"`
}

// Client translates natural-language questions into report drafts via the
// external query service.
type Client interface {
	Generate(ctx context.Context, organizationID, query string) (*QueryResponse, error)
}

type HTTPClient struct {
	BaseURL    string
	HttpClient *http.Client
	Logger     *zap.Logger
}

func NewClient(cfg *config.Config, logger *zap.Logger) Client {
	return &HTTPClient{
		BaseURL: cfg.AIQueryURL,
		HttpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Logger: logger,
	}
}

func (c *HTTPClient) Generate(ctx context.Context, organizationID, query string) (*QueryResponse, error) {
	if c.BaseURL == "" {
		return nil, ErrUnavailable
	}

	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/generate", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Organization-Id", organizationID)

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		c.Logger.Warn("ai query request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.Logger.Warn("ai query returned non-200", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out QueryResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: malformed response", ErrUnavailable)
	}
	return &out, nil
}

// Package genai calls the hosted text-generation provider for the two
// prompt-templated features: customer status messages and menu
// recommendations. Failures surface directly; there is no retry or cache.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	"kitchen-admin/internal/domain"
)

type Client struct {
	endpoint string
	apiKey   string
	model    string
	httpc    *http.Client
}

func NewClient(endpoint, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		httpc:    &http.Client{Timeout: timeout},
	}
}

type StatusMessageInput struct {
	OrderID       string
	CustomerName  string
	CurrentStatus string
	EstimatedTime string
	MenuItems     string
}

var statusPrompt = template.Must(template.New("status").Parse(`You are a helpful assistant for a kitchen staff member.

Based on the current order status, generate a message to inform the customer about their order's progress.
Keep the message concise and friendly.

Order ID: {{.OrderID}}
Customer Name: {{.CustomerName}}
Current Status: {{.CurrentStatus}}
Estimated Time: {{.EstimatedTime}}
Menu Items: {{.MenuItems}}

Suggested Message:`))

// StatusMessage generates a short customer-facing update for an order.
func (c *Client) StatusMessage(ctx context.Context, in StatusMessageInput) (string, error) {
	var buf bytes.Buffer
	if err := statusPrompt.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("%w: render prompt: %v", domain.ErrGenerationFailure, err)
	}
	text, err := c.generate(ctx, buf.String())
	if err != nil {
		return "", err
	}
	return text, nil
}

type Recommendation struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

var recommendPrompt = template.Must(template.New("recommend").Parse(`Based on sales analytics, recommend menu items to feature.

Top sellers by quantity:
{{- range .}}
- {{.Name}}: {{.Quantity}} sold
{{- end}}

Return ONLY a JSON array of objects with fields "item" and "reason", one per recommendation.`))

// TopSeller is one (menu item name, quantity sold) pair grounding a
// recommendation request.
type TopSeller struct {
	Name     string
	Quantity int
}

// RecommendItems asks the provider which menu items to feature, grounded
// in the given top sellers.
func (c *Client) RecommendItems(ctx context.Context, sellers []TopSeller) ([]Recommendation, error) {
	var buf bytes.Buffer
	if err := recommendPrompt.Execute(&buf, sellers); err != nil {
		return nil, fmt.Errorf("%w: render prompt: %v", domain.ErrGenerationFailure, err)
	}
	text, err := c.generate(ctx, buf.String())
	if err != nil {
		return nil, err
	}

	// Some models wrap JSON in a code fence.
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var recs []Recommendation
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &recs); err != nil {
		return nil, fmt.Errorf("%w: unparseable recommendations: %v", domain.ErrGenerationFailure, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: empty recommendations", domain.ErrGenerationFailure)
	}
	return recs, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", domain.ErrGenerationFailure, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", domain.ErrGenerationFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: provider returned %d", domain.ErrGenerationFailure, resp.StatusCode)
	}
	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrGenerationFailure, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrGenerationFailure, out.Error)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrGenerationFailure)
	}
	return strings.TrimSpace(out.Text), nil
}

package whatsapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
)

// Client sends approved template messages through the WhatsApp
// Business API. Template names and parameter order are fixed by the
// provider-side approval process.
type Client struct {
	http   *resty.Client
	cfg    config.WhatsAppConfig
	logger *zap.Logger
}

// New builds a client from configuration.
func New(cfg config.WhatsAppConfig, logger *zap.Logger) *Client {
	return &Client{
		http:   resty.New(),
		cfg:    cfg,
		logger: logger,
	}
}

// Enabled reports whether the channel is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.APIURL != "" && c.cfg.APIToken != ""
}

type templateComponent struct {
	Type       string              `json:"type"`
	SubType    string              `json:"sub_type,omitempty"`
	Index      string              `json:"index,omitempty"`
	Parameters []templateParameter `json:"parameters"`
}

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTemplate delivers one template message. The recipient is a
// bare-digits number without a leading plus.
func (c *Client) SendTemplate(ctx context.Context, to, templateName string, params []string) error {
	normalizedTo := strings.TrimPrefix(strings.TrimSpace(to), "+")

	bodyParams := make([]templateParameter, 0, len(params))
	for _, param := range params {
		bodyParams = append(bodyParams, templateParameter{Type: "text", Text: param})
	}
	components := []templateComponent{
		{Type: "body", Parameters: bodyParams},
	}
	// The OTP template carries the code a second time as a URL button
	// parameter; the provider rejects the send without it.
	if templateName == c.cfg.OTPTemplate && len(params) > 0 {
		components = append(components, templateComponent{
			Type:    "button",
			SubType: "url",
			Index:   "0",
			Parameters: []templateParameter{
				{Type: "text", Text: params[0]},
			},
		})
	}

	body := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                normalizedTo,
		"type":              "template",
		"template": map[string]any{
			"name":       templateName,
			"language":   map[string]string{"code": "en"},
			"components": components,
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(c.cfg.APIToken).
		SetBody(body).
		Post(c.cfg.APIURL)
	if err != nil {
		return fmt.Errorf("whatsapp template %s: %w", templateName, err)
	}
	if resp.IsError() {
		return fmt.Errorf("whatsapp template %s: %s", templateName, strings.TrimSpace(resp.String()))
	}
	return nil
}

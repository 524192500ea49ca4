// Package router delivers built payloads to destination webhook channels.
package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/metrics"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/relay"
)

// ErrChannelNotFound is returned when a mapping names a destination with no
// configured webhook URL. The alert is dropped; there is no retry.
var ErrChannelNotFound = errors.New("destination channel not configured")

// Router resolves destination names to webhook URLs and posts payloads.
type Router struct {
	destinations map[string]string
	client       *http.Client
	logger       *zap.Logger
}

// New builds a Router over the configured destination table.
func New(destinations map[string]string, client *http.Client, logger *zap.Logger) *Router {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{destinations: destinations, client: client, logger: logger}
}

// Deliver posts the embeds to the mapping's destination channel, with the
// role mention (when configured) as leading plain-text content.
func (r *Router) Deliver(ctx context.Context, mapping relay.ChannelMapping, embeds []relay.Embed) error {
	webhookURL, ok := r.destinations[mapping.Destination]
	if !ok || webhookURL == "" {
		metrics.DeliveriesTotal(mapping.Destination, "not_found")
		return fmt.Errorf("destination %q: %w", mapping.Destination, ErrChannelNotFound)
	}

	payload := relay.WebhookPayload{Embeds: embeds}
	if mapping.RoleID != "" {
		payload.Content = fmt.Sprintf("<@&%s>", mapping.RoleID)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		metrics.DeliveriesTotal(mapping.Destination, "error")
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		metrics.DeliveriesTotal(mapping.Destination, "error")
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		metrics.DeliveriesTotal(mapping.Destination, "error")
		return fmt.Errorf("post to destination %q: %w", mapping.Destination, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.DeliveriesTotal(mapping.Destination, "error")
		return fmt.Errorf("destination %q responded %d", mapping.Destination, resp.StatusCode)
	}

	metrics.DeliveriesTotal(mapping.Destination, "ok")
	r.logger.Debug("payload delivered",
		zap.String("destination", mapping.Destination),
		zap.String("category", mapping.Category),
	)
	return nil
}

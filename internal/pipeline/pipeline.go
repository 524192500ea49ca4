// Package pipeline orchestrates the classify → extract → enrich → build →
// deliver flow for each inbound message.
//
// Every failure is terminal for the single message being handled and is
// contained inside that message's handler invocation; nothing here may crash
// the process or affect another in-flight message.
package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/classify"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/extract"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/metrics"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/notify"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/relay"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/sites"
)

// amazonPrefix marks the retailer family whose alerts bypass the structured
// pipeline: their pages are slow to fetch and the producer's own embeds are
// forwarded verbatim instead.
const amazonPrefix = "amazon"

// Enricher resolves product display names; always succeeds, degrading to a
// default name internally.
type Enricher interface {
	Enrich(ctx context.Context, productURL, site string, format relay.Format) string
}

// Deliverer dispatches built payloads to a mapping's destination channel.
type Deliverer interface {
	Deliver(ctx context.Context, mapping relay.ChannelMapping, embeds []relay.Embed) error
}

// Handler runs the relay pipeline for inbound messages. All dependencies
// are immutable after construction, so concurrent Handle calls need no
// locking.
type Handler struct {
	mappings   map[string]relay.ChannelMapping
	classifier *classify.Classifier
	extractors *extract.Set
	registry   *sites.Registry
	enricher   Enricher
	builder    *notify.Builder
	deliverer  Deliverer
	logger     *zap.Logger
}

// New constructs a Handler. Mappings are keyed by source channel ID.
func New(
	mappings []relay.ChannelMapping,
	classifier *classify.Classifier,
	extractors *extract.Set,
	registry *sites.Registry,
	enricher Enricher,
	builder *notify.Builder,
	deliverer Deliverer,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	bySource := make(map[string]relay.ChannelMapping, len(mappings))
	for _, m := range mappings {
		bySource[m.SourceID] = m
	}
	return &Handler{
		mappings:   bySource,
		classifier: classifier,
		extractors: extractors,
		registry:   registry,
		enricher:   enricher,
		builder:    builder,
		deliverer:  deliverer,
		logger:     logger,
	}
}

// Dispatch hands a message to its own goroutine. Panics are contained so a
// malformed message can never take the process down.
func (h *Handler) Dispatch(msg relay.Message) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("message handler panicked", zap.Any("panic", rec))
			}
		}()
		h.Handle(context.Background(), msg)
	}()
}

// Handle processes one inbound message end to end.
func (h *Handler) Handle(ctx context.Context, msg relay.Message) {
	mapping, ok := h.mappings[msg.ChannelID]
	if !ok {
		// Classification is only attempted for configured channels.
		h.logger.Debug("message from unmapped channel", zap.String("channel_id", msg.ChannelID))
		return
	}

	format := h.classifier.Classify(msg)
	if format == relay.FormatUnrecognized {
		// Expected and frequent: the channel carries traffic from many bots.
		metrics.MessagesTotal(string(format), "dropped")
		return
	}

	extractor, ok := h.extractors.For(format)
	if !ok {
		h.logger.Error("no extractor for format", zap.String("format", string(format)))
		metrics.MessagesTotal(string(format), "dropped")
		return
	}

	alert, err := extractor.Extract(msg)
	if strings.HasPrefix(alert.Site, amazonPrefix) {
		// The Amazon family forwards the producer's embeds verbatim even
		// when the rest of the record could not be recovered, so the
		// extraction error is not consulted here.
		h.passthrough(ctx, mapping, msg, alert)
		return
	}
	if err != nil {
		h.logger.Warn("extraction incomplete",
			zap.String("format", string(format)),
			zap.String("channel_id", msg.ChannelID),
			zap.Error(err),
		)
		metrics.MessagesTotal(string(format), "incomplete")
		return
	}

	resolved, err := h.resolve(alert)
	if err != nil {
		h.logger.Warn("site not registered",
			zap.String("site", alert.Site),
			zap.Error(err),
		)
		metrics.MessagesTotal(string(format), "unregistered")
		return
	}

	name := alert.ProductName
	if name == "" {
		name = h.enricher.Enrich(ctx, resolved.URL, alert.Site, alert.Format)
	}

	embed := h.builder.Build(notify.Input{
		DisplayName:  name,
		URL:          resolved.URL,
		Color:        resolved.Color,
		RetailerName: resolved.DisplayName,
		ProductID:    alert.ProductID,
		RawTimestamp: alert.RawTimestamp,
		DetectedAt:   alert.DetectedAt,
		Format:       alert.Format,
	})

	if err := h.deliverer.Deliver(ctx, mapping, []relay.Embed{embed}); err != nil {
		h.logger.Error("delivery failed",
			zap.String("destination", mapping.Destination),
			zap.Error(err),
		)
		metrics.MessagesTotal(string(format), "undelivered")
		return
	}

	metrics.MessagesTotal(string(format), "delivered")
	h.logger.Info("alert relayed",
		zap.String("site", alert.Site),
		zap.String("product_id", alert.ProductID),
		zap.String("category", mapping.Category),
	)
}

// passthrough forwards the producer's own embeds verbatim for the Amazon
// retailer family, bypassing resolution, enrichment, and building.
func (h *Handler) passthrough(ctx context.Context, mapping relay.ChannelMapping, msg relay.Message, alert relay.ParsedAlert) {
	if err := h.deliverer.Deliver(ctx, mapping, msg.Embeds); err != nil {
		h.logger.Error("passthrough delivery failed",
			zap.String("destination", mapping.Destination),
			zap.Error(err),
		)
		metrics.MessagesTotal(string(alert.Format), "undelivered")
		return
	}
	metrics.MessagesTotal(string(alert.Format), "passthrough")
	h.logger.Info("alert forwarded verbatim",
		zap.String("site", alert.Site),
		zap.String("category", mapping.Category),
	)
}

// resolve looks the alert's site up in the registry. Alerts that already
// carry a resolved URL only need the descriptor's display data.
func (h *Handler) resolve(alert relay.ParsedAlert) (sites.Resolved, error) {
	if alert.ProductURL != "" {
		d, ok := h.registry.Lookup(alert.Site)
		if !ok {
			return sites.Resolved{}, sites.ErrSiteNotFound
		}
		return sites.Resolved{
			URL:         alert.ProductURL,
			DisplayName: d.DisplayName,
			Color:       d.Color,
		}, nil
	}
	return h.registry.Resolve(alert.Site, alert.ProductID)
}

package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/classify"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/enrich"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/extract"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/notify"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/relay"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/sites"
)

type stubEnricher struct {
	calls int
	name  string
}

func (s *stubEnricher) Enrich(_ context.Context, _, _ string, _ relay.Format) string {
	s.calls++
	return s.name
}

type stubDeliverer struct {
	calls []delivery
	err   error
}

type delivery struct {
	mapping relay.ChannelMapping
	embeds  []relay.Embed
}

func (s *stubDeliverer) Deliver(_ context.Context, mapping relay.ChannelMapping, embeds []relay.Embed) error {
	s.calls = append(s.calls, delivery{mapping: mapping, embeds: embeds})
	return s.err
}

type stubClock struct {
	now time.Time
}

func (c stubClock) Now() time.Time {
	return c.now
}

func newHandler(enricher *stubEnricher, deliverer *stubDeliverer) *Handler {
	mappings := []relay.ChannelMapping{
		{Category: "consoles", SourceID: "111", Destination: "consoles", RoleID: "424242"},
	}
	return New(
		mappings,
		classify.New(),
		extract.DefaultSet(stubClock{now: time.Date(2021, 11, 26, 20, 0, 0, 0, time.UTC)}),
		sites.Default(),
		enricher,
		notify.New(stubClock{now: time.Date(2021, 11, 26, 20, 0, 0, 0, time.UTC)}),
		deliverer,
		nil,
	)
}

func stellarMessage(site, productID string) relay.Message {
	return relay.Message{
		ChannelID: "111",
		WebhookID: "wh-1",
		Embeds: []relay.Embed{{
			Fields: []relay.EmbedField{
				{Name: "Site", Value: site},
				{Name: "Title/SKU", Value: productID},
			},
			Footer: &relay.EmbedFooter{Text: "Stellar AIO @stellara_io | 08:12:33 PM"},
		}},
	}
}

func TestHandler_Handle_UnmappedChannelDropped(t *testing.T) {
	t.Parallel()

	enricher := &stubEnricher{name: "ignored"}
	deliverer := &stubDeliverer{}
	h := newHandler(enricher, deliverer)

	msg := stellarMessage("walmartca", "123456")
	msg.ChannelID = "999"
	h.Handle(context.Background(), msg)

	require.Empty(t, deliverer.calls)
	require.Zero(t, enricher.calls)
}

func TestHandler_Handle_UnrecognizedDropped(t *testing.T) {
	t.Parallel()

	enricher := &stubEnricher{name: "ignored"}
	deliverer := &stubDeliverer{}
	h := newHandler(enricher, deliverer)

	h.Handle(context.Background(), relay.Message{
		ChannelID: "111",
		WebhookID: "wh-1",
		Content:   "unrelated bot chatter",
	})

	require.Empty(t, deliverer.calls)
	require.Zero(t, enricher.calls)
}

func TestHandler_Handle_StellarDelivered(t *testing.T) {
	t.Parallel()

	enricher := &stubEnricher{name: "PS5 Disc Console"}
	deliverer := &stubDeliverer{}
	h := newHandler(enricher, deliverer)

	h.Handle(context.Background(), stellarMessage("walmartca", "123456"))

	require.Len(t, deliverer.calls, 1)
	require.Equal(t, 1, enricher.calls)

	got := deliverer.calls[0]
	require.Equal(t, "consoles", got.mapping.Destination)
	require.Len(t, got.embeds, 1)
	embed := got.embeds[0]
	require.Equal(t, "PS5 Disc Console", embed.Title)
	require.Equal(t, "https://www.walmart.ca/en/ip/123456", embed.URL)
	require.Equal(t, "IN STOCK NOW", embed.Description)
	require.Equal(t, "Walmart Canada", embed.Fields[0].Value)
	require.Equal(t, "123456", embed.Fields[1].Value)
}

func TestHandler_Handle_EnrichmentDefaultStillDelivered(t *testing.T) {
	t.Parallel()

	enricher := &stubEnricher{name: enrich.DefaultProductName}
	deliverer := &stubDeliverer{}
	h := newHandler(enricher, deliverer)

	h.Handle(context.Background(), stellarMessage("walmartca", "123456"))

	require.Len(t, deliverer.calls, 1)
	require.Equal(t, enrich.DefaultProductName, deliverer.calls[0].embeds[0].Title)
}

func TestHandler_Handle_AmazonShortCircuit(t *testing.T) {
	t.Parallel()

	enricher := &stubEnricher{name: "never used"}
	deliverer := &stubDeliverer{}
	h := newHandler(enricher, deliverer)

	inbound := []relay.Embed{{
		Title:       "Amazon restock",
		Description: "producer formatting kept as-is",
		Fields: []relay.EmbedField{
			{Name: "Site", Value: "amazonca"},
			{Name: "Title/SKU", Value: "B08H75RTZ8"},
		},
		Footer: &relay.EmbedFooter{Text: "Stellar AIO @stellara_io | 08:12:33 PM"},
	}}
	h.Handle(context.Background(), relay.Message{
		ChannelID: "111",
		WebhookID: "wh-1",
		Embeds:    inbound,
	})

	require.Zero(t, enricher.calls)
	require.Len(t, deliverer.calls, 1)
	require.Equal(t, inbound, deliverer.calls[0].embeds)
}

func TestHandler_Handle_AmazonForwardedWithoutProduct(t *testing.T) {
	t.Parallel()

	enricher := &stubEnricher{name: "never used"}
	deliverer := &stubDeliverer{}
	h := newHandler(enricher, deliverer)

	// No Title/SKU or Product field anywhere: extraction cannot complete,
	// but the Amazon family still forwards the producer's embeds verbatim.
	inbound := []relay.Embed{{
		Title:  "Amazon restock",
		Fields: []relay.EmbedField{{Name: "Site", Value: "amazonca"}},
		Footer: &relay.EmbedFooter{Text: "Stellar AIO @stellara_io | 08:12:33 PM"},
	}}
	h.Handle(context.Background(), relay.Message{
		ChannelID: "111",
		WebhookID: "wh-1",
		Embeds:    inbound,
	})

	require.Zero(t, enricher.calls)
	require.Len(t, deliverer.calls, 1)
	require.Equal(t, inbound, deliverer.calls[0].embeds)
}

func TestHandler_Handle_ChangeDetectionSkipsEnrichment(t *testing.T) {
	t.Parallel()

	enricher := &stubEnricher{name: "never used"}
	deliverer := &stubDeliverer{}
	h := newHandler(enricher, deliverer)

	h.Handle(context.Background(), relay.Message{
		ChannelID: "111",
		Content: "changedetection.io restock " +
			"https://www.toysrus.ca/en/Pokemon_TCG_Celebrations/917356",
	})

	require.Zero(t, enricher.calls)
	require.Len(t, deliverer.calls, 1)
	embed := deliverer.calls[0].embeds[0]
	require.Equal(t, "Pokemon Trading Card Game Celebrations", embed.Title)
	require.Equal(t, "https://www.toysrus.ca/en/Pokemon_TCG_Celebrations/917356", embed.URL)
	require.Equal(t, "CHANGE DETECTED", embed.Description)
}

func TestHandler_Handle_UnregisteredSiteDropped(t *testing.T) {
	t.Parallel()

	enricher := &stubEnricher{name: "ignored"}
	deliverer := &stubDeliverer{}
	h := newHandler(enricher, deliverer)

	h.Handle(context.Background(), stellarMessage("gamestop", "42"))

	require.Empty(t, deliverer.calls)
	require.Zero(t, enricher.calls)
}

func TestHandler_Handle_IncompleteExtractionDropped(t *testing.T) {
	t.Parallel()

	enricher := &stubEnricher{name: "ignored"}
	deliverer := &stubDeliverer{}
	h := newHandler(enricher, deliverer)

	h.Handle(context.Background(), relay.Message{
		ChannelID: "111",
		WebhookID: "wh-1",
		Content:   "Site\nwalmartca",
	})

	require.Empty(t, deliverer.calls)
	require.Zero(t, enricher.calls)
}

func TestHandler_Handle_DeliveryFailureContained(t *testing.T) {
	t.Parallel()

	enricher := &stubEnricher{name: "PS5 Disc Console"}
	deliverer := &stubDeliverer{err: errors.New("webhook gone")}
	h := newHandler(enricher, deliverer)

	require.NotPanics(t, func() {
		h.Handle(context.Background(), stellarMessage("walmartca", "123456"))
	})
	require.Len(t, deliverer.calls, 1)
}

func TestHandler_Dispatch_ContainsPanics(t *testing.T) {
	t.Parallel()

	deliverer := &stubDeliverer{}
	h := newHandler(&stubEnricher{name: "x"}, deliverer)

	require.NotPanics(t, func() {
		h.Dispatch(relay.Message{ChannelID: "999"})
		time.Sleep(50 * time.Millisecond)
	})
}

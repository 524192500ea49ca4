package extract

import (
	"regexp"
	"strings"

	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/classify"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/relay"
)

// Field labels used by Stellar's structured embed layout.
const (
	fieldSite     = "Site"
	fieldTitleSKU = "Title/SKU"
	fieldProduct  = "Product"
)

// skuPathPattern matches a numeric SKU path segment like /6643538.p as
// embedded in Best Buy product URLs.
var skuPathPattern = regexp.MustCompile(`/(\d+)\.p\b`)

// Stellar extracts alerts from Stellar AIO messages. Tiers run in order and
// stop as soon as the alert is complete: the structured embed-field tier
// first, the free-text line scan only if fields were missing.
type Stellar struct {
	clock relay.Clock
	tiers []func(relay.Message, *relay.ParsedAlert)
}

// NewStellar builds the Stellar strategy with its tier chain. The clock
// anchors time-only detection timestamps to a date.
func NewStellar(clock relay.Clock) *Stellar {
	s := &Stellar{clock: clock}
	s.tiers = []func(relay.Message, *relay.ParsedAlert){
		s.fromEmbedFields,
		s.fromFreeText,
	}
	return s
}

// Format implements Extractor.
func (s *Stellar) Format() relay.Format {
	return relay.FormatStellar
}

// Extract implements Extractor.
func (s *Stellar) Extract(msg relay.Message) (relay.ParsedAlert, error) {
	alert := relay.ParsedAlert{Format: relay.FormatStellar}
	for _, tier := range s.tiers {
		tier(msg, &alert)
		if complete(alert) {
			break
		}
	}
	if !complete(alert) {
		// The partial record still travels with the error: the caller's
		// retailer-specific handling keys off whatever site was recovered.
		return alert, ErrIncompleteAlert
	}
	if alert.RawTimestamp != "" {
		alert.DetectedAt = parseDetectionTime(alert.RawTimestamp, s.clock.Now())
	}
	return alert, nil
}

// fromEmbedFields reads Stellar's labeled-field embed layout.
func (s *Stellar) fromEmbedFields(msg relay.Message, alert *relay.ParsedAlert) {
	for _, embed := range msg.Embeds {
		if len(embed.Fields) == 0 {
			continue
		}
		var productFallback string
		for _, f := range embed.Fields {
			switch strings.TrimSpace(f.Name) {
			case fieldSite:
				alert.Site = strings.ToLower(strings.TrimSpace(f.Value))
			case fieldTitleSKU:
				alert.ProductID = f.Value
			case fieldProduct:
				productFallback = f.Value
			}
		}
		if alert.ProductID == "" && productFallback != "" {
			alert.ProductID = productFromFallback(productFallback)
		}
		if embed.Footer != nil {
			if parts := strings.Split(embed.Footer.Text, "|"); len(parts) > 1 {
				alert.RawTimestamp = strings.TrimSpace(parts[1])
			}
		}
		return
	}
}

// productFromFallback handles the "Product" field Stellar emits when it has
// no Title/SKU: values carrying a numeric-SKU product URL yield the digits,
// anything else is taken verbatim.
func productFromFallback(value string) string {
	if m := skuPathPattern.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	return value
}

// fromFreeText scans Stellar's plain-text layout: a "Site" header line
// followed by the site key, a "Product" header line followed by the product
// identifier, and a signature line carrying the detection timestamp after a
// pipe.
func (s *Stellar) fromFreeText(msg relay.Message, alert *relay.ParsedAlert) {
	text := msg.Content
	if text == "" {
		for _, embed := range msg.Embeds {
			if embed.Description != "" {
				text = embed.Description
				break
			}
		}
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	for i, line := range lines {
		switch {
		case line == classify.SiteHeader && i+1 < len(lines):
			if alert.Site == "" {
				alert.Site = strings.ToLower(lines[i+1])
			}
		case line == fieldProduct && i+1 < len(lines):
			if alert.ProductID == "" {
				alert.ProductID = lines[i+1]
			}
		case strings.Contains(line, classify.StellarHandle):
			if parts := strings.Split(line, "|"); len(parts) > 1 && alert.RawTimestamp == "" {
				alert.RawTimestamp = strings.TrimSpace(parts[1])
			}
		}
	}
}

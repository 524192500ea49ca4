package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/relay"
)

// absoluteURLPattern finds the first well-formed absolute URL in free text.
var absoluteURLPattern = regexp.MustCompile(`https?://[^\s<>()]+`)

// hostSites maps known retailer hostnames to registry site keys. Hostnames
// not listed here classify as "unknown" and ride on the generic descriptor.
var hostSites = []struct {
	host string
	site string
}{
	{host: "toysrus.ca", site: "toysrus"},
}

// phraseSubstitutions normalizes product-line abbreviations that show up in
// URL path segments. Applied case-insensitively on whole words after
// underscores become spaces.
var phraseSubstitutions = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{pattern: regexp.MustCompile(`(?i)\btcg\b`), repl: "Trading Card Game"},
	{pattern: regexp.MustCompile(`(?i)\bpkmn\b`), repl: "Pokemon"},
	{pattern: regexp.MustCompile(`(?i)\bsw\b`), repl: "Star Wars"},
}

// ChangeDetection extracts alerts from change-monitoring notifications. The
// producer supplies the product URL directly and the display name is derived
// from the URL path, so these alerts never go through enrichment.
type ChangeDetection struct{}

// NewChangeDetection builds the ChangeDetection strategy.
func NewChangeDetection() *ChangeDetection {
	return &ChangeDetection{}
}

// Format implements Extractor.
func (c *ChangeDetection) Format() relay.Format {
	return relay.FormatChangeDetection
}

// Extract implements Extractor.
func (c *ChangeDetection) Extract(msg relay.Message) (relay.ParsedAlert, error) {
	raw := absoluteURLPattern.FindString(msg.Content)
	if raw == "" {
		return relay.ParsedAlert{Format: relay.FormatChangeDetection}, ErrIncompleteAlert
	}
	return relay.ParsedAlert{
		Site:        siteForURL(raw),
		ProductURL:  raw,
		ProductName: nameFromURL(raw),
		Format:      relay.FormatChangeDetection,
	}, nil
}

func siteForURL(raw string) string {
	lower := strings.ToLower(raw)
	for _, hs := range hostSites {
		if strings.Contains(lower, hs.host) {
			return hs.site
		}
	}
	return "unknown"
}

// nameFromURL derives a human-readable product name from the second-to-last
// path segment of the product URL.
func nameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	var segments []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return ""
	}
	segment := segments[len(segments)-1]
	if len(segments) >= 2 {
		segment = segments[len(segments)-2]
	}
	if unescaped, err := url.PathUnescape(segment); err == nil {
		segment = unescaped
	}

	name := strings.ReplaceAll(segment, "_", " ")
	for _, sub := range phraseSubstitutions {
		name = sub.pattern.ReplaceAllString(name, sub.repl)
	}
	return strings.TrimSpace(name)
}

// Package extract turns classified messages into structured alert records.
//
// There is one extraction strategy per producer format. A strategy may run
// several tiers internally (structured fields first, free text second) and
// either yields a complete ParsedAlert or reports ErrIncompleteAlert. On
// error the partially-filled record is returned too, so callers can apply
// retailer-specific handling to whatever fields were recovered.
package extract

import (
	"errors"
	"time"

	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/relay"
)

// ErrIncompleteAlert is returned when no tier could recover both the site
// and the product identifier from a message.
var ErrIncompleteAlert = errors.New("alert missing site or product identifier")

// Extractor is one producer-format extraction strategy.
type Extractor interface {
	// Format tags which producer format this strategy understands.
	Format() relay.Format
	// Extract parses a classified message into an alert record.
	Extract(msg relay.Message) (relay.ParsedAlert, error)
}

// Set holds the registered strategies keyed by format.
type Set struct {
	byFormat map[relay.Format]Extractor
}

// NewSet registers the given strategies.
func NewSet(extractors ...Extractor) *Set {
	m := make(map[relay.Format]Extractor, len(extractors))
	for _, e := range extractors {
		m[e.Format()] = e
	}
	return &Set{byFormat: m}
}

// DefaultSet returns the strategies for all known producer formats.
func DefaultSet(clock relay.Clock) *Set {
	return NewSet(NewStellar(clock), NewChangeDetection())
}

// For returns the strategy registered for a format.
func (s *Set) For(f relay.Format) (Extractor, bool) {
	e, ok := s.byFormat[f]
	return e, ok
}

// complete reports whether an alert carries everything downstream stages
// need: a site key plus either a product identifier or a direct URL.
func complete(a relay.ParsedAlert) bool {
	return a.Site != "" && (a.ProductID != "" || a.ProductURL != "")
}

// detectionLayouts are the timestamp shapes observed in producer output.
var detectionLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006, 3:04:05 PM",
	"3:04:05 PM",
}

// parseDetectionTime interprets a producer timestamp best-effort. Time-only
// layouts are anchored to now's date; anything unparseable returns nil and
// the caller treats detection time as now.
func parseDetectionTime(raw string, now time.Time) *time.Time {
	for _, layout := range detectionLayouts {
		ts, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if ts.Year() == 0 {
			ts = time.Date(now.Year(), now.Month(), now.Day(),
				ts.Hour(), ts.Minute(), ts.Second(), 0, now.Location())
			if ts.After(now) {
				// A wall-clock later than now means the alert crossed
				// midnight; it belongs to the previous day.
				ts = ts.AddDate(0, 0, -1)
			}
		}
		return &ts
	}
	return nil
}

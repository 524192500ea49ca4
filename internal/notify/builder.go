// Package notify builds the canonical outbound notification embed.
package notify

import (
	"fmt"
	"time"

	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/relay"
)

const (
	footerLabel = "Restock Monitor"

	descriptionInStock = "IN STOCK NOW"
	descriptionChange  = "CHANGE DETECTED"
)

// Input carries everything Build needs for one notification.
type Input struct {
	DisplayName  string
	URL          string
	Color        int
	RetailerName string
	ProductID    string
	RawTimestamp string
	DetectedAt   *time.Time
	Format       relay.Format
}

// Builder converts resolved alerts into outbound embeds. Pure apart from
// the injected clock.
type Builder struct {
	clock relay.Clock
}

// New creates a Builder using clock for relative-time rendering.
func New(clock relay.Clock) *Builder {
	return &Builder{clock: clock}
}

// Build produces the outbound notification embed for one alert.
func (b *Builder) Build(in Input) relay.Embed {
	now := b.clock.Now()
	detected := now
	if in.DetectedAt != nil {
		detected = *in.DetectedAt
	}

	rawTimestamp := in.RawTimestamp
	if rawTimestamp == "" {
		rawTimestamp = now.Format(time.RFC3339)
	}

	productID := in.ProductID
	if productID == "" {
		productID = "N/A"
	}

	description := descriptionInStock
	if in.Format == relay.FormatChangeDetection {
		description = descriptionChange
	}

	return relay.Embed{
		Title:       in.DisplayName,
		URL:         in.URL,
		Color:       in.Color,
		Description: description,
		Fields: []relay.EmbedField{
			{Name: "Retailer", Value: in.RetailerName, Inline: true},
			{Name: "Product ID", Value: productID, Inline: true},
			{Name: "Detected", Value: relativeSince(now.Sub(detected)), Inline: true},
		},
		Footer:    &relay.EmbedFooter{Text: fmt.Sprintf("%s | %s", footerLabel, rawTimestamp)},
		Timestamp: now.Format(time.RFC3339),
	}
}

// relativeSince renders an elapsed duration as "N seconds/minutes/hours ago".
func relativeSince(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Seconds())
	switch {
	case secs < 60:
		return fmt.Sprintf("%d %s ago", secs, plural("second", secs))
	case secs < 3600:
		mins := secs / 60
		return fmt.Sprintf("%d %s ago", mins, plural("minute", mins))
	default:
		hours := secs / 3600
		return fmt.Sprintf("%d %s ago", hours, plural("hour", hours))
	}
}

func plural(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

// Package relay defines core types shared across subsystems.
package relay

import "time"

// Clock abstracts wall-clock time so relative-time rendering is testable.
type Clock interface {
	Now() time.Time
}

// Format identifies which upstream monitor produced an inbound message.
type Format string

// Producer formats recognized by the classifier.
const (
	FormatStellar         Format = "stellar"
	FormatChangeDetection Format = "changedetection"
	FormatUnrecognized    Format = "unrecognized"
)

// Message is the inbound chat message delivered to the webhook listener.
// The shape mirrors the Discord message object: plain text content, zero or
// more embeds, and a webhook marker identifying automated posters.
type Message struct {
	ChannelID string  `json:"channel_id"`
	Content   string  `json:"content"`
	WebhookID string  `json:"webhook_id,omitempty"`
	Embeds    []Embed `json:"embeds,omitempty"`
}

// FromWebhook reports whether the message was posted by an automated
// webhook poster rather than a human account.
func (m Message) FromWebhook() bool {
	return m.WebhookID != ""
}

// Embed is a rich-content block attached to a message. The same struct is
// used for inbound inspection and outbound payloads.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField is one labeled entry in an embed's ordered field list.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedFooter carries the footer text of an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// ParsedAlert is the structured record extracted from one inbound message.
// It lives only for the duration of that message's handling.
type ParsedAlert struct {
	// Site is the lower-cased retailer key used for registry lookup.
	Site string
	// ProductID is the retailer product identifier. For ChangeDetection
	// alerts it is empty and ProductURL carries the resolved URL instead.
	ProductID string
	// ProductURL is set when the producer supplies a URL directly.
	ProductURL string
	// ProductName is set when the producer format allows deriving a
	// display name without fetching the product page.
	ProductName string
	// RawTimestamp is the producer's own detection timestamp text, kept
	// verbatim for the notification footer. May be empty.
	RawTimestamp string
	// DetectedAt is the parsed detection time, when RawTimestamp could be
	// interpreted. Nil means "treat as now".
	DetectedAt *time.Time
	// Format tags which extraction strategy produced the record.
	Format Format
}

// ChannelMapping routes one monitored source channel to a destination.
// Built once from configuration, read-only afterwards.
type ChannelMapping struct {
	Category    string `mapstructure:"category"`
	SourceID    string `mapstructure:"source_channel"`
	Destination string `mapstructure:"destination"`
	RoleID      string `mapstructure:"role_id"`
}

// WebhookPayload is the JSON body posted to a destination webhook: an
// optional leading mention plus the notification embeds.
type WebhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds"`
}

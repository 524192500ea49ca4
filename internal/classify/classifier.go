// Package classify assigns inbound messages to a known producer format.
package classify

import (
	"strings"

	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/relay"
)

// Marker substrings for the known producers. These track the producers'
// observed output and are the only place format detection lives.
const (
	// StellarHandle appears in the signature line of Stellar AIO alerts.
	StellarHandle = "@stellara_io"
	// stellarNotifyPhrase is the fixed headline Stellar puts on webhook posts.
	stellarNotifyPhrase = "Stellar Notification"
	// SiteHeader is the section header preceding the site key in Stellar's
	// free-text layout.
	SiteHeader = "Site"

	// changeDetectionTool names the change-monitoring tool in its own
	// notification text.
	changeDetectionTool = "changedetection.io"
	// changeDetectionFilter is the restock filter-type token the tool
	// includes alongside its name.
	changeDetectionFilter = "restock"
)

// Classifier inspects inbound messages and tags their producer format.
type Classifier struct{}

// New creates a Classifier.
func New() *Classifier {
	return &Classifier{}
}

// Classify returns the producer format of a message, or FormatUnrecognized.
// The ChangeDetection check runs first and is exclusive: a matched message
// is never re-tested against the Stellar heuristics.
func (c *Classifier) Classify(msg relay.Message) relay.Format {
	if isChangeDetection(msg.Content) {
		return relay.FormatChangeDetection
	}
	if isStellar(msg) {
		return relay.FormatStellar
	}
	return relay.FormatUnrecognized
}

func isChangeDetection(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, changeDetectionTool) &&
		strings.Contains(lower, changeDetectionFilter)
}

func isStellar(msg relay.Message) bool {
	// Stellar posts arrive through an automated webhook; anything a human
	// account typed cannot be a Stellar alert no matter what it contains.
	if !msg.FromWebhook() {
		return false
	}
	if strings.Contains(msg.Content, StellarHandle) ||
		strings.Contains(msg.Content, stellarNotifyPhrase) ||
		hasHeaderLine(msg.Content, SiteHeader) {
		return true
	}
	for _, embed := range msg.Embeds {
		if strings.Contains(embed.Description, StellarHandle) ||
			hasHeaderLine(embed.Description, SiteHeader) {
			return true
		}
		if embed.Footer != nil && (strings.Contains(embed.Footer.Text, StellarHandle) ||
			hasHeaderLine(embed.Footer.Text, SiteHeader)) {
			return true
		}
	}
	return false
}

// hasHeaderLine reports whether any trimmed line of text equals header.
func hasHeaderLine(text, header string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == header {
			return true
		}
	}
	return false
}

package classify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/relay"
)

func TestClassifier_Classify(t *testing.T) {
	t.Parallel()

	c := New()
	tests := []struct {
		name string
		msg  relay.Message
		want relay.Format
	}{
		{
			name: "change detection markers",
			msg: relay.Message{
				Content: "ChangeDetection.io (restock) alert: https://www.toysrus.ca/en/Pokemon_TCG/917356",
			},
			want: relay.FormatChangeDetection,
		},
		{
			name: "change detection wins even from a webhook with stellar markers",
			msg: relay.Message{
				WebhookID: "wh-1",
				Content:   "changedetection.io restock notice\nSite\nwalmartca",
			},
			want: relay.FormatChangeDetection,
		},
		{
			name: "stellar handle in content from webhook",
			msg: relay.Message{
				WebhookID: "wh-1",
				Content:   "Stock found | 08:12:33 PM @stellara_io",
			},
			want: relay.FormatStellar,
		},
		{
			name: "stellar site header line from webhook",
			msg: relay.Message{
				WebhookID: "wh-1",
				Content:   "Site\nwalmartca\nProduct\n123456",
			},
			want: relay.FormatStellar,
		},
		{
			name: "stellar notification phrase from webhook",
			msg: relay.Message{
				WebhookID: "wh-1",
				Content:   "Stellar Notification: restock found",
			},
			want: relay.FormatStellar,
		},
		{
			name: "stellar marker in embed description",
			msg: relay.Message{
				WebhookID: "wh-1",
				Embeds: []relay.Embed{
					{Description: "Site\nbestbuyca\nProduct\n6643538"},
				},
			},
			want: relay.FormatStellar,
		},
		{
			name: "stellar marker in embed footer",
			msg: relay.Message{
				WebhookID: "wh-1",
				Embeds: []relay.Embed{
					{Footer: &relay.EmbedFooter{Text: "@stellara_io | 08:12:33 PM"}},
				},
			},
			want: relay.FormatStellar,
		},
		{
			name: "site header line in embed footer",
			msg: relay.Message{
				WebhookID: "wh-1",
				Embeds: []relay.Embed{
					{Footer: &relay.EmbedFooter{Text: "Site\nwalmartca"}},
				},
			},
			want: relay.FormatStellar,
		},
		{
			name: "site word inside a footer sentence is not the header",
			msg: relay.Message{
				WebhookID: "wh-1",
				Embeds: []relay.Embed{
					{Footer: &relay.EmbedFooter{Text: "Visit our Website for details"}},
				},
			},
			want: relay.FormatUnrecognized,
		},
		{
			name: "stellar markers without webhook origin",
			msg: relay.Message{
				Content: "Site\nwalmartca\nProduct\n123456",
			},
			want: relay.FormatUnrecognized,
		},
		{
			name: "webhook without any marker",
			msg: relay.Message{
				WebhookID: "wh-9",
				Content:   "some other bot chatter",
			},
			want: relay.FormatUnrecognized,
		},
		{
			name: "site word inside a sentence is not the header",
			msg: relay.Message{
				WebhookID: "wh-1",
				Content:   "Check the Site tomorrow",
			},
			want: relay.FormatUnrecognized,
		},
		{
			name: "empty message",
			msg:  relay.Message{},
			want: relay.FormatUnrecognized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, c.Classify(tt.msg))
		})
	}
}

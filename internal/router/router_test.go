package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/relay"
)

func TestRouter_Deliver_PostsPayloadWithMention(t *testing.T) {
	t.Parallel()

	var got relay.WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	r := New(map[string]string{"consoles": srv.URL}, srv.Client(), nil)
	mapping := relay.ChannelMapping{
		Category:    "consoles",
		SourceID:    "111",
		Destination: "consoles",
		RoleID:      "424242",
	}
	embeds := []relay.Embed{{Title: "PS5 Disc Console"}}

	require.NoError(t, r.Deliver(context.Background(), mapping, embeds))
	require.Equal(t, "<@&424242>", got.Content)
	require.Len(t, got.Embeds, 1)
	require.Equal(t, "PS5 Disc Console", got.Embeds[0].Title)
}

func TestRouter_Deliver_NoRoleMention(t *testing.T) {
	t.Parallel()

	var got relay.WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	r := New(map[string]string{"cards": srv.URL}, srv.Client(), nil)
	mapping := relay.ChannelMapping{Destination: "cards"}

	require.NoError(t, r.Deliver(context.Background(), mapping, []relay.Embed{{}}))
	require.Empty(t, got.Content)
}

func TestRouter_Deliver_ChannelNotFound(t *testing.T) {
	t.Parallel()

	r := New(map[string]string{}, nil, nil)
	err := r.Deliver(context.Background(), relay.ChannelMapping{Destination: "missing"}, nil)
	require.True(t, errors.Is(err, ErrChannelNotFound))
}

func TestRouter_Deliver_DestinationError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := New(map[string]string{"consoles": srv.URL}, srv.Client(), nil)
	err := r.Deliver(context.Background(), relay.ChannelMapping{Destination: "consoles"}, nil)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrChannelNotFound))
}

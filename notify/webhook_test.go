package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hupe1980/freightmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotifier_Send(t *testing.T) {
	var got webhookPayload
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("X-Delivery-Id", "delivery-42")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, func(o *WebhookOptions) {
		o.Headers = map[string]string{"Authorization": "Bearer token"}
	})

	id, err := n.Send(context.Background(), "neg-1", "opening offer", 2100)
	require.NoError(t, err)

	assert.Equal(t, "delivery-42", id)
	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, webhookPayload{NegotiationID: "neg-1", Amount: 2100, Message: "opening offer"}, got)
}

func TestWebhookNotifier_GeneratesDeliveryID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	id, err := n.Send(context.Background(), "neg-1", "hi", 100)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestWebhookNotifier_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	_, err := n.Send(context.Background(), "neg-1", "hi", 100)
	assert.ErrorIs(t, err, core.ErrDeliveryFailed)
}

func TestWebhookNotifier_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	n := NewWebhookNotifier(srv.URL)
	_, err := n.Send(context.Background(), "neg-1", "hi", 100)
	assert.ErrorIs(t, err, core.ErrDeliveryFailed)
}

package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func TestHubPublisher(t *testing.T) {
	t.Parallel()

	var got models.PriceUpdateMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pub := NewHubPublisher(srv.URL + "/")
	msg := models.PriceUpdateMessage{Type: models.MessagePriceUpdate, ProductID: 3, NewPrice: 12.5, Timestamp: "t"}
	require.NoError(t, pub.Publish(context.Background(), msg))
	assert.Equal(t, "/publish", path)
	assert.Equal(t, msg, got)
}

func TestHubPublisher_Rejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewHubPublisher(srv.URL).Publish(context.Background(), models.NotificationMessage{Type: models.MessageNotification})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

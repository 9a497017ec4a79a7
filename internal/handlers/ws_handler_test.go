package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Prakhar2818/NGO-APP/internal/models"
	jwtutil "github.com/Prakhar2818/NGO-APP/pkg/jwt"
	"github.com/Prakhar2818/NGO-APP/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	logger.InitLogger()
}

const testSecret = "test-secret"

func (h *Hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func dialHub(t *testing.T, server *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	token, err := jwtutil.GenerateToken(userID, models.RoleNGO, testSecret, time.Hour)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_PublishReachesAllConnectedClients(t *testing.T) {
	hub := NewHub(testSecret)
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	conn1 := dialHub(t, server, primitive.NewObjectID().Hex())
	conn2 := dialHub(t, server, primitive.NewObjectID().Hex())

	require.Eventually(t, func() bool { return hub.clientCount() == 2 }, time.Second, 10*time.Millisecond)

	event := models.DonationEvent{
		ID:             primitive.NewObjectID(),
		FoodName:       "Rice",
		Quantity:       50,
		ExpiryTime:     time.Now().Add(2 * time.Hour),
		RestaurantName: "Spice Garden",
	}
	hub.Publish(event)

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var payload struct {
			Type     string               `json:"type"`
			Donation models.DonationEvent `json:"donation"`
		}
		require.NoError(t, conn.ReadJSON(&payload))
		assert.Equal(t, "new-donation", payload.Type)
		assert.Equal(t, event.ID, payload.Donation.ID)
		assert.Equal(t, "Rice", payload.Donation.FoodName)
	}
}

func TestHub_LateSubscriberMissesEarlierEvents(t *testing.T) {
	hub := NewHub(testSecret)
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	hub.Publish(models.DonationEvent{FoodName: "Missed"})

	conn := dialHub(t, server, primitive.NewObjectID().Hex())
	require.Eventually(t, func() bool { return hub.clientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "no replay for late subscribers")
}

func TestHub_RejectsMissingOrInvalidToken(t *testing.T) {
	hub := NewHub(testSecret)
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(server.URL + "/?token=garbage")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_RejectsNonNGORole(t *testing.T) {
	hub := NewHub(testSecret)
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	token, err := jwtutil.GenerateToken(primitive.NewObjectID().Hex(), models.RoleRestaurant, testSecret, time.Hour)
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/?token=" + token)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, hub.clientCount())
}

func TestHub_DisconnectedClientIsRemoved(t *testing.T) {
	hub := NewHub(testSecret)
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	conn := dialHub(t, server, primitive.NewObjectID().Hex())
	require.Eventually(t, func() bool { return hub.clientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.clientCount() == 0 }, time.Second, 10*time.Millisecond)
}

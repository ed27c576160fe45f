package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/mafia-chicago/internal/api"
	"github.com/dom/mafia-chicago/internal/config"
	"github.com/dom/mafia-chicago/internal/service"
	"github.com/dom/mafia-chicago/internal/testutil"
	"github.com/dom/mafia-chicago/internal/websocket"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *service.Services) {
	t.Helper()

	repos := testutil.NewRepos()
	services := service.NewServices(repos)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{Port: "0", IdentitySecret: testSecret}
	hub := websocket.NewHub(services, nil, logger)
	go hub.Run()
	t.Cleanup(hub.Stop)

	srv := httptest.NewServer(api.NewRouter(services, hub, cfg, logger))
	t.Cleanup(srv.Close)

	return srv, services
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestJoin_RequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/mafia/join", "", map[string]string{"name": "Alice"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJoin_CreatesRoom(t *testing.T) {
	srv, _ := newTestServer(t)
	token := testutil.SignIdentityToken(t, testSecret, "ext-alice", "Alice")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/mafia/join", token, map[string]string{"name": "Alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result service.JoinResult
	decodeBody(t, resp, &result)

	assert.True(t, result.IsNewRoom)
	assert.Equal(t, 1, result.PlayersCount)
	assert.Equal(t, 8, result.MaxPlayers)
	require.NotNil(t, result.InviteCode)
}

func TestInviteFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	alice := testutil.SignIdentityToken(t, testSecret, "ext-alice", "Alice")
	bob := testutil.SignIdentityToken(t, testSecret, "ext-bob", "Bob")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/mafia/join", alice, map[string]string{"name": "Alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var joined service.JoinResult
	decodeBody(t, resp, &joined)
	require.NotNil(t, joined.InviteCode)

	// The code resolves back to the room.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/mafia/room-by-invite?code="+*joined.InviteCode, alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var byInvite map[string]string
	decodeBody(t, resp, &byInvite)
	assert.Equal(t, joined.RoomID.String(), byInvite["roomId"])

	// Bob joins through the code into the same room.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/mafia/join", bob, map[string]string{
		"name":       "Bob",
		"inviteCode": *joined.InviteCode,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bobJoined service.JoinResult
	decodeBody(t, resp, &bobJoined)
	assert.Equal(t, joined.RoomID, bobJoined.RoomID)
	assert.Equal(t, 2, bobJoined.PlayersCount)
}

func TestRoomByInvite_UnknownCode(t *testing.T) {
	srv, _ := newTestServer(t)
	token := testutil.SignIdentityToken(t, testSecret, "ext-alice", "Alice")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/mafia/room-by-invite?code=deadbeef", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStart_RejectsPartialRoom(t *testing.T) {
	srv, _ := newTestServer(t)
	token := testutil.SignIdentityToken(t, testSecret, "ext-alice", "Alice")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/mafia/join", token, map[string]string{"name": "Alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var joined service.JoinResult
	decodeBody(t, resp, &joined)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/mafia/start/"+joined.RoomID.String(), token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGetPlayers(t *testing.T) {
	srv, _ := newTestServer(t)
	token := testutil.SignIdentityToken(t, testSecret, "ext-alice", "Alice")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/mafia/join", token, map[string]string{"name": "Alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var joined service.JoinResult
	decodeBody(t, resp, &joined)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/mafia/players/"+joined.RoomID.String(), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var players []map[string]any
	decodeBody(t, resp, &players)
	require.Len(t, players, 1)
}

package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/service"
	"github.com/dom/mafia-chicago/internal/testutil"
)

// fillRoom joins eight identities, which auto-starts the game, and returns
// the room id with one valid token.
func fillRoom(t *testing.T, srv string) (string, string) {
	t.Helper()

	var roomID string
	token := ""
	for i := 0; i < 8; i++ {
		tok := testutil.SignIdentityToken(t, testSecret, fmt.Sprintf("ext-p%d", i), fmt.Sprintf("Player %d", i))
		if token == "" {
			token = tok
		}
		resp := doJSON(t, http.MethodPost, srv+"/api/mafia/join", tok, map[string]string{"name": fmt.Sprintf("Player %d", i)})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var joined service.JoinResult
		decodeBody(t, resp, &joined)
		if roomID == "" {
			roomID = joined.RoomID.String()
		} else {
			require.Equal(t, roomID, joined.RoomID.String())
		}
		if i == 7 {
			assert.True(t, joined.Started)
		}
	}
	return roomID, token
}

func TestGameFlowOverHTTP(t *testing.T) {
	srv, services := newTestServer(t)
	roomID, token := fillRoom(t, srv.URL)
	ctx := context.Background()

	// Find the dealt roles through the roster.
	players, err := services.Room.ListPlayers(ctx, mustUUID(t, roomID))
	require.NoError(t, err)
	var mafia, doctor, victim *domain.Player
	for _, p := range players {
		switch p.Role {
		case domain.RoleMafia:
			mafia = p
		case domain.RoleDoctor:
			doctor = p
		case domain.RoleCivilian:
			if victim == nil {
				victim = p
			}
		}
	}
	require.NotNil(t, mafia)
	require.NotNil(t, doctor)
	require.NotNil(t, victim)

	// Into the night.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/mafia/next-phase/"+roomID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tr service.PhaseTransition
	decodeBody(t, resp, &tr)
	assert.Equal(t, domain.PhaseNightLocationSelection, tr.CurrentPhase)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/mafia/next-phase/"+roomID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The mafia strikes, unhealed.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/mafia/submit-role-action", token, map[string]any{
		"playerId": mafia.ID,
		"targetId": victim.ID,
		"action":   "KILL",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/mafia/resolve-night/"+roomID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var night domain.NightResult
	decodeBody(t, resp, &night)
	require.Len(t, night.Killed, 1)
	assert.Equal(t, victim.ID, night.Killed[0].PlayerID)

	// The town votes the mafia out.
	for _, p := range players {
		if p.ID == victim.ID {
			continue
		}
		resp = doJSON(t, http.MethodPost, srv.URL+"/api/mafia/vote", token, map[string]any{
			"voterId":  p.ID,
			"targetId": mafia.ID,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/mafia/resolve-vote/"+roomID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var vote domain.VoteResult
	decodeBody(t, resp, &vote)
	require.NotNil(t, vote.Executed)
	assert.Equal(t, mafia.ID, vote.Executed.PlayerID)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/mafia/check-victory/"+roomID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var victory domain.VictoryResult
	decodeBody(t, resp, &victory)
	assert.True(t, victory.GameOver)
	assert.Equal(t, domain.WinnerCivilians, victory.Winner)

	// The post-game snapshot reveals roles.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/mafia/state/"+roomID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state domain.GameState
	decodeBody(t, resp, &state)
	assert.Equal(t, domain.RoomStatusFinished, state.RoomStatus)
	assert.True(t, state.GameEnded)
	for _, p := range state.Players {
		assert.True(t, p.RoleRevealed)
	}
}

func TestSubmitRoleAction_InvalidAction(t *testing.T) {
	srv, services := newTestServer(t)
	roomID, token := fillRoom(t, srv.URL)

	players, err := services.Room.ListPlayers(context.Background(), mustUUID(t, roomID))
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/mafia/submit-role-action", token, map[string]any{
		"playerId": players[0].ID,
		"targetId": players[1].ID,
		"action":   "EXPLODE",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendGift_InvalidType(t *testing.T) {
	srv, services := newTestServer(t)
	roomID, token := fillRoom(t, srv.URL)

	players, err := services.Room.ListPlayers(context.Background(), mustUUID(t, roomID))
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/mafia/send-gift", token, map[string]any{
		"senderId":    players[0].ID,
		"recipientId": players[1].ID,
		"giftType":    "GRENADE",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

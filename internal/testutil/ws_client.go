package testutil

import (
	"encoding/json"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	ws "github.com/dom/mafia-chicago/internal/websocket"
)

// WSClient is a thin test client over a live websocket connection.
type WSClient struct {
	t    *testing.T
	conn *gorilla.Conn
}

func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
	})

	return &WSClient{t: t, conn: conn}
}

// SendIntent writes a client-to-server message.
func (c *WSClient) SendIntent(msgType ws.MessageType, payload any) {
	c.t.Helper()

	msg, err := ws.NewMessage(msgType, payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

// Expect reads messages until one of the wanted type arrives, failing the
// test on timeout. Messages of other types are discarded.
func (c *WSClient) Expect(msgType ws.MessageType, timeout time.Duration) *ws.Message {
	c.t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		require.NoError(c.t, c.conn.SetReadDeadline(deadline))
		_, data, err := c.conn.ReadMessage()
		require.NoError(c.t, err, "waiting for %s", msgType)

		var msg ws.Message
		require.NoError(c.t, json.Unmarshal(data, &msg))
		if msg.Type == msgType {
			return &msg
		}
	}
}

// DecodePayload unmarshals a received message payload into out.
func DecodePayload(t *testing.T, msg *ws.Message, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(msg.Payload, out))
}

package testutil

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/glowupgrow/terrarium-api/internal/websocket"
)

// WSClient is a test WebSocket client
type WSClient struct {
	t        *testing.T
	conn     *gorillaWS.Conn
	messages chan *websocket.Message
	done     chan struct{}
	once     sync.Once
	mu       sync.Mutex
}

// NewWSClient dials the live endpoint carrying client's session cookie.
func NewWSClient(t *testing.T, ts *TestServer, client *http.Client) *WSClient {
	t.Helper()

	conn, resp, err := DialLive(ts, client)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("failed to connect to websocket (status %d): %v", status, err)
	}

	c := &WSClient{
		t:        t,
		conn:     conn,
		messages: make(chan *websocket.Message, 100),
		done:     make(chan struct{}),
	}
	go c.readPump()

	t.Cleanup(c.Close)
	return c
}

// DialLive attempts the websocket handshake with client's cookies and
// returns the raw result, so callers can assert on a refused upgrade.
func DialLive(ts *TestServer, client *http.Client) (*gorillaWS.Conn, *http.Response, error) {
	dialer := gorillaWS.Dialer{
		HandshakeTimeout: 5 * time.Second,
		Jar:              client.Jar,
	}
	header := http.Header{"Origin": []string{ts.Server.URL}}
	return dialer.Dial(ts.WebSocketURL(), header)
}

func (c *WSClient) readPump() {
	defer close(c.messages)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		select {
		case c.messages <- &msg:
		case <-c.done:
			return
		}
	}
}

// Close closes the WebSocket connection gracefully
func (c *WSClient) Close() {
	c.once.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		c.mu.Unlock()
		c.conn.Close()
	})
}

// Send writes a message of msgType with no payload.
func (c *WSClient) Send(msgType websocket.MessageType) {
	c.t.Helper()

	msg, err := websocket.NewMessage(msgType, nil)
	if err != nil {
		c.t.Fatalf("failed to build message: %v", err)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("failed to marshal message: %v", err)
	}

	c.mu.Lock()
	err = c.conn.WriteMessage(gorillaWS.TextMessage, data)
	c.mu.Unlock()
	if err != nil {
		c.t.Fatalf("failed to send message: %v", err)
	}
}

// ExpectMessage waits for the next message and requires it to be msgType.
func (c *WSClient) ExpectMessage(msgType websocket.MessageType, timeout time.Duration) *websocket.Message {
	c.t.Helper()

	select {
	case msg, ok := <-c.messages:
		if !ok {
			c.t.Fatalf("connection closed while waiting for %s", msgType)
		}
		if msg.Type != msgType {
			c.t.Fatalf("expected %s, got %s", msgType, msg.Type)
		}
		return msg
	case <-time.After(timeout):
		c.t.Fatalf("timed out waiting for %s", msgType)
	}
	return nil
}

// ExpectTerrariumUpdated waits for a TERRARIUM_UPDATED message and decodes it.
func (c *WSClient) ExpectTerrariumUpdated(timeout time.Duration) *websocket.TerrariumUpdatedPayload {
	c.t.Helper()

	msg := c.ExpectMessage(websocket.MessageTypeTerrariumUpdated, timeout)
	var payload websocket.TerrariumUpdatedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.t.Fatalf("failed to decode payload: %v", err)
	}
	return &payload
}

// ExpectNoMessage fails if anything arrives within timeout.
func (c *WSClient) ExpectNoMessage(timeout time.Duration) {
	c.t.Helper()

	select {
	case msg, ok := <-c.messages:
		if ok {
			c.t.Fatalf("unexpected message %s", msg.Type)
		}
	case <-time.After(timeout):
	}
}

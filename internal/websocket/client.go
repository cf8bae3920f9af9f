package websocket

import (
	"context"
	"encoding/json"
	"time"

	"notebot-be/internal/constant"
	"notebot-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between one websocket connection and the hub.
// Incoming text frames are user utterances; they go through the dialogue
// router and the reply is written back on the same connection.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	UserID int64

	Router service.IDialogueService

	// Buffered channel of outbound messages.
	Send chan []byte
}

type replyFrame struct {
	Type string    `json:"type"`
	Data replyData `json:"data"`
}

type replyData struct {
	Reply       string   `json:"reply"`
	State       string   `json:"state"`
	Suggestions []string `json:"suggestions"`
}

// readPump feeds user messages into the dialogue router.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{
					"user_id": c.UserID, "error": err.Error(),
				})
			}
			break
		}

		ctx := context.Background()
		reply := c.Router.Handle(ctx, c.UserID, string(data))
		state := c.Router.CurrentState(ctx, c.UserID)

		frame, err := json.Marshal(replyFrame{
			Type: "reply",
			Data: replyData{
				Reply:       reply,
				State:       string(state),
				Suggestions: constant.KeyboardFor(state),
			},
		})
		if err != nil {
			continue
		}

		select {
		case c.Send <- frame:
		default:
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

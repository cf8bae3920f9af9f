package websocket

import (
	"notebot-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

// ServeWs wires one upgraded connection to the hub and the dialogue router.
func ServeWs(hub *Hub, router service.IDialogueService, c *websocket.Conn, userId int64) {
	client := &Client{
		Hub:    hub,
		Conn:   c,
		UserID: userId,
		Router: router,
		Send:   make(chan []byte, 256),
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // runs in the handler goroutine
}

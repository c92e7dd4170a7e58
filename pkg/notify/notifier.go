// Package notify delivers real-time events to users over the websocket hub.
package notify

import (
	"encoding/json"
	"log/slog"

	"spacenote-api/websocket"
)

// Notifier is a minimal interface for sending real-time notifications.
type Notifier interface {
	NotifyUser(userID string, event any)
}

// WSNotifier implements Notifier using a WebSocket Hub.
type WSNotifier struct {
	Hub *websocket.Hub
}

// NotifyUser serializes the event as JSON and delivers it to all connected
// clients of the user.
func (n *WSNotifier) NotifyUser(userID string, event any) {
	if n == nil || n.Hub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal notification", "err", err)
		return
	}
	n.Hub.NotifyUser(userID, payload)
}

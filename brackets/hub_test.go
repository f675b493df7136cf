package brackets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitForRoomSize(t *testing.T, h *Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.RoomSize(room) != want {
		if time.Now().After(deadline) {
			t.Fatalf("room %s: expected %d clients, got %d", room, want, h.RoomSize(room))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastToRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(quietLogger())
	go hub.Run(ctx)

	room := RoomForTournament(7)
	inRoom := &Client{Hub: hub, Send: make(chan []byte, 4), Room: room}
	elsewhere := &Client{Hub: hub, Send: make(chan []byte, 4), Room: RoomForTournament(8)}
	hub.Register <- inRoom
	hub.Register <- elsewhere
	waitForRoomSize(t, hub, room, 1)
	waitForRoomSize(t, hub, RoomForTournament(8), 1)

	hub.BroadcastToRoom(room, WebSocketMessage{Type: MessageMatchUpdated, Payload: map[string]int{"match_id": 3}, RoomID: room})

	select {
	case raw := <-inRoom.Send:
		var msg WebSocketMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("invalid message: %v", err)
		}
		if msg.Type != MessageMatchUpdated || msg.RoomID != "tournament_7" {
			t.Errorf("unexpected message: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("room client did not receive the broadcast")
	}

	select {
	case raw := <-elsewhere.Send:
		t.Errorf("client in another room received %s", raw)
	default:
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(quietLogger())
	go hub.Run(ctx)

	client := &Client{Hub: hub, Send: make(chan []byte, 1), Room: "tournament_1"}
	hub.Register <- client
	waitForRoomSize(t, hub, client.Room, 1)

	hub.Unregister <- client
	waitForRoomSize(t, hub, client.Room, 0)

	if _, ok := <-client.Send; ok {
		t.Error("expected send channel to be closed")
	}
	// Broadcasting to an empty room is a no-op.
	hub.BroadcastToRoom(client.Room, WebSocketMessage{Type: MessageBracketUpdated})
}

func TestHubStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(quietLogger())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := &Client{Hub: hub, Send: make(chan []byte, 1), Room: "tournament_2"}
	hub.Register <- client
	waitForRoomSize(t, hub, client.Room, 1)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	if _, ok := <-client.Send; ok {
		t.Error("expected client to be closed on shutdown")
	}
	if hub.RoomSize(client.Room) != 0 {
		t.Error("expected rooms to be cleared on shutdown")
	}
}

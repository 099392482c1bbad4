package live

import (
	"encoding/json"
	"testing"
	"time"

	"wayfare/models"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// create fake client
	client := &Client{
		Send:   make(chan []byte, 10),
		TripID: "trip1",
	}

	// register client
	hub.register <- client

	// broadcast a change set for the trip
	hub.BroadcastChange(models.ChangeSet{
		TripID:   "trip1",
		DayPlans: []models.DayPlan{{DayPlanID: "d1", TripID: "trip1", Date: "2026-01-01"}},
	})

	select {
	case got := <-client.Send:
		var payload syncPayload
		if err := json.Unmarshal(got, &payload); err != nil {
			t.Fatalf("unmarshal broadcast: %v", err)
		}
		if payload.Action != "sync" || payload.TripID != "trip1" {
			t.Fatalf("unexpected payload %+v", payload)
		}
		if len(payload.DayPlanIDs) != 1 || payload.DayPlanIDs[0] != "d1" {
			t.Fatalf("expected dayplan id d1, got %v", payload.DayPlanIDs)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	// unregister client
	hub.unregister <- client
}

func TestHubUnregisterAfterSlowClientDrop(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// unbuffered Send with no reader: the broadcast drops the client and
	// closes its channel
	slow := &Client{
		Send:   make(chan []byte),
		TripID: "trip1",
	}
	hub.register <- slow

	hub.BroadcastChange(models.ChangeSet{
		TripID:   "trip1",
		DayPlans: []models.DayPlan{{DayPlanID: "d1", TripID: "trip1", Date: "2026-01-01"}},
	})

	// the read pump of a dropped client still reports the disconnect; the hub
	// must not close Send a second time
	hub.unregister <- slow

	// hub loop must still be alive and serving the room
	fresh := &Client{
		Send:   make(chan []byte, 10),
		TripID: "trip1",
	}
	hub.register <- fresh
	hub.BroadcastChange(models.ChangeSet{TripID: "trip1", DeletedPlaceIDs: []string{"p1"}})

	select {
	case <-fresh.Send:
	case <-time.After(1 * time.Second):
		t.Fatal("hub stopped serving after duplicate unregister")
	}
}

func TestHubBroadcastIsScopedToRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	other := &Client{
		Send:   make(chan []byte, 10),
		TripID: "trip2",
	}
	hub.register <- other

	hub.BroadcastChange(models.ChangeSet{TripID: "trip1", DeletedPlaceIDs: []string{"p1"}})

	select {
	case got := <-other.Send:
		t.Fatalf("client in another room received %s", got)
	case <-time.After(100 * time.Millisecond):
	}
}

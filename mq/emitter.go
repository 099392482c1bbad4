package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"wayfare/db"
	"wayfare/models"
	"wayfare/rdx"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	syncChannel = "sync-events"
	pendingList = "sync:pending"
)

// Emit publishes one committed change set to the sync channel as per-record
// events. Fire-and-forget: publish failures are logged and never surface to
// the engine, so the user can keep rearranging while sync is down.
func Emit(ctx context.Context, cs models.ChangeSet) {
	for _, ev := range eventsFor(cs) {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Printf("[Emit] Failed to marshal sync event: %v", err)
			continue
		}
		if err := rdx.Conn.Publish(ctx, syncChannel, data).Err(); err != nil {
			log.Printf("[Emit] Failed to publish sync event: %v", err)
		}
	}
}

func eventsFor(cs models.ChangeSet) []models.SyncEvent {
	var events []models.SyncEvent

	upsert := func(kind, id string, doc any) {
		payload, err := json.Marshal(doc)
		if err != nil {
			log.Printf("[Emit] Failed to marshal %s %s: %v", kind, id, err)
			return
		}
		events = append(events, models.SyncEvent{
			Kind:    kind,
			Method:  models.MethodUpsert,
			ID:      id,
			TripID:  cs.TripID,
			Payload: payload,
		})
	}
	remove := func(kind, id string) {
		events = append(events, models.SyncEvent{
			Kind:   kind,
			Method: models.MethodDelete,
			ID:     id,
			TripID: cs.TripID,
		})
	}

	for _, dp := range cs.DayPlans {
		upsert(models.KindDayPlan, dp.DayPlanID, dp)
	}
	for _, p := range cs.Places {
		upsert(models.KindPlace, p.PlaceID, p)
	}
	for _, t := range cs.Transports {
		upsert(models.KindTransport, t.TransportID, t)
	}
	for _, id := range cs.DeletedDayPlanIDs {
		remove(models.KindDayPlan, id)
	}
	for _, id := range cs.DeletedPlaceIDs {
		remove(models.KindPlace, id)
	}
	for _, id := range cs.DeletedTransportIDs {
		remove(models.KindTransport, id)
	}
	return events
}

// StartSyncWorker drains the sync channel into Mongo. Writes that fail are
// parked on a retry list instead of blocking the channel.
func StartSyncWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, syncChannel)
	ch := sub.Channel()

	log.Println("[SyncWorker] Listening for sync events...")

	for msg := range ch {
		var event models.SyncEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[SyncWorker] Failed to parse event: %v", err)
			continue
		}
		if err := persistEvent(ctx, event); err != nil {
			log.Printf("[SyncWorker] Persist error (parking for retry): %v", err)
			if err := rdx.Conn.LPush(ctx, pendingList, msg.Payload).Err(); err != nil {
				log.Printf("[SyncWorker] Failed to park event: %v", err)
			}
		}
	}
}

// RetryPendingSync periodically replays parked events; the in-memory state
// stays authoritative meanwhile.
func RetryPendingSync() {
	ticker := time.NewTicker(30 * time.Second)
	for range ticker.C {
		ctx := context.Background()
		for {
			raw, err := rdx.Conn.RPop(ctx, pendingList).Result()
			if err != nil {
				break // empty list or redis down; try next tick
			}
			var event models.SyncEvent
			if err := json.Unmarshal([]byte(raw), &event); err != nil {
				log.Printf("[SyncRetry] Dropping unparseable event: %v", err)
				continue
			}
			if err := persistEvent(ctx, event); err != nil {
				log.Printf("[SyncRetry] Still failing, re-parking: %v", err)
				rdx.Conn.LPush(ctx, pendingList, raw)
				break
			}
		}
	}
}

func persistEvent(ctx context.Context, ev models.SyncEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	replaceOpts := options.Replace().SetUpsert(true)

	switch ev.Kind {
	case models.KindDayPlan:
		if ev.Method == models.MethodDelete {
			_, err := db.DayPlansCollection.DeleteOne(ctx, bson.M{"dayplanid": ev.ID})
			return err
		}
		var dp models.DayPlan
		if err := json.Unmarshal(ev.Payload, &dp); err != nil {
			return err
		}
		_, err := db.DayPlansCollection.ReplaceOne(ctx, bson.M{"dayplanid": ev.ID}, dp, replaceOpts)
		return err

	case models.KindPlace:
		if ev.Method == models.MethodDelete {
			_, err := db.PlacesCollection.DeleteOne(ctx, bson.M{"placeid": ev.ID})
			return err
		}
		var p models.Place
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return err
		}
		_, err := db.PlacesCollection.ReplaceOne(ctx, bson.M{"placeid": ev.ID}, p, replaceOpts)
		return err

	case models.KindTransport:
		if ev.Method == models.MethodDelete {
			_, err := db.TransportsCollection.DeleteOne(ctx, bson.M{"transportid": ev.ID})
			return err
		}
		var t models.Transport
		if err := json.Unmarshal(ev.Payload, &t); err != nil {
			return err
		}
		_, err := db.TransportsCollection.ReplaceOne(ctx, bson.M{"transportid": ev.ID}, t, replaceOpts)
		return err
	}

	log.Printf("[SyncWorker] Unknown event kind %q ignored", ev.Kind)
	return nil
}

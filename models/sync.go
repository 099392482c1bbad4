package models

import "encoding/json"

// ChangeSet is the outbound delta of one committed operation: full items
// array per changed day plan, full record per changed entity. It is what the
// sync outbox and live subscribers consume.
type ChangeSet struct {
	TripID              string      `json:"tripid"`
	DayPlans            []DayPlan   `json:"dayplans,omitempty"`
	Places              []Place     `json:"places,omitempty"`
	Transports          []Transport `json:"transports,omitempty"`
	DeletedDayPlanIDs   []string    `json:"deleted_dayplan_ids,omitempty"`
	DeletedPlaceIDs     []string    `json:"deleted_place_ids,omitempty"`
	DeletedTransportIDs []string    `json:"deleted_transport_ids,omitempty"`
}

func (cs *ChangeSet) Empty() bool {
	return cs == nil ||
		len(cs.DayPlans) == 0 && len(cs.Places) == 0 && len(cs.Transports) == 0 &&
			len(cs.DeletedDayPlanIDs) == 0 && len(cs.DeletedPlaceIDs) == 0 &&
			len(cs.DeletedTransportIDs) == 0
}

// Sync event kinds and methods.
const (
	KindDayPlan   = "dayplan"
	KindPlace     = "place"
	KindTransport = "transport"

	MethodUpsert = "upsert"
	MethodDelete = "delete"
)

// SyncEvent is one record-level persistence instruction drained by the sync
// worker. Payload holds the full document for upserts.
type SyncEvent struct {
	Kind    string          `json:"kind"`
	Method  string          `json:"method"`
	ID      string          `json:"id"`
	TripID  string          `json:"tripid"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

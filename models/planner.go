package models

import "github.com/google/uuid"

type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Lunch     TimeOfDay = "lunch"
	Afternoon TimeOfDay = "afternoon"
	Dinner    TimeOfDay = "dinner"
	Night     TimeOfDay = "night"
)

// TimeOfDayOrder lists the sections in display order.
var TimeOfDayOrder = []TimeOfDay{Morning, Lunch, Afternoon, Dinner, Night}

// Meal slots hold at most one restaurant place.
func (t TimeOfDay) IsMealSlot() bool {
	return t == Lunch || t == Dinner
}

func (t TimeOfDay) Valid() bool {
	switch t {
	case Morning, Lunch, Afternoon, Dinner, Night:
		return true
	}
	return false
}

// NormalizeTimeOfDay maps absent or unknown values to the morning section,
// so engine code never needs a read-site fallback.
func NormalizeTimeOfDay(t TimeOfDay) TimeOfDay {
	if !t.Valid() {
		return Morning
	}
	return t
}

type EntityType string

const (
	EntityPlace     EntityType = "place"
	EntityTransport EntityType = "transport"
)

// EntityRef is a tagged reference to exactly one schedulable entity.
type EntityRef struct {
	Type EntityType
	ID   string
}

func PlaceRef(id string) EntityRef     { return EntityRef{Type: EntityPlace, ID: id} }
func TransportRef(id string) EntityRef { return EntityRef{Type: EntityTransport, ID: id} }

// DayPlanItem is one placement of an entity within a day. Exactly one of
// PlaceID/TransportID is set; build items with NewDayPlanItem so that holds.
type DayPlanItem struct {
	ItemID      string    `json:"id" bson:"itemid"`
	PlaceID     string    `json:"placeId,omitempty" bson:"placeId,omitempty"`
	TransportID string    `json:"transportId,omitempty" bson:"transportId,omitempty"`
	Order       int       `json:"order" bson:"order"`
	TimeOfDay   TimeOfDay `json:"timeOfDay" bson:"timeOfDay"`
	StartTime   string    `json:"startTime,omitempty" bson:"startTime,omitempty"`
	EndTime     string    `json:"endTime,omitempty" bson:"endTime,omitempty"`
	Notes       string    `json:"notes,omitempty" bson:"notes,omitempty"`
	Locked      bool      `json:"locked,omitempty" bson:"locked,omitempty"`
}

func NewDayPlanItem(ref EntityRef, timeOfDay TimeOfDay) DayPlanItem {
	item := DayPlanItem{
		ItemID:    uuid.New().String(),
		TimeOfDay: NormalizeTimeOfDay(timeOfDay),
	}
	if ref.Type == EntityTransport {
		item.TransportID = ref.ID
	} else {
		item.PlaceID = ref.ID
	}
	return item
}

func (it *DayPlanItem) Ref() EntityRef {
	if it.TransportID != "" {
		return TransportRef(it.TransportID)
	}
	return PlaceRef(it.PlaceID)
}

// RefersTo reports whether the item places the given entity.
func (it *DayPlanItem) RefersTo(entityID string) bool {
	return it.PlaceID == entityID || it.TransportID == entityID
}

// DayPlan is the scheduling unit for one calendar day of a trip. Items carry a
// dense zero-based Order across the whole list; sections are a derived view.
type DayPlan struct {
	DayPlanID string        `json:"dayplanid" bson:"dayplanid"`
	TripID    string        `json:"tripid" bson:"tripid"`
	Date      string        `json:"date" bson:"date"`
	Items     []DayPlanItem `json:"items" bson:"items"`
	Theme     string        `json:"theme,omitempty" bson:"theme,omitempty"`
	Notes     string        `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Normalize gives every item an explicit timeOfDay and guarantees a non-nil
// item list. Applied once at the hydration boundary.
func (dp *DayPlan) Normalize() {
	if dp.Items == nil {
		dp.Items = []DayPlanItem{}
	}
	for i := range dp.Items {
		dp.Items[i].TimeOfDay = NormalizeTimeOfDay(dp.Items[i].TimeOfDay)
	}
}

// Clone returns a deep copy safe to hand to async consumers.
func (dp *DayPlan) Clone() DayPlan {
	out := *dp
	out.Items = make([]DayPlanItem, len(dp.Items))
	copy(out.Items, dp.Items)
	return out
}

// SectionItems returns the items of one time-of-day section, preserving their
// relative order within the full list.
func (dp *DayPlan) SectionItems(timeOfDay TimeOfDay) []DayPlanItem {
	var out []DayPlanItem
	for _, it := range dp.Items {
		if it.TimeOfDay == timeOfDay {
			out = append(out, it)
		}
	}
	return out
}

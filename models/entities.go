package models

import (
	"slices"
	"time"
)

type ScheduleStatus string

const (
	Unscheduled ScheduleStatus = "unscheduled"
	Scheduled   ScheduleStatus = "scheduled"
)

// StatusFor derives the schedule status from a day-id set.
func StatusFor(dayIDs []string) ScheduleStatus {
	if len(dayIDs) > 0 {
		return Scheduled
	}
	return Unscheduled
}

// Category tags a Place can carry; CategoryRestaurant gates meal slots.
const (
	CategoryRestaurant  = "restaurant"
	CategorySightseeing = "sightseeing"
	CategoryShopping    = "shopping"
	CategoryNightlife   = "nightlife"
	CategoryCulture     = "culture"
	CategoryNature      = "nature"
	CategoryAdventure   = "adventure"
)

type Place struct {
	PlaceID           string         `json:"placeid" bson:"placeid"`
	TripID            string         `json:"tripid" bson:"tripid"`
	Name              string         `json:"name" bson:"name"`
	Description       string         `json:"description,omitempty" bson:"description,omitempty"`
	Address           string         `json:"address,omitempty" bson:"address,omitempty"`
	City              string         `json:"city,omitempty" bson:"city,omitempty"`
	Website           string         `json:"website,omitempty" bson:"website,omitempty"`
	Categories        []string       `json:"categories" bson:"categories"`
	EstimatedDuration int            `json:"estimated_duration,omitempty" bson:"estimated_duration,omitempty"`
	Cost              float64        `json:"cost,omitempty" bson:"cost,omitempty"`
	Tip               string         `json:"tip,omitempty" bson:"tip,omitempty"`
	Notes             string         `json:"notes,omitempty" bson:"notes,omitempty"`
	ScheduleStatus    ScheduleStatus `json:"scheduleStatus" bson:"scheduleStatus"`
	ScheduledDayIDs   []string       `json:"scheduledDayIds" bson:"scheduledDayIds"`
	CreatedAt         time.Time      `json:"created_at" bson:"created_at"`
}

func (p *Place) IsRestaurant() bool {
	return slices.Contains(p.Categories, CategoryRestaurant)
}

type TransportType string

const (
	TransportTrain     TransportType = "train"
	TransportBus       TransportType = "bus"
	TransportFerry     TransportType = "ferry"
	TransportTaxi      TransportType = "taxi"
	TransportMetro     TransportType = "metro"
	TransportRentalCar TransportType = "rental_car"
)

type Transport struct {
	TransportID     string         `json:"transportid" bson:"transportid"`
	TripID          string         `json:"tripid" bson:"tripid"`
	Type            TransportType  `json:"type" bson:"type"`
	From            string         `json:"from" bson:"from"`
	To              string         `json:"to" bson:"to"`
	DepartureTime   string         `json:"departure_time,omitempty" bson:"departure_time,omitempty"`
	DurationMinutes int            `json:"duration_minutes,omitempty" bson:"duration_minutes,omitempty"`
	Cost            float64        `json:"cost,omitempty" bson:"cost,omitempty"`
	Notes           string         `json:"notes,omitempty" bson:"notes,omitempty"`
	ScheduleStatus  ScheduleStatus `json:"scheduleStatus" bson:"scheduleStatus"`
	ScheduledDayIDs []string       `json:"scheduledDayIds" bson:"scheduledDayIds"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
}

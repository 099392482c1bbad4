package models

import "time"

// Trip dates are ISO calendar dates (YYYY-MM-DD), end >= start.
type Trip struct {
	TripID      string    `json:"tripid" bson:"tripid"`
	Name        string    `json:"name" bson:"name"`
	Destination string    `json:"destination" bson:"destination"`
	StartDate   string    `json:"start_date" bson:"start_date"`
	EndDate     string    `json:"end_date" bson:"end_date"`
	Currency    string    `json:"currency,omitempty" bson:"currency,omitempty"`
	Budget      float64   `json:"budget,omitempty" bson:"budget,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

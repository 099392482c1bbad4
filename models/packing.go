package models

import "time"

type PackingCategory string

const (
	PackingDocuments   PackingCategory = "documents"
	PackingClothing    PackingCategory = "clothing"
	PackingElectronics PackingCategory = "electronics"
	PackingToiletries  PackingCategory = "toiletries"
	PackingHealth      PackingCategory = "health"
	PackingOther       PackingCategory = "other"
)

// PackingCategoryOrder lists the categories in display order.
var PackingCategoryOrder = []PackingCategory{
	PackingDocuments, PackingClothing, PackingElectronics,
	PackingToiletries, PackingHealth, PackingOther,
}

func (c PackingCategory) Valid() bool {
	switch c {
	case PackingDocuments, PackingClothing, PackingElectronics,
		PackingToiletries, PackingHealth, PackingOther:
		return true
	}
	return false
}

// NormalizePackingCategory maps absent or unknown values to "other".
func NormalizePackingCategory(c PackingCategory) PackingCategory {
	if !c.Valid() {
		return PackingOther
	}
	return c
}

// PackingItem is one checklist entry of a trip's packing list. It is plain
// per-trip CRUD data, never referenced by day plans.
type PackingItem struct {
	ItemID    string          `json:"itemid" bson:"itemid"`
	TripID    string          `json:"tripid" bson:"tripid"`
	Name      string          `json:"name" bson:"name"`
	Category  PackingCategory `json:"category" bson:"category"`
	Checked   bool            `json:"checked" bson:"checked"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
}

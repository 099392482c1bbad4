package packing

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"wayfare/db"
	"wayfare/models"
	"wayfare/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Per-trip packing checklist. Unlike places and transports, packing items are
// never scheduled, so they bypass the planner store and go straight to Mongo.

type createRequest struct {
	Name     string                 `json:"name"`
	Category models.PackingCategory `json:"category"`
}

// POST /api/trips/:tripid/packing
func CreatePackingItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Item name is required")
		return
	}

	item := models.PackingItem{
		ItemID:    utils.GetUUID(),
		TripID:    ps.ByName("tripid"),
		Name:      req.Name,
		Category:  models.NormalizePackingCategory(req.Category),
		Checked:   false,
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := db.PackingCollection.InsertOne(ctx, item); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error inserting packing item")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, item)
}

// GET /api/trips/:tripid/packing — items plus packed/total progress counts.
func GetPackingList(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := db.PackingCollection.Find(ctx,
		bson.M{"tripid": ps.ByName("tripid")},
		options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching packing list")
		return
	}
	defer cursor.Close(ctx)

	items := []models.PackingItem{}
	if err := cursor.All(ctx, &items); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error decoding packing list")
		return
	}

	packed := 0
	for _, it := range items {
		if it.Checked {
			packed++
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"items":  items,
		"packed": packed,
		"total":  len(items),
	})
}

// PUT /api/trips/:tripid/packing/:itemid/toggle
func TogglePackingItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{"tripid": ps.ByName("tripid"), "itemid": ps.ByName("itemid")}
	// pipeline update so the flip is atomic
	flip := bson.A{bson.M{"$set": bson.M{"checked": bson.M{"$not": "$checked"}}}}

	var item models.PackingItem
	err := db.PackingCollection.FindOneAndUpdate(ctx, filter, flip,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&item)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Packing item not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, item)
}

// DELETE /api/trips/:tripid/packing/:itemid
func DeletePackingItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.PackingCollection.DeleteOne(ctx,
		bson.M{"tripid": ps.ByName("tripid"), "itemid": ps.ByName("itemid")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error deleting packing item")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Packing item not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Packing item deleted"})
}

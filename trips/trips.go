package trips

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"wayfare/db"
	"wayfare/models"
	"wayfare/planner"
	"wayfare/rdx"
	"wayfare/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

type Service struct {
	store *planner.Store
}

func NewService(store *planner.Store) *Service {
	return &Service{store: store}
}

const isoDate = "2006-01-02"

// validDateRange guards the engine's date-range precondition at the API
// boundary: parseable ISO dates with end >= start.
func validDateRange(start, end string) bool {
	s, err := time.Parse(isoDate, start)
	if err != nil {
		return false
	}
	e, err := time.Parse(isoDate, end)
	if err != nil {
		return false
	}
	return !e.Before(s)
}

// POST /api/trips
func (svc *Service) CreateTrip(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var trip models.Trip
	if err := json.NewDecoder(r.Body).Decode(&trip); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if trip.Name == "" || !validDateRange(trip.StartDate, trip.EndDate) {
		utils.RespondWithError(w, http.StatusBadRequest, "Name and a valid date range are required")
		return
	}

	now := time.Now()
	trip.TripID = utils.GetUUID()
	trip.CreatedAt = now
	trip.UpdatedAt = now

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := db.TripsCollection.InsertOne(ctx, trip); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error inserting trip")
		return
	}

	svc.store.RegisterTrip(trip)
	if _, err := svc.store.InitializeDayPlans(ctx, trip.TripID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error initializing day plans")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, trip)
}

// GET /api/trips
func (svc *Service) GetTrips(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	trips, err := utils.FindAndDecode[models.Trip](ctx, db.TripsCollection, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching trips")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, trips)
}

// GET /api/trips/:tripid
func (svc *Service) GetTrip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var trip models.Trip
	err := db.TripsCollection.FindOne(ctx, bson.M{"tripid": ps.ByName("tripid")}).Decode(&trip)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, trip)
}

type tripUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Destination *string  `json:"destination,omitempty"`
	StartDate   *string  `json:"start_date,omitempty"`
	EndDate     *string  `json:"end_date,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
}

// PUT /api/trips/:tripid — edits trip fields only; existing day plans are not
// reconciled when the date range changes.
func (svc *Service) UpdateTrip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tripID := ps.ByName("tripid")

	var upd tripUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var existing models.Trip
	if err := db.TripsCollection.FindOne(ctx, bson.M{"tripid": tripID}).Decode(&existing); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
		return
	}

	if upd.Name != nil {
		existing.Name = *upd.Name
	}
	if upd.Destination != nil {
		existing.Destination = *upd.Destination
	}
	if upd.StartDate != nil {
		existing.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		existing.EndDate = *upd.EndDate
	}
	if upd.Currency != nil {
		existing.Currency = *upd.Currency
	}
	if upd.Budget != nil {
		existing.Budget = *upd.Budget
	}
	if !validDateRange(existing.StartDate, existing.EndDate) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid date range")
		return
	}
	existing.UpdatedAt = time.Now()

	if _, err := db.TripsCollection.ReplaceOne(ctx, bson.M{"tripid": tripID}, existing); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error updating trip")
		return
	}

	svc.store.RefreshTrip(existing)
	utils.RespondWithJSON(w, http.StatusOK, existing)
}

// DELETE /api/trips/:tripid — cascade: day plans and entities die with the
// trip.
func (svc *Service) DeleteTrip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tripID := ps.ByName("tripid")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// emit per-record deletion events so the sync worker removes day plans
	// and entities; the trip record itself is not part of change sets
	if err := svc.store.PurgeTrip(ctx, tripID); err != nil {
		if errors.Is(err, planner.ErrTripNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error deleting trip")
		return
	}

	if _, err := db.TripsCollection.DeleteOne(ctx, bson.M{"tripid": tripID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error deleting trip")
		return
	}
	// packing items live outside the scheduling engine, cascade directly
	if _, err := db.PackingCollection.DeleteMany(ctx, bson.M{"tripid": tripID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error deleting packing list")
		return
	}

	rdx.RdxDel(rdx.DayPlansCacheKey(tripID))

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Trip deleted successfully"})
}

package places

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"wayfare/models"
	"wayfare/planner"
	"wayfare/utils"

	"github.com/julienschmidt/httprouter"
)

// CRUD for places. All mutations route through the planner store so that
// scheduleStatus/scheduledDayIds are only ever touched by engine operations;
// a partial edit here can never unschedule a place.
type Service struct {
	store *planner.Store
}

func NewService(store *planner.Store) *Service {
	return &Service{store: store}
}

// POST /api/trips/:tripid/places
func (svc *Service) CreatePlace(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var place models.Place
	if err := json.NewDecoder(r.Body).Decode(&place); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if place.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Name is required")
		return
	}

	place.PlaceID = utils.GetUUID()
	place.TripID = ps.ByName("tripid")
	place.ScheduleStatus = models.Unscheduled
	place.ScheduledDayIDs = []string{}
	if place.Categories == nil {
		place.Categories = []string{}
	}
	place.CreatedAt = time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := svc.store.CreatePlace(ctx, place); err != nil {
		if errors.Is(err, planner.ErrTripNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error creating place")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, place)
}

// GET /api/trips/:tripid/places
func (svc *Service) GetPlaces(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	places, err := svc.store.PlacesForTrip(ctx, ps.ByName("tripid"))
	if err != nil {
		if errors.Is(err, planner.ErrTripNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch places")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, places)
}

// PUT /api/trips/:tripid/places/:placeid
func (svc *Service) EditPlace(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var upd planner.PlaceUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	applied, err := svc.store.UpdatePlace(ctx, ps.ByName("tripid"), ps.ByName("placeid"), upd)
	if err != nil {
		if errors.Is(err, planner.ErrTripNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error updating place")
		return
	}
	if !applied {
		utils.RespondWithError(w, http.StatusNotFound, "Place not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Place updated successfully"})
}

// DELETE /api/trips/:tripid/places/:placeid — prunes the place from every day
// plan before dropping the record.
func (svc *Service) DeletePlace(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	applied, err := svc.store.DeletePlace(ctx, ps.ByName("tripid"), ps.ByName("placeid"))
	if err != nil {
		if errors.Is(err, planner.ErrTripNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error deleting place")
		return
	}
	if !applied {
		utils.RespondWithError(w, http.StatusNotFound, "Place not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Place deleted successfully"})
}

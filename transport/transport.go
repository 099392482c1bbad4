package transport

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

// CRUD for transport legs; same store-backed discipline as places.
type Service struct {
	store *planner.Store
}

func NewService(store *planner.Store) *Service {
	return &Service{store: store}
}

// POST /api/trips/:tripid/transports
func (svc *Service) CreateTransport(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var transport models.Transport
	if err := json.NewDecoder(r.Body).Decode(&transport); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if transport.From == "" || transport.To == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "From and to are required")
		return
	}

	transport.TransportID = utils.GetUUID()
	transport.TripID = ps.ByName("tripid")
	transport.ScheduleStatus = models.Unscheduled
	transport.ScheduledDayIDs = []string{}
	transport.CreatedAt = time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := svc.store.CreateTransport(ctx, transport); err != nil {
		if errors.Is(err, planner.ErrTripNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error creating transport")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, transport)
}

// GET /api/trips/:tripid/transports
func (svc *Service) GetTransports(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	transports, err := svc.store.TransportsForTrip(ctx, ps.ByName("tripid"))
	if err != nil {
		if errors.Is(err, planner.ErrTripNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch transports")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, transports)
}

// PUT /api/trips/:tripid/transports/:transportid
func (svc *Service) EditTransport(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var upd planner.TransportUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	applied, err := svc.store.UpdateTransport(ctx, ps.ByName("tripid"), ps.ByName("transportid"), upd)
	if err != nil {
		if errors.Is(err, planner.ErrTripNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error updating transport")
		return
	}
	if !applied {
		utils.RespondWithError(w, http.StatusNotFound, "Transport not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Transport updated successfully"})
}

// DELETE /api/trips/:tripid/transports/:transportid
func (svc *Service) DeleteTransport(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	applied, err := svc.store.DeleteTransport(ctx, ps.ByName("tripid"), ps.ByName("transportid"))
	if err != nil {
		if errors.Is(err, planner.ErrTripNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error deleting transport")
		return
	}
	if !applied {
		utils.RespondWithError(w, http.StatusNotFound, "Transport not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Transport deleted successfully"})
}

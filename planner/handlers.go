package planner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"wayfare/models"
	"wayfare/utils"

	"github.com/julienschmidt/httprouter"
)

// HTTP surface for the semantic drop/move operations. Every rejected gesture
// (constraint or structural) answers 200 with applied=false and unchanged
// state, so the UI can let the drag snap back without an error dialog.

type scheduleRequest struct {
	EntityID   string            `json:"entityId"`
	EntityType models.EntityType `json:"entityType"`
	DayPlanID  string            `json:"dayPlanId"`
	Index      int               `json:"index"`
	TimeOfDay  models.TimeOfDay  `json:"timeOfDay"`
}

type reorderRequest struct {
	DayPlanID string           `json:"dayPlanId"`
	EntityID  string           `json:"entityId"`
	Index     int              `json:"index"`
	TimeOfDay models.TimeOfDay `json:"timeOfDay"`
}

type moveRequest struct {
	EntityID    string           `json:"entityId"`
	SourceDayID string           `json:"sourceDayId"`
	DestDayID   string           `json:"destDayId"`
	Index       int              `json:"index"`
	TimeOfDay   models.TimeOfDay `json:"timeOfDay"`
}

type lockRequest struct {
	EntityID  string `json:"entityId"`
	DayPlanID string `json:"dayPlanId"`
}

type dayPlanMetaRequest struct {
	Theme *string `json:"theme,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

func opContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}

func respondApplied(w http.ResponseWriter, applied bool, err error) {
	if err != nil {
		if errors.Is(err, ErrTripNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Operation failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"applied": applied})
}

func entityRefFrom(entityType models.EntityType, entityID string) (models.EntityRef, bool) {
	switch entityType {
	case models.EntityPlace, models.EntityTransport:
		return models.EntityRef{Type: entityType, ID: entityID}, true
	}
	return models.EntityRef{}, false
}

// POST /api/planner/:tripid/schedule
func (s *Store) HandleSchedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	ref, ok := entityRefFrom(req.EntityType, req.EntityID)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown entity type")
		return
	}

	ctx, cancel := opContext(r)
	defer cancel()

	applied, err := s.Schedule(ctx, ps.ByName("tripid"), ref, req.DayPlanID, req.Index, req.TimeOfDay)
	respondApplied(w, applied, err)
}

// POST /api/planner/:tripid/unschedule
func (s *Store) HandleUnschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	ref, ok := entityRefFrom(req.EntityType, req.EntityID)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown entity type")
		return
	}

	ctx, cancel := opContext(r)
	defer cancel()

	applied, err := s.Unschedule(ctx, ps.ByName("tripid"), ref, req.DayPlanID)
	respondApplied(w, applied, err)
}

// POST /api/planner/:tripid/reorder
func (s *Store) HandleReorder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ctx, cancel := opContext(r)
	defer cancel()

	applied, err := s.ReorderInDay(ctx, ps.ByName("tripid"), req.DayPlanID, req.EntityID, req.Index, req.TimeOfDay)
	respondApplied(w, applied, err)
}

// POST /api/planner/:tripid/move
func (s *Store) HandleMove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ctx, cancel := opContext(r)
	defer cancel()

	applied, err := s.MoveBetweenDays(ctx, ps.ByName("tripid"), req.EntityID, req.SourceDayID, req.DestDayID, req.Index, req.TimeOfDay)
	respondApplied(w, applied, err)
}

// POST /api/planner/:tripid/lock
func (s *Store) HandleToggleLock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req lockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ctx, cancel := opContext(r)
	defer cancel()

	applied, err := s.ToggleLock(ctx, ps.ByName("tripid"), req.EntityID, req.DayPlanID)
	respondApplied(w, applied, err)
}

// POST /api/planner/:tripid/clear/:dayplanid
func (s *Store) HandleClearDay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := opContext(r)
	defer cancel()

	applied, err := s.ClearDay(ctx, ps.ByName("tripid"), ps.ByName("dayplanid"))
	respondApplied(w, applied, err)
}

// POST /api/planner/:tripid/init
func (s *Store) HandleInitDayPlans(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := opContext(r)
	defer cancel()

	applied, err := s.InitializeDayPlans(ctx, ps.ByName("tripid"))
	respondApplied(w, applied, err)
}

// PUT /api/planner/:tripid/day/:dayplanid
func (s *Store) HandleUpdateDayPlan(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req dayPlanMetaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ctx, cancel := opContext(r)
	defer cancel()

	applied, err := s.UpdateDayPlanMeta(ctx, ps.ByName("tripid"), ps.ByName("dayplanid"), req.Theme, req.Notes)
	respondApplied(w, applied, err)
}

// GETs.go
package planner

import (
	"errors"
	"net/http"

	"wayfare/rdx"
	"wayfare/utils"

	"github.com/julienschmidt/httprouter"
)

// GET /api/planner/:tripid/dayplans
func (s *Store) HandleGetDayPlans(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tripID := ps.ByName("tripid")

	// Try cache
	if cached, _ := rdx.RdxGet(rdx.DayPlansCacheKey(tripID)); cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	ctx, cancel := opContext(r)
	defer cancel()

	dayPlans, err := s.DayPlans(ctx, tripID)
	if err != nil {
		if errors.Is(err, ErrTripNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching day plans")
		return
	}

	data := utils.ToJSON(dayPlans)
	rdx.RdxSet(rdx.DayPlansCacheKey(tripID), string(data))
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// GET /api/planner/:tripid/pool — the unscheduled bucket list.
func (s *Store) HandleGetPool(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := opContext(r)
	defer cancel()

	places, transports, err := s.Pool(ctx, ps.ByName("tripid"))
	if err != nil {
		if errors.Is(err, ErrTripNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching unscheduled pool")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"places":     places,
		"transports": transports,
	})
}

package planner

import (
	"fmt"
	"slices"
	"sort"

	"wayfare/models"
)

// TripState holds one trip's entity store and day-plan store. It is the
// authoritative in-memory state; every mutation goes through the engine
// methods in engine.go. TripState itself is not safe for concurrent use —
// the Store serializes access per trip.
type TripState struct {
	Trip       models.Trip
	Places     map[string]*models.Place
	Transports map[string]*models.Transport
	DayPlans   []*models.DayPlan // sorted by date
}

func NewTripState(trip models.Trip) *TripState {
	return &TripState{
		Trip:       trip,
		Places:     make(map[string]*models.Place),
		Transports: make(map[string]*models.Transport),
		DayPlans:   []*models.DayPlan{},
	}
}

func (s *TripState) dayPlan(dayPlanID string) *models.DayPlan {
	for _, dp := range s.DayPlans {
		if dp.DayPlanID == dayPlanID {
			return dp
		}
	}
	return nil
}

func (s *TripState) entityExists(ref models.EntityRef) bool {
	switch ref.Type {
	case models.EntityPlace:
		return s.Places[ref.ID] != nil
	case models.EntityTransport:
		return s.Transports[ref.ID] != nil
	}
	return false
}

// refFor resolves an entity id against both stores; used by operations that
// receive an id without a type (reorder, move, lock).
func (s *TripState) refFor(entityID string) (models.EntityRef, bool) {
	if s.Places[entityID] != nil {
		return models.PlaceRef(entityID), true
	}
	if s.Transports[entityID] != nil {
		return models.TransportRef(entityID), true
	}
	return models.EntityRef{}, false
}

func (s *TripState) sortDayPlans() {
	sort.Slice(s.DayPlans, func(i, j int) bool {
		return s.DayPlans[i].Date < s.DayPlans[j].Date
	})
}

// addScheduledDay records dayPlanID on the entity (deduplicated) and derives
// the schedule status.
func (s *TripState) addScheduledDay(ref models.EntityRef, dayPlanID string) {
	switch ref.Type {
	case models.EntityPlace:
		if p := s.Places[ref.ID]; p != nil {
			if !slices.Contains(p.ScheduledDayIDs, dayPlanID) {
				p.ScheduledDayIDs = append(p.ScheduledDayIDs, dayPlanID)
			}
			p.ScheduleStatus = models.StatusFor(p.ScheduledDayIDs)
		}
	case models.EntityTransport:
		if t := s.Transports[ref.ID]; t != nil {
			if !slices.Contains(t.ScheduledDayIDs, dayPlanID) {
				t.ScheduledDayIDs = append(t.ScheduledDayIDs, dayPlanID)
			}
			t.ScheduleStatus = models.StatusFor(t.ScheduledDayIDs)
		}
	}
}

func (s *TripState) removeScheduledDay(ref models.EntityRef, dayPlanID string) {
	switch ref.Type {
	case models.EntityPlace:
		if p := s.Places[ref.ID]; p != nil {
			p.ScheduledDayIDs = slices.DeleteFunc(p.ScheduledDayIDs, func(id string) bool { return id == dayPlanID })
			p.ScheduleStatus = models.StatusFor(p.ScheduledDayIDs)
		}
	case models.EntityTransport:
		if t := s.Transports[ref.ID]; t != nil {
			t.ScheduledDayIDs = slices.DeleteFunc(t.ScheduledDayIDs, func(id string) bool { return id == dayPlanID })
			t.ScheduleStatus = models.StatusFor(t.ScheduledDayIDs)
		}
	}
}

// --- change-set snapshots -------------------------------------------------

func (s *TripState) snapshotEntity(ref models.EntityRef, cs *models.ChangeSet) {
	switch ref.Type {
	case models.EntityPlace:
		if p := s.Places[ref.ID]; p != nil {
			cp := *p
			cp.ScheduledDayIDs = slices.Clone(p.ScheduledDayIDs)
			if cp.ScheduledDayIDs == nil {
				cp.ScheduledDayIDs = []string{}
			}
			cs.Places = append(cs.Places, cp)
		}
	case models.EntityTransport:
		if t := s.Transports[ref.ID]; t != nil {
			ct := *t
			ct.ScheduledDayIDs = slices.Clone(t.ScheduledDayIDs)
			if ct.ScheduledDayIDs == nil {
				ct.ScheduledDayIDs = []string{}
			}
			cs.Transports = append(cs.Transports, ct)
		}
	}
}

func (s *TripState) snapshotDayPlan(dp *models.DayPlan, cs *models.ChangeSet) {
	cs.DayPlans = append(cs.DayPlans, dp.Clone())
}

func (s *TripState) newChangeSet() *models.ChangeSet {
	return &models.ChangeSet{TripID: s.Trip.TripID}
}

// --- invariant checks -----------------------------------------------------

// CheckInvariants verifies the five structural invariants of the day-plan
// index. Violations are programming defects, never user errors.
func (s *TripState) CheckInvariants() error {
	// day-side: dense order, no duplicate placement, meal-slot integrity
	placements := map[string][]string{} // entityID -> dayPlanIDs
	for _, dp := range s.DayPlans {
		orders := make([]int, 0, len(dp.Items))
		seen := map[string]bool{}
		mealCount := map[models.TimeOfDay]int{}
		for _, it := range dp.Items {
			orders = append(orders, it.Order)
			id := it.Ref().ID
			if seen[id] {
				return fmt.Errorf("day %s: duplicate placement of entity %s", dp.DayPlanID, id)
			}
			seen[id] = true
			placements[id] = append(placements[id], dp.DayPlanID)

			if it.TimeOfDay.IsMealSlot() {
				mealCount[it.TimeOfDay]++
				if mealCount[it.TimeOfDay] > 1 {
					return fmt.Errorf("day %s: %s slot holds more than one item", dp.DayPlanID, it.TimeOfDay)
				}
				if it.Ref().Type != models.EntityPlace {
					return fmt.Errorf("day %s: %s slot holds a transport", dp.DayPlanID, it.TimeOfDay)
				}
				p := s.Places[it.PlaceID]
				if p == nil || !p.IsRestaurant() {
					return fmt.Errorf("day %s: %s slot holds non-restaurant place %s", dp.DayPlanID, it.TimeOfDay, it.PlaceID)
				}
			}
		}
		sort.Ints(orders)
		for i, o := range orders {
			if o != i {
				return fmt.Errorf("day %s: order values not dense (got %v)", dp.DayPlanID, orders)
			}
		}
	}

	// entity-side: scheduledDayIds mirrors the placements exactly
	check := func(id string, dayIDs []string, status models.ScheduleStatus) error {
		want := placements[id]
		if len(want) != len(dayIDs) {
			return fmt.Errorf("entity %s: scheduledDayIds %v != placements %v", id, dayIDs, want)
		}
		for _, d := range want {
			if !slices.Contains(dayIDs, d) {
				return fmt.Errorf("entity %s: missing day %s in scheduledDayIds", id, d)
			}
		}
		if status != models.StatusFor(dayIDs) {
			return fmt.Errorf("entity %s: status %s inconsistent with %v", id, status, dayIDs)
		}
		return nil
	}
	for _, p := range s.Places {
		if err := check(p.PlaceID, p.ScheduledDayIDs, p.ScheduleStatus); err != nil {
			return err
		}
	}
	for _, t := range s.Transports {
		if err := check(t.TransportID, t.ScheduledDayIDs, t.ScheduleStatus); err != nil {
			return err
		}
	}
	return nil
}

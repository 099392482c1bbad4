package planner

import (
	"context"
	"errors"
	"log"
	"slices"
	"sort"
	"sync"

	"wayfare/db"
	"wayfare/globals"
	"wayfare/models"
	"wayfare/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrTripNotFound = errors.New("trip not found")

// Store owns the in-memory trip states and is the only mutation API for
// schedule state. It supplies the serialization the engine itself does not:
// one mutex per trip, operations applied strictly in arrival order, commit
// listeners observing only full post-operation states.
type Store struct {
	mu        sync.Mutex
	trips     map[string]*tripEntry
	listeners []func(models.ChangeSet)
}

type tripEntry struct {
	mu    sync.Mutex
	state *TripState
}

func NewStore() *Store {
	return &Store{trips: make(map[string]*tripEntry)}
}

// OnCommit registers a listener invoked with every committed change set, in
// commit order per trip. Register listeners before serving traffic.
func (s *Store) OnCommit(fn func(models.ChangeSet)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Store) entry(tripID string) *tripEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.trips[tripID]
	if e == nil {
		e = &tripEntry{}
		s.trips[tripID] = e
	}
	return e
}

// RegisterTrip seeds a fresh state for a newly created trip so the first
// planner call does not round-trip to Mongo.
func (s *Store) RegisterTrip(trip models.Trip) {
	e := s.entry(trip.TripID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		e.state = NewTripState(trip)
	}
}

// RefreshTrip updates the in-memory trip record after a CRUD edit. Day plans
// are deliberately not reconciled to new dates.
func (s *Store) RefreshTrip(trip models.Trip) {
	e := s.entry(trip.TripID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != nil {
		e.state.Trip = trip
	}
}

// Evict drops a trip's in-memory state (trip deleted).
func (s *Store) Evict(tripID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trips, tripID)
}

func (s *Store) withTrip(ctx context.Context, tripID string, op func(*TripState) *models.ChangeSet) (*models.ChangeSet, error) {
	e := s.entry(tripID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		state, err := loadTripState(ctx, tripID)
		if err != nil {
			return nil, err
		}
		e.state = state
	}

	cs := op(e.state)

	if globals.Debug {
		if err := e.state.CheckInvariants(); err != nil {
			log.Panicf("planner invariant violated after operation on trip %s: %v", tripID, err)
		}
	}

	if !cs.Empty() {
		for _, fn := range s.listeners {
			fn(*cs)
		}
	}
	return cs, nil
}

// loadTripState hydrates one trip's full state from Mongo, normalizing
// timeOfDay and derived schedule status at the boundary.
func loadTripState(ctx context.Context, tripID string) (*TripState, error) {
	var trip models.Trip
	if err := db.TripsCollection.FindOne(ctx, bson.M{"tripid": tripID}).Decode(&trip); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	state := NewTripState(trip)

	places, err := utils.FindAndDecode[models.Place](ctx, db.PlacesCollection, bson.M{"tripid": tripID})
	if err != nil {
		return nil, err
	}
	for i := range places {
		p := places[i]
		if p.ScheduledDayIDs == nil {
			p.ScheduledDayIDs = []string{}
		}
		p.ScheduleStatus = models.StatusFor(p.ScheduledDayIDs)
		state.Places[p.PlaceID] = &p
	}

	transports, err := utils.FindAndDecode[models.Transport](ctx, db.TransportsCollection, bson.M{"tripid": tripID})
	if err != nil {
		return nil, err
	}
	for i := range transports {
		t := transports[i]
		if t.ScheduledDayIDs == nil {
			t.ScheduledDayIDs = []string{}
		}
		t.ScheduleStatus = models.StatusFor(t.ScheduledDayIDs)
		state.Transports[t.TransportID] = &t
	}

	dayPlans, err := utils.FindAndDecode[models.DayPlan](ctx, db.DayPlansCollection, bson.M{"tripid": tripID})
	if err != nil {
		return nil, err
	}
	for i := range dayPlans {
		dp := dayPlans[i]
		dp.Normalize()
		state.DayPlans = append(state.DayPlans, &dp)
	}
	state.sortDayPlans()

	return state, nil
}

// --- scheduling operations -------------------------------------------------

func (s *Store) Schedule(ctx context.Context, tripID string, ref models.EntityRef, dayPlanID string, sectionIndex int, timeOfDay models.TimeOfDay) (bool, error) {
	cs, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		return st.Schedule(ref, dayPlanID, sectionIndex, timeOfDay)
	})
	return cs != nil, err
}

// Unschedule removes one day's placement, or every placement if dayPlanID is
// empty.
func (s *Store) Unschedule(ctx context.Context, tripID string, ref models.EntityRef, dayPlanID string) (bool, error) {
	cs, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		if dayPlanID == "" {
			return st.UnscheduleAll(ref)
		}
		return st.Unschedule(ref, dayPlanID)
	})
	return cs != nil, err
}

func (s *Store) ReorderInDay(ctx context.Context, tripID, dayPlanID, entityID string, destSectionIndex int, timeOfDay models.TimeOfDay) (bool, error) {
	cs, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		return st.ReorderInDay(dayPlanID, entityID, destSectionIndex, timeOfDay)
	})
	return cs != nil, err
}

func (s *Store) MoveBetweenDays(ctx context.Context, tripID, entityID, sourceDayID, destDayID string, destSectionIndex int, timeOfDay models.TimeOfDay) (bool, error) {
	cs, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		return st.MoveBetweenDays(entityID, sourceDayID, destDayID, destSectionIndex, timeOfDay)
	})
	return cs != nil, err
}

func (s *Store) ToggleLock(ctx context.Context, tripID, entityID, dayPlanID string) (bool, error) {
	cs, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		return st.ToggleLock(entityID, dayPlanID)
	})
	return cs != nil, err
}

func (s *Store) ClearDay(ctx context.Context, tripID, dayPlanID string) (bool, error) {
	cs, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		return st.ClearDay(dayPlanID)
	})
	return cs != nil, err
}

func (s *Store) InitializeDayPlans(ctx context.Context, tripID string) (bool, error) {
	cs, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		return st.InitializeDayPlans(st.Trip)
	})
	return cs != nil, err
}

func (s *Store) UpdateDayPlanMeta(ctx context.Context, tripID, dayPlanID string, theme, notes *string) (bool, error) {
	cs, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		return st.UpdateDayPlanMeta(dayPlanID, theme, notes)
	})
	return cs != nil, err
}

// --- entity lifecycle ------------------------------------------------------

// PlaceUpdate carries the editable fields of a place. Schedule state is
// intentionally absent: a CRUD edit can never unschedule an entity.
type PlaceUpdate struct {
	Name              *string   `json:"name,omitempty"`
	Description       *string   `json:"description,omitempty"`
	Address           *string   `json:"address,omitempty"`
	City              *string   `json:"city,omitempty"`
	Website           *string   `json:"website,omitempty"`
	Categories        *[]string `json:"categories,omitempty"`
	EstimatedDuration *int      `json:"estimated_duration,omitempty"`
	Cost              *float64  `json:"cost,omitempty"`
	Tip               *string   `json:"tip,omitempty"`
	Notes             *string   `json:"notes,omitempty"`
}

type TransportUpdate struct {
	Type            *models.TransportType `json:"type,omitempty"`
	From            *string               `json:"from,omitempty"`
	To              *string               `json:"to,omitempty"`
	DepartureTime   *string               `json:"departure_time,omitempty"`
	DurationMinutes *int                  `json:"duration_minutes,omitempty"`
	Cost            *float64              `json:"cost,omitempty"`
	Notes           *string               `json:"notes,omitempty"`
}

func (s *Store) CreatePlace(ctx context.Context, place models.Place) error {
	_, err := s.withTrip(ctx, place.TripID, func(st *TripState) *models.ChangeSet {
		p := place
		st.Places[p.PlaceID] = &p
		cs := st.newChangeSet()
		st.snapshotEntity(models.PlaceRef(p.PlaceID), cs)
		return cs
	})
	return err
}

func (s *Store) UpdatePlace(ctx context.Context, tripID, placeID string, upd PlaceUpdate) (bool, error) {
	cs, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		p := st.Places[placeID]
		if p == nil {
			return nil
		}
		applyString(&p.Name, upd.Name)
		applyString(&p.Description, upd.Description)
		applyString(&p.Address, upd.Address)
		applyString(&p.City, upd.City)
		applyString(&p.Website, upd.Website)
		if upd.Categories != nil {
			p.Categories = slices.Clone(*upd.Categories)
		}
		if upd.EstimatedDuration != nil {
			p.EstimatedDuration = *upd.EstimatedDuration
		}
		if upd.Cost != nil {
			p.Cost = *upd.Cost
		}
		applyString(&p.Tip, upd.Tip)
		applyString(&p.Notes, upd.Notes)

		cs := st.newChangeSet()
		st.snapshotEntity(models.PlaceRef(placeID), cs)
		return cs
	})
	return cs != nil, err
}

// DeletePlace prunes the entity's placements from every day, then drops the
// record.
func (s *Store) DeletePlace(ctx context.Context, tripID, placeID string) (bool, error) {
	cs, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		if st.Places[placeID] == nil {
			return nil
		}
		cs := st.PruneEntity(models.PlaceRef(placeID))
		if cs == nil {
			cs = st.newChangeSet()
		}
		// the prune snapshot of the entity is obsolete once it is deleted
		cs.Places = nil
		cs.DeletedPlaceIDs = append(cs.DeletedPlaceIDs, placeID)
		delete(st.Places, placeID)
		return cs
	})
	return cs != nil, err
}

func (s *Store) CreateTransport(ctx context.Context, transport models.Transport) error {
	_, err := s.withTrip(ctx, transport.TripID, func(st *TripState) *models.ChangeSet {
		t := transport
		st.Transports[t.TransportID] = &t
		cs := st.newChangeSet()
		st.snapshotEntity(models.TransportRef(t.TransportID), cs)
		return cs
	})
	return err
}

func (s *Store) UpdateTransport(ctx context.Context, tripID, transportID string, upd TransportUpdate) (bool, error) {
	cs, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		t := st.Transports[transportID]
		if t == nil {
			return nil
		}
		if upd.Type != nil {
			t.Type = *upd.Type
		}
		applyString(&t.From, upd.From)
		applyString(&t.To, upd.To)
		applyString(&t.DepartureTime, upd.DepartureTime)
		if upd.DurationMinutes != nil {
			t.DurationMinutes = *upd.DurationMinutes
		}
		if upd.Cost != nil {
			t.Cost = *upd.Cost
		}
		applyString(&t.Notes, upd.Notes)

		cs := st.newChangeSet()
		st.snapshotEntity(models.TransportRef(transportID), cs)
		return cs
	})
	return cs != nil, err
}

func (s *Store) DeleteTransport(ctx context.Context, tripID, transportID string) (bool, error) {
	cs, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		if st.Transports[transportID] == nil {
			return nil
		}
		cs := st.PruneEntity(models.TransportRef(transportID))
		if cs == nil {
			cs = st.newChangeSet()
		}
		cs.Transports = nil
		cs.DeletedTransportIDs = append(cs.DeletedTransportIDs, transportID)
		delete(st.Transports, transportID)
		return cs
	})
	return cs != nil, err
}

// PurgeTrip emits per-record deletion events for everything the trip owns and
// drops the in-memory state; the sync worker removes the documents. The
// caller deletes the trip record itself.
func (s *Store) PurgeTrip(ctx context.Context, tripID string) error {
	_, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		cs := st.newChangeSet()
		for _, dp := range st.DayPlans {
			cs.DeletedDayPlanIDs = append(cs.DeletedDayPlanIDs, dp.DayPlanID)
		}
		for id := range st.Places {
			cs.DeletedPlaceIDs = append(cs.DeletedPlaceIDs, id)
		}
		for id := range st.Transports {
			cs.DeletedTransportIDs = append(cs.DeletedTransportIDs, id)
		}
		st.DayPlans = []*models.DayPlan{}
		st.Places = make(map[string]*models.Place)
		st.Transports = make(map[string]*models.Transport)
		return cs
	})
	s.Evict(tripID)
	return err
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// --- reads -----------------------------------------------------------------

// DayPlans returns the trip's day plans sorted by date, as deep copies.
func (s *Store) DayPlans(ctx context.Context, tripID string) ([]models.DayPlan, error) {
	var out []models.DayPlan
	_, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		out = make([]models.DayPlan, 0, len(st.DayPlans))
		for _, dp := range st.DayPlans {
			out = append(out, dp.Clone())
		}
		return nil
	})
	return out, err
}

// Pool returns the unscheduled entities (the bucket list).
func (s *Store) Pool(ctx context.Context, tripID string) ([]models.Place, []models.Transport, error) {
	var places []models.Place
	var transports []models.Transport
	_, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		places = []models.Place{}
		transports = []models.Transport{}
		for _, p := range st.Places {
			if p.ScheduleStatus == models.Unscheduled {
				places = append(places, *p)
			}
		}
		for _, t := range st.Transports {
			if t.ScheduleStatus == models.Unscheduled {
				transports = append(transports, *t)
			}
		}
		return nil
	})
	sort.Slice(places, func(i, j int) bool { return places[i].CreatedAt.Before(places[j].CreatedAt) })
	sort.Slice(transports, func(i, j int) bool { return transports[i].CreatedAt.Before(transports[j].CreatedAt) })
	return places, transports, err
}

// PlacesForTrip returns every place of the trip with live schedule state.
func (s *Store) PlacesForTrip(ctx context.Context, tripID string) ([]models.Place, error) {
	var out []models.Place
	_, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		out = make([]models.Place, 0, len(st.Places))
		for _, p := range st.Places {
			out = append(out, *p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func (s *Store) TransportsForTrip(ctx context.Context, tripID string) ([]models.Transport, error) {
	var out []models.Transport
	_, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		out = make([]models.Transport, 0, len(st.Transports))
		for _, t := range st.Transports {
			out = append(out, *t)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

// Trip returns the trip record backing a hydrated state.
func (s *Store) Trip(ctx context.Context, tripID string) (models.Trip, error) {
	var trip models.Trip
	_, err := s.withTrip(ctx, tripID, func(st *TripState) *models.ChangeSet {
		trip = st.Trip
		return nil
	})
	return trip, err
}

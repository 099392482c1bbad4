package planner

import (
	"testing"

	"wayfare/models"
)

func newTestState(t *testing.T) *TripState {
	t.Helper()
	trip := models.Trip{
		TripID:    "trip1",
		Name:      "Kansai",
		StartDate: "2026-01-01",
		EndDate:   "2026-01-03",
	}
	s := NewTripState(trip)
	if cs := s.InitializeDayPlans(trip); cs == nil {
		t.Fatal("InitializeDayPlans returned nil on fresh state")
	}
	return s
}

func addPlace(s *TripState, id string, categories ...string) {
	s.Places[id] = &models.Place{
		PlaceID:         id,
		TripID:          s.Trip.TripID,
		Name:            "place " + id,
		Categories:      categories,
		ScheduleStatus:  models.Unscheduled,
		ScheduledDayIDs: []string{},
	}
}

func addTransport(s *TripState, id string) {
	s.Transports[id] = &models.Transport{
		TransportID:     id,
		TripID:          s.Trip.TripID,
		Type:            models.TransportTrain,
		From:            "A",
		To:              "B",
		ScheduleStatus:  models.Unscheduled,
		ScheduledDayIDs: []string{},
	}
}

func mustHoldInvariants(t *testing.T, s *TripState) {
	t.Helper()
	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

func TestInitializeDayPlans(t *testing.T) {
	s := newTestState(t)

	if len(s.DayPlans) != 3 {
		t.Fatalf("expected 3 day plans, got %d", len(s.DayPlans))
	}
	wantDates := []string{"2026-01-01", "2026-01-02", "2026-01-03"}
	for i, dp := range s.DayPlans {
		if dp.Date != wantDates[i] {
			t.Errorf("day %d: date = %s, want %s", i, dp.Date, wantDates[i])
		}
		if dp.Items == nil || len(dp.Items) != 0 {
			t.Errorf("day %d: expected empty items slice, got %#v", i, dp.Items)
		}
		if dp.TripID != "trip1" {
			t.Errorf("day %d: tripID = %s", i, dp.TripID)
		}
	}

	// second call is a no-op
	if cs := s.InitializeDayPlans(s.Trip); cs != nil {
		t.Error("InitializeDayPlans on populated state should be a no-op")
	}
	if len(s.DayPlans) != 3 {
		t.Errorf("day plan count changed on repeat init: %d", len(s.DayPlans))
	}
}

func TestScheduleIntoMorning(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID

	cs := s.Schedule(models.PlaceRef("p1"), d1, 0, models.Morning)
	if cs == nil {
		t.Fatal("Schedule rejected a valid placement")
	}

	dp := s.DayPlans[0]
	if len(dp.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(dp.Items))
	}
	it := dp.Items[0]
	if it.PlaceID != "p1" || it.Order != 0 || it.TimeOfDay != models.Morning {
		t.Errorf("unexpected item: %+v", it)
	}

	p := s.Places["p1"]
	if p.ScheduleStatus != models.Scheduled {
		t.Errorf("status = %s, want scheduled", p.ScheduleStatus)
	}
	if len(p.ScheduledDayIDs) != 1 || p.ScheduledDayIDs[0] != d1 {
		t.Errorf("scheduledDayIds = %v, want [%s]", p.ScheduledDayIDs, d1)
	}
	mustHoldInvariants(t, s)
}

func TestScheduleRejectsTransportInMealSlot(t *testing.T) {
	s := newTestState(t)
	addTransport(s, "t1")
	d1 := s.DayPlans[0].DayPlanID

	if cs := s.Schedule(models.TransportRef("t1"), d1, 0, models.Lunch); cs != nil {
		t.Fatal("transport scheduled into lunch slot")
	}
	if len(s.DayPlans[0].Items) != 0 {
		t.Error("day changed by rejected schedule")
	}
	if s.Transports["t1"].ScheduleStatus != models.Unscheduled {
		t.Error("transport status changed by rejected schedule")
	}
	mustHoldInvariants(t, s)
}

func TestScheduleRejectsOccupiedMealSlot(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p2", models.CategoryRestaurant)
	addPlace(s, "p3", models.CategoryRestaurant)
	d1 := s.DayPlans[0].DayPlanID

	if cs := s.Schedule(models.PlaceRef("p2"), d1, 0, models.Lunch); cs == nil {
		t.Fatal("first restaurant rejected from empty lunch slot")
	}
	if cs := s.Schedule(models.PlaceRef("p3"), d1, 0, models.Lunch); cs != nil {
		t.Fatal("second restaurant accepted into occupied lunch slot")
	}

	lunch := s.DayPlans[0].SectionItems(models.Lunch)
	if len(lunch) != 1 || lunch[0].PlaceID != "p2" {
		t.Errorf("lunch section = %+v, want only p2", lunch)
	}
	if s.Places["p3"].ScheduleStatus != models.Unscheduled {
		t.Error("p3 status changed by rejected schedule")
	}
	mustHoldInvariants(t, s)
}

func TestScheduleRejectsNonRestaurantInMealSlot(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID

	if cs := s.Schedule(models.PlaceRef("p1"), d1, 0, models.Dinner); cs != nil {
		t.Fatal("non-restaurant place accepted into dinner slot")
	}
	mustHoldInvariants(t, s)
}

func TestScheduleDuplicateInSameDayIsNoOp(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID

	s.Schedule(models.PlaceRef("p1"), d1, 0, models.Morning)
	if cs := s.Schedule(models.PlaceRef("p1"), d1, 0, models.Afternoon); cs != nil {
		t.Fatal("duplicate schedule into same day accepted")
	}
	if len(s.DayPlans[0].Items) != 1 {
		t.Errorf("item count = %d, want 1", len(s.DayPlans[0].Items))
	}
	mustHoldInvariants(t, s)
}

func TestScheduleUnknownTargetsAreNoOps(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID

	if cs := s.Schedule(models.PlaceRef("ghost"), d1, 0, models.Morning); cs != nil {
		t.Error("schedule of unknown entity accepted")
	}
	if cs := s.Schedule(models.PlaceRef("p1"), "no-such-day", 0, models.Morning); cs != nil {
		t.Error("schedule into unknown day accepted")
	}
	mustHoldInvariants(t, s)
}

func TestScheduleAcrossMultipleDays(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID
	d2 := s.DayPlans[1].DayPlanID

	s.Schedule(models.PlaceRef("p1"), d1, 0, models.Morning)
	s.Schedule(models.PlaceRef("p1"), d2, 0, models.Night)

	p := s.Places["p1"]
	if len(p.ScheduledDayIDs) != 2 {
		t.Fatalf("scheduledDayIds = %v, want two days", p.ScheduledDayIDs)
	}
	mustHoldInvariants(t, s)
}

func TestUnschedule(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID
	d2 := s.DayPlans[1].DayPlanID

	s.Schedule(models.PlaceRef("p1"), d1, 0, models.Morning)
	s.Schedule(models.PlaceRef("p1"), d2, 0, models.Morning)

	if cs := s.Unschedule(models.PlaceRef("p1"), d1); cs == nil {
		t.Fatal("Unschedule rejected a present placement")
	}
	if len(s.DayPlans[0].Items) != 0 {
		t.Error("item still present in cleared day")
	}
	p := s.Places["p1"]
	if p.ScheduleStatus != models.Scheduled {
		t.Error("status dropped to unscheduled while still placed in d2")
	}

	if cs := s.Unschedule(models.PlaceRef("p1"), d2); cs == nil {
		t.Fatal("second Unschedule rejected")
	}
	if p.ScheduleStatus != models.Unscheduled || len(p.ScheduledDayIDs) != 0 {
		t.Errorf("entity not back in pool: status=%s dayIDs=%v", p.ScheduleStatus, p.ScheduledDayIDs)
	}

	// absent placement is a no-op
	if cs := s.Unschedule(models.PlaceRef("p1"), d1); cs != nil {
		t.Error("Unschedule of absent placement accepted")
	}
	mustHoldInvariants(t, s)
}

func TestUnscheduleAll(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	for _, dp := range s.DayPlans {
		s.Schedule(models.PlaceRef("p1"), dp.DayPlanID, 0, models.Morning)
	}

	cs := s.UnscheduleAll(models.PlaceRef("p1"))
	if cs == nil {
		t.Fatal("UnscheduleAll rejected")
	}
	if len(cs.DayPlans) != 3 {
		t.Errorf("changed day plans = %d, want 3", len(cs.DayPlans))
	}
	p := s.Places["p1"]
	if p.ScheduleStatus != models.Unscheduled || len(p.ScheduledDayIDs) != 0 {
		t.Errorf("entity not fully unscheduled: %+v", p)
	}
	mustHoldInvariants(t, s)
}

func TestReorderInDayKeepsDenseOrder(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	addPlace(s, "p2", models.CategorySightseeing)
	addPlace(s, "p3", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID

	s.Schedule(models.PlaceRef("p1"), d1, 0, models.Morning)
	s.Schedule(models.PlaceRef("p2"), d1, 1, models.Morning)
	s.Schedule(models.PlaceRef("p3"), d1, 2, models.Morning)

	// move p3 to the front of the morning section
	if cs := s.ReorderInDay(d1, "p3", 0, models.Morning); cs == nil {
		t.Fatal("ReorderInDay rejected")
	}

	morning := s.DayPlans[0].SectionItems(models.Morning)
	got := []string{morning[0].PlaceID, morning[1].PlaceID, morning[2].PlaceID}
	want := []string{"p3", "p1", "p2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("morning order = %v, want %v", got, want)
		}
	}
	mustHoldInvariants(t, s)
}

func TestReorderMovesAcrossSections(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID

	s.Schedule(models.PlaceRef("p1"), d1, 0, models.Morning)
	if cs := s.ReorderInDay(d1, "p1", 0, models.Night); cs == nil {
		t.Fatal("cross-section reorder rejected")
	}
	if len(s.DayPlans[0].SectionItems(models.Morning)) != 0 {
		t.Error("item still in morning section")
	}
	night := s.DayPlans[0].SectionItems(models.Night)
	if len(night) != 1 || night[0].PlaceID != "p1" {
		t.Errorf("night section = %+v", night)
	}
	mustHoldInvariants(t, s)
}

func TestReorderRespectsMealSlot(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	addPlace(s, "r1", models.CategoryRestaurant)
	d1 := s.DayPlans[0].DayPlanID

	s.Schedule(models.PlaceRef("p1"), d1, 0, models.Morning)
	s.Schedule(models.PlaceRef("r1"), d1, 0, models.Lunch)

	// non-restaurant may not be dragged into lunch
	if cs := s.ReorderInDay(d1, "p1", 0, models.Lunch); cs != nil {
		t.Fatal("non-restaurant reordered into lunch slot")
	}
	// the restaurant already in the slot may be "reordered" in place
	if cs := s.ReorderInDay(d1, "r1", 0, models.Lunch); cs == nil {
		t.Fatal("in-place reorder of slot occupant rejected")
	}
	mustHoldInvariants(t, s)
}

func TestReorderPreservesLockAndTimes(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	addPlace(s, "p2", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID

	s.Schedule(models.PlaceRef("p1"), d1, 0, models.Morning)
	s.Schedule(models.PlaceRef("p2"), d1, 1, models.Morning)
	s.ToggleLock("p1", d1)
	s.DayPlans[0].Items[0].Notes = "meet at the gate"

	s.ReorderInDay(d1, "p1", 1, models.Morning)

	morning := s.DayPlans[0].SectionItems(models.Morning)
	var moved *models.DayPlanItem
	for i := range morning {
		if morning[i].PlaceID == "p1" {
			moved = &morning[i]
		}
	}
	if moved == nil {
		t.Fatal("p1 lost during reorder")
	}
	if !moved.Locked || moved.Notes != "meet at the gate" {
		t.Errorf("reorder dropped per-item state: %+v", moved)
	}
	mustHoldInvariants(t, s)
}

func TestMoveBetweenDays(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID
	d2 := s.DayPlans[1].DayPlanID

	s.Schedule(models.PlaceRef("p1"), d1, 0, models.Morning)
	if cs := s.MoveBetweenDays("p1", d1, d2, 0, models.Afternoon); cs == nil {
		t.Fatal("MoveBetweenDays rejected")
	}

	if len(s.DayPlans[0].Items) != 0 {
		t.Error("source day still holds the item")
	}
	dest := s.DayPlans[1].Items
	if len(dest) != 1 || dest[0].PlaceID != "p1" || dest[0].TimeOfDay != models.Afternoon {
		t.Errorf("dest day items = %+v", dest)
	}
	p := s.Places["p1"]
	if len(p.ScheduledDayIDs) != 1 || p.ScheduledDayIDs[0] != d2 {
		t.Errorf("scheduledDayIds = %v, want [%s]", p.ScheduledDayIDs, d2)
	}
	mustHoldInvariants(t, s)
}

func TestMoveBetweenDaysRejections(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	addPlace(s, "r1", models.CategoryRestaurant)
	addPlace(s, "r2", models.CategoryRestaurant)
	d1 := s.DayPlans[0].DayPlanID
	d2 := s.DayPlans[1].DayPlanID

	s.Schedule(models.PlaceRef("p1"), d1, 0, models.Morning)
	s.Schedule(models.PlaceRef("p1"), d2, 0, models.Morning)

	// destination already holds the entity
	if cs := s.MoveBetweenDays("p1", d1, d2, 0, models.Morning); cs != nil {
		t.Error("move into a day already holding the entity accepted")
	}
	// meal slot occupied at destination
	s.Schedule(models.PlaceRef("r1"), d2, 0, models.Lunch)
	s.Schedule(models.PlaceRef("r2"), d1, 0, models.Lunch)
	if cs := s.MoveBetweenDays("r2", d1, d2, 0, models.Lunch); cs != nil {
		t.Error("move into occupied lunch slot accepted")
	}
	// unknown source item
	if cs := s.MoveBetweenDays("ghost", d1, d2, 0, models.Morning); cs != nil {
		t.Error("move of unknown entity accepted")
	}
	mustHoldInvariants(t, s)
}

func TestMoveSameDayDegradesToReorder(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID

	s.Schedule(models.PlaceRef("p1"), d1, 0, models.Morning)
	if cs := s.MoveBetweenDays("p1", d1, d1, 0, models.Night); cs == nil {
		t.Fatal("same-day move rejected")
	}
	if s.DayPlans[0].Items[0].TimeOfDay != models.Night {
		t.Error("same-day move did not change section")
	}
	p := s.Places["p1"]
	if len(p.ScheduledDayIDs) != 1 || p.ScheduledDayIDs[0] != d1 {
		t.Errorf("scheduledDayIds disturbed by same-day move: %v", p.ScheduledDayIDs)
	}
	mustHoldInvariants(t, s)
}

func TestToggleLock(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID

	s.Schedule(models.PlaceRef("p1"), d1, 0, models.Morning)
	if cs := s.ToggleLock("p1", d1); cs == nil {
		t.Fatal("ToggleLock rejected")
	}
	if !s.DayPlans[0].Items[0].Locked {
		t.Error("item not locked after toggle")
	}
	s.ToggleLock("p1", d1)
	if s.DayPlans[0].Items[0].Locked {
		t.Error("item still locked after second toggle")
	}
	if cs := s.ToggleLock("ghost", d1); cs != nil {
		t.Error("toggle of unknown entity accepted")
	}
	mustHoldInvariants(t, s)
}

func TestClearDaySkipsLocked(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	addPlace(s, "p4", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID

	s.Schedule(models.PlaceRef("p1"), d1, 0, models.Morning)
	s.Schedule(models.PlaceRef("p4"), d1, 1, models.Morning)
	s.ToggleLock("p1", d1)

	if cs := s.ClearDay(d1); cs == nil {
		t.Fatal("ClearDay rejected")
	}

	items := s.DayPlans[0].Items
	if len(items) != 1 || items[0].PlaceID != "p1" {
		t.Fatalf("surviving items = %+v, want only locked p1", items)
	}
	if items[0].Order != 0 {
		t.Errorf("survivor order = %d, want dense renumber to 0", items[0].Order)
	}
	if len(s.Places["p4"].ScheduledDayIDs) != 0 {
		t.Errorf("p4 scheduledDayIds = %v, want empty", s.Places["p4"].ScheduledDayIDs)
	}
	if s.Places["p1"].ScheduleStatus != models.Scheduled {
		t.Error("locked survivor lost scheduled status")
	}

	// all-locked day: nothing removable, no-op
	if cs := s.ClearDay(d1); cs != nil {
		t.Error("ClearDay with only locked items should be a no-op")
	}
	mustHoldInvariants(t, s)
}

func TestClearEmptyDayIsNoOp(t *testing.T) {
	s := newTestState(t)
	if cs := s.ClearDay(s.DayPlans[0].DayPlanID); cs != nil {
		t.Error("ClearDay on empty day accepted")
	}
}

func TestPruneEntityRemovesEveryPlacement(t *testing.T) {
	s := newTestState(t)
	addTransport(s, "t1")
	d1 := s.DayPlans[0].DayPlanID
	d2 := s.DayPlans[1].DayPlanID

	s.Schedule(models.TransportRef("t1"), d1, 0, models.Morning)
	s.Schedule(models.TransportRef("t1"), d2, 0, models.Night)

	if cs := s.PruneEntity(models.TransportRef("t1")); cs == nil {
		t.Fatal("PruneEntity rejected")
	}
	for i, dp := range s.DayPlans {
		for _, it := range dp.Items {
			if it.RefersTo("t1") {
				t.Errorf("day %d still references pruned entity", i)
			}
		}
	}
	mustHoldInvariants(t, s)
}

func TestUpdateDayPlanMeta(t *testing.T) {
	s := newTestState(t)
	d1 := s.DayPlans[0].DayPlanID

	theme := "temples"
	if cs := s.UpdateDayPlanMeta(d1, &theme, nil); cs == nil {
		t.Fatal("UpdateDayPlanMeta rejected")
	}
	if s.DayPlans[0].Theme != "temples" {
		t.Errorf("theme = %q", s.DayPlans[0].Theme)
	}
	notes := "book tickets ahead"
	s.UpdateDayPlanMeta(d1, nil, &notes)
	if s.DayPlans[0].Theme != "temples" || s.DayPlans[0].Notes != "book tickets ahead" {
		t.Errorf("meta = %q / %q", s.DayPlans[0].Theme, s.DayPlans[0].Notes)
	}
	if cs := s.UpdateDayPlanMeta("no-such-day", &theme, nil); cs != nil {
		t.Error("meta update on unknown day accepted")
	}
}

func TestScheduleDefaultsUnknownTimeOfDay(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID

	if cs := s.Schedule(models.PlaceRef("p1"), d1, 0, models.TimeOfDay("brunch")); cs == nil {
		t.Fatal("schedule with unknown timeOfDay rejected")
	}
	if s.DayPlans[0].Items[0].TimeOfDay != models.Morning {
		t.Errorf("timeOfDay = %s, want morning default", s.DayPlans[0].Items[0].TimeOfDay)
	}
	mustHoldInvariants(t, s)
}

func TestSpliceClampsSectionIndex(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	addPlace(s, "p2", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID

	s.Schedule(models.PlaceRef("p1"), d1, 99, models.Morning)
	s.Schedule(models.PlaceRef("p2"), d1, -5, models.Morning)

	morning := s.DayPlans[0].SectionItems(models.Morning)
	if len(morning) != 2 || morning[0].PlaceID != "p2" || morning[1].PlaceID != "p1" {
		t.Errorf("morning = %+v, want p2 then p1", morning)
	}
	mustHoldInvariants(t, s)
}

func TestChangeSetCarriesDeepCopies(t *testing.T) {
	s := newTestState(t)
	addPlace(s, "p1", models.CategorySightseeing)
	d1 := s.DayPlans[0].DayPlanID

	cs := s.Schedule(models.PlaceRef("p1"), d1, 0, models.Morning)
	if cs == nil || len(cs.DayPlans) != 1 || len(cs.Places) != 1 {
		t.Fatalf("unexpected change set: %+v", cs)
	}

	// mutating the live state must not leak into the snapshot
	s.DayPlans[0].Items[0].Notes = "mutated"
	if cs.DayPlans[0].Items[0].Notes == "mutated" {
		t.Error("change set shares item storage with live state")
	}
	s.Places["p1"].ScheduledDayIDs[0] = "other"
	if cs.Places[0].ScheduledDayIDs[0] == "other" {
		t.Error("change set shares scheduledDayIds with live state")
	}
}

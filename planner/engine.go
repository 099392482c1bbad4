package planner

import (
	"slices"

	"wayfare/models"
	"wayfare/utils"
)

// The scheduling engine: every operation is synchronous and total. A nil
// ChangeSet means the operation was rejected or was a no-op and the state is
// untouched; that covers both structural misses (drag target vanished) and
// slot-constraint violations, which the UI treats as a snapped-back gesture.

// renumber rewrites Order to the dense permutation 0..n-1.
func renumber(items []models.DayPlanItem) {
	for i := range items {
		items[i].Order = i
	}
}

// spliceIntoSection inserts item at the local index within its time-of-day
// section, keeping every other section's relative order, then renumbers.
func spliceIntoSection(dp *models.DayPlan, item models.DayPlanItem, sectionIndex int) {
	var section, others []models.DayPlanItem
	for _, it := range dp.Items {
		if it.TimeOfDay == item.TimeOfDay {
			section = append(section, it)
		} else {
			others = append(others, it)
		}
	}

	if sectionIndex < 0 {
		sectionIndex = 0
	}
	if sectionIndex > len(section) {
		sectionIndex = len(section)
	}
	section = slices.Insert(section, sectionIndex, item)

	dp.Items = append(others, section...)
	renumber(dp.Items)
}

// removeFromDay deletes the placement of entityID from dp, renumbering the
// rest. Returns the removed item and whether one was found.
func removeFromDay(dp *models.DayPlan, entityID string) (models.DayPlanItem, bool) {
	for i, it := range dp.Items {
		if it.RefersTo(entityID) {
			dp.Items = slices.Delete(dp.Items, i, i+1)
			renumber(dp.Items)
			return it, true
		}
	}
	return models.DayPlanItem{}, false
}

// mealSlotAllows gates insertions into lunch/dinner: only a restaurant place,
// and only if the slot is empty ignoring the entity being moved into it.
func (s *TripState) mealSlotAllows(dp *models.DayPlan, timeOfDay models.TimeOfDay, ref models.EntityRef) bool {
	if !timeOfDay.IsMealSlot() {
		return true
	}
	if ref.Type != models.EntityPlace {
		return false
	}
	p := s.Places[ref.ID]
	if p == nil || !p.IsRestaurant() {
		return false
	}
	for _, it := range dp.Items {
		if it.TimeOfDay == timeOfDay && !it.RefersTo(ref.ID) {
			return false
		}
	}
	return true
}

// Schedule places an entity into a day at the local position within the given
// time-of-day section. Scheduling an entity already present in that day is a
// no-op.
func (s *TripState) Schedule(ref models.EntityRef, dayPlanID string, sectionIndex int, timeOfDay models.TimeOfDay) *models.ChangeSet {
	timeOfDay = models.NormalizeTimeOfDay(timeOfDay)

	dp := s.dayPlan(dayPlanID)
	if dp == nil || !s.entityExists(ref) {
		return nil
	}
	for _, it := range dp.Items {
		if it.RefersTo(ref.ID) {
			return nil
		}
	}
	if !s.mealSlotAllows(dp, timeOfDay, ref) {
		return nil
	}

	spliceIntoSection(dp, models.NewDayPlanItem(ref, timeOfDay), sectionIndex)
	s.addScheduledDay(ref, dayPlanID)

	cs := s.newChangeSet()
	s.snapshotDayPlan(dp, cs)
	s.snapshotEntity(ref, cs)
	return cs
}

// Unschedule removes the entity's placement from one day only.
func (s *TripState) Unschedule(ref models.EntityRef, dayPlanID string) *models.ChangeSet {
	dp := s.dayPlan(dayPlanID)
	if dp == nil {
		return nil
	}
	if _, ok := removeFromDay(dp, ref.ID); !ok {
		return nil
	}
	s.removeScheduledDay(ref, dayPlanID)

	cs := s.newChangeSet()
	s.snapshotDayPlan(dp, cs)
	s.snapshotEntity(ref, cs)
	return cs
}

// UnscheduleAll removes the entity's placement from every day of the trip.
func (s *TripState) UnscheduleAll(ref models.EntityRef) *models.ChangeSet {
	cs := s.newChangeSet()
	for _, dp := range s.DayPlans {
		if _, ok := removeFromDay(dp, ref.ID); ok {
			s.removeScheduledDay(ref, dp.DayPlanID)
			s.snapshotDayPlan(dp, cs)
		}
	}
	if len(cs.DayPlans) == 0 {
		return nil
	}
	s.snapshotEntity(ref, cs)
	return cs
}

// ReorderInDay moves an already-placed item to a new section and/or position
// within the same day.
func (s *TripState) ReorderInDay(dayPlanID, entityID string, destSectionIndex int, timeOfDay models.TimeOfDay) *models.ChangeSet {
	timeOfDay = models.NormalizeTimeOfDay(timeOfDay)

	dp := s.dayPlan(dayPlanID)
	if dp == nil {
		return nil
	}
	var found bool
	var ref models.EntityRef
	for _, it := range dp.Items {
		if it.RefersTo(entityID) {
			ref = it.Ref()
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	if !s.mealSlotAllows(dp, timeOfDay, ref) {
		return nil
	}

	item, _ := removeFromDay(dp, entityID)
	item.TimeOfDay = timeOfDay
	spliceIntoSection(dp, item, destSectionIndex)

	cs := s.newChangeSet()
	s.snapshotDayPlan(dp, cs)
	return cs
}

// MoveBetweenDays relocates a placement from one day to another atomically;
// the entity ends up scheduled in exactly the destination day. A move whose
// source and destination coincide degrades to a same-day reorder.
func (s *TripState) MoveBetweenDays(entityID, sourceDayID, destDayID string, destSectionIndex int, timeOfDay models.TimeOfDay) *models.ChangeSet {
	if sourceDayID == destDayID {
		return s.ReorderInDay(sourceDayID, entityID, destSectionIndex, timeOfDay)
	}
	timeOfDay = models.NormalizeTimeOfDay(timeOfDay)

	src := s.dayPlan(sourceDayID)
	dest := s.dayPlan(destDayID)
	if src == nil || dest == nil {
		return nil
	}
	var moved *models.DayPlanItem
	for i := range src.Items {
		if src.Items[i].RefersTo(entityID) {
			moved = &src.Items[i]
			break
		}
	}
	if moved == nil {
		return nil
	}
	ref := moved.Ref()
	if !s.mealSlotAllows(dest, timeOfDay, ref) {
		return nil
	}
	// destination may not already hold this entity
	for _, it := range dest.Items {
		if it.RefersTo(entityID) {
			return nil
		}
	}

	item, _ := removeFromDay(src, entityID)
	item.TimeOfDay = timeOfDay
	spliceIntoSection(dest, item, destSectionIndex)

	s.removeScheduledDay(ref, sourceDayID)
	s.addScheduledDay(ref, destDayID)

	cs := s.newChangeSet()
	s.snapshotDayPlan(src, cs)
	s.snapshotDayPlan(dest, cs)
	s.snapshotEntity(ref, cs)
	return cs
}

// ToggleLock flips the locked flag of the placement referencing entityID.
// Locking only gates ClearDay; it never affects ordering or status.
func (s *TripState) ToggleLock(entityID, dayPlanID string) *models.ChangeSet {
	dp := s.dayPlan(dayPlanID)
	if dp == nil {
		return nil
	}
	for i := range dp.Items {
		if dp.Items[i].RefersTo(entityID) {
			dp.Items[i].Locked = !dp.Items[i].Locked
			cs := s.newChangeSet()
			s.snapshotDayPlan(dp, cs)
			return cs
		}
	}
	return nil
}

// ClearDay removes every unlocked placement from the day, renumbering the
// locked survivors densely.
func (s *TripState) ClearDay(dayPlanID string) *models.ChangeSet {
	dp := s.dayPlan(dayPlanID)
	if dp == nil {
		return nil
	}

	var kept, removed []models.DayPlanItem
	for _, it := range dp.Items {
		if it.Locked {
			kept = append(kept, it)
		} else {
			removed = append(removed, it)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	if kept == nil {
		kept = []models.DayPlanItem{}
	}
	dp.Items = kept
	renumber(dp.Items)

	cs := s.newChangeSet()
	s.snapshotDayPlan(dp, cs)
	for _, it := range removed {
		ref := it.Ref()
		s.removeScheduledDay(ref, dayPlanID)
		s.snapshotEntity(ref, cs)
	}
	return cs
}

// InitializeDayPlans creates one empty day plan per calendar date of the trip.
// Idempotent: a no-op if the trip already has any day plans; it does not
// reconcile when trip dates change later.
func (s *TripState) InitializeDayPlans(trip models.Trip) *models.ChangeSet {
	if len(s.DayPlans) > 0 {
		return nil
	}

	cs := s.newChangeSet()
	for _, date := range TripDateRange(trip.StartDate, trip.EndDate) {
		dp := &models.DayPlan{
			DayPlanID: utils.GetUUID(),
			TripID:    trip.TripID,
			Date:      date,
			Items:     []models.DayPlanItem{},
		}
		s.DayPlans = append(s.DayPlans, dp)
		s.snapshotDayPlan(dp, cs)
	}
	s.sortDayPlans()
	return cs
}

// PruneEntity drops every placement of an entity that is being deleted. The
// caller removes the entity record itself.
func (s *TripState) PruneEntity(ref models.EntityRef) *models.ChangeSet {
	return s.UnscheduleAll(ref)
}

// UpdateDayPlanMeta sets theme/notes; nil leaves a field untouched. Free text
// only, irrelevant to scheduling invariants.
func (s *TripState) UpdateDayPlanMeta(dayPlanID string, theme, notes *string) *models.ChangeSet {
	dp := s.dayPlan(dayPlanID)
	if dp == nil {
		return nil
	}
	if theme != nil {
		dp.Theme = *theme
	}
	if notes != nil {
		dp.Notes = *notes
	}
	cs := s.newChangeSet()
	s.snapshotDayPlan(dp, cs)
	return cs
}

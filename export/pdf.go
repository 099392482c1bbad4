package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"wayfare/globals"
	"wayfare/models"
	"wayfare/planner"
	"wayfare/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

type Service struct {
	store *planner.Store
}

func NewService(store *planner.Store) *Service {
	return &Service{store: store}
}

var sectionLabels = map[models.TimeOfDay]string{
	models.Morning:   "Morning",
	models.Lunch:     "Lunch",
	models.Afternoon: "Afternoon",
	models.Dinner:    "Dinner",
	models.Night:     "Night",
}

func formatDayLabel(isoDate string) string {
	d, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}
	return d.Format("Monday, Jan 02")
}

// GET /api/trips/:tripid/print — renders the day-by-day itinerary as an A4
// PDF with a share QR code.
func (svc *Service) PrintItinerary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tripID := ps.ByName("tripid")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	trip, err := svc.store.Trip(ctx, tripID)
	if err != nil {
		if errors.Is(err, planner.ErrTripNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading trip")
		return
	}

	dayPlans, err := svc.store.DayPlans(ctx, tripID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading day plans")
		return
	}
	placeList, err := svc.store.PlacesForTrip(ctx, tripID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading places")
		return
	}
	transportList, err := svc.store.TransportsForTrip(ctx, tripID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading transports")
		return
	}

	placesByID := make(map[string]models.Place, len(placeList))
	for _, p := range placeList {
		placesByID[p.PlaceID] = p
	}
	transportsByID := make(map[string]models.Transport, len(transportList))
	for _, t := range transportList {
		transportsByID[t.TransportID] = t
	}

	// Share QR pointing at the trip's planner view
	shareURL := fmt.Sprintf("%s/trips/%s/planner", globals.EnvOr("APP_BASE_URL", "http://localhost:3000"), tripID)
	qrPNG, err := qrcode.Encode(shareURL, qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, trip.Name)
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	if trip.Destination != "" {
		pdf.Cell(0, 7, trip.Destination)
		pdf.Ln(7)
	}
	pdf.Cell(0, 7, fmt.Sprintf("%s - %s", trip.StartDate, trip.EndDate))
	pdf.Ln(10)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("share-qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("share-qr", 165, 10, 32, 32, false, imageOpts, 0, "")

	for _, dp := range dayPlans {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 9, formatDayLabel(dp.Date))
		pdf.Ln(9)

		if dp.Theme != "" {
			pdf.SetFont("Arial", "I", 10)
			pdf.Cell(0, 6, dp.Theme)
			pdf.Ln(6)
		}

		if len(dp.Items) == 0 {
			pdf.SetFont("Arial", "", 10)
			pdf.Cell(0, 6, "Nothing planned")
			pdf.Ln(8)
			continue
		}

		for _, section := range models.TimeOfDayOrder {
			items := dp.SectionItems(section)
			if len(items) == 0 {
				continue
			}
			pdf.SetFont("Arial", "B", 10)
			pdf.Cell(0, 6, sectionLabels[section])
			pdf.Ln(6)

			pdf.SetFont("Arial", "", 10)
			for _, it := range items {
				line := itemLine(it, placesByID, transportsByID)
				if it.Locked {
					line += "  [locked]"
				}
				pdf.Cell(0, 6, "  - "+line)
				pdf.Ln(6)
			}
		}

		if dp.Notes != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, "Notes: "+dp.Notes, "", "L", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=itinerary-"+tripID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func itemLine(it models.DayPlanItem, placesByID map[string]models.Place, transportsByID map[string]models.Transport) string {
	ref := it.Ref()
	switch ref.Type {
	case models.EntityTransport:
		if t, ok := transportsByID[ref.ID]; ok {
			return fmt.Sprintf("%s: %s to %s", t.Type, t.From, t.To)
		}
	case models.EntityPlace:
		if p, ok := placesByID[ref.ID]; ok {
			return p.Name
		}
	}
	return ref.ID
}

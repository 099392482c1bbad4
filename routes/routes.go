package routes

import (
	"wayfare/export"
	"wayfare/live"
	"wayfare/middleware"
	"wayfare/packing"
	"wayfare/places"
	"wayfare/planner"
	"wayfare/ratelim"
	"wayfare/transport"
	"wayfare/trips"

	"github.com/julienschmidt/httprouter"
)

func AddTripRoutes(router *httprouter.Router, svc *trips.Service, rl *ratelim.RateLimiter) {
	router.POST("/api/trips", rl.Limit(middleware.Authenticate(svc.CreateTrip)))
	router.GET("/api/trips", middleware.Authenticate(svc.GetTrips))
	router.GET("/api/trips/:tripid", middleware.Authenticate(svc.GetTrip))
	router.PUT("/api/trips/:tripid", rl.Limit(middleware.Authenticate(svc.UpdateTrip)))
	router.DELETE("/api/trips/:tripid", rl.Limit(middleware.Authenticate(svc.DeleteTrip)))
}

func AddPlaceRoutes(router *httprouter.Router, svc *places.Service, rl *ratelim.RateLimiter) {
	router.POST("/api/trips/:tripid/places", rl.Limit(middleware.Authenticate(svc.CreatePlace)))
	router.GET("/api/trips/:tripid/places", middleware.Authenticate(svc.GetPlaces))
	router.PUT("/api/trips/:tripid/places/:placeid", rl.Limit(middleware.Authenticate(svc.EditPlace)))
	router.DELETE("/api/trips/:tripid/places/:placeid", rl.Limit(middleware.Authenticate(svc.DeletePlace)))
}

func AddTransportRoutes(router *httprouter.Router, svc *transport.Service, rl *ratelim.RateLimiter) {
	router.POST("/api/trips/:tripid/transports", rl.Limit(middleware.Authenticate(svc.CreateTransport)))
	router.GET("/api/trips/:tripid/transports", middleware.Authenticate(svc.GetTransports))
	router.PUT("/api/trips/:tripid/transports/:transportid", rl.Limit(middleware.Authenticate(svc.EditTransport)))
	router.DELETE("/api/trips/:tripid/transports/:transportid", rl.Limit(middleware.Authenticate(svc.DeleteTransport)))
}

func AddPackingRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/trips/:tripid/packing", rl.Limit(middleware.Authenticate(packing.CreatePackingItem)))
	router.GET("/api/trips/:tripid/packing", middleware.Authenticate(packing.GetPackingList))
	router.PUT("/api/trips/:tripid/packing/:itemid/toggle", rl.Limit(middleware.Authenticate(packing.TogglePackingItem)))
	router.DELETE("/api/trips/:tripid/packing/:itemid", rl.Limit(middleware.Authenticate(packing.DeletePackingItem)))
}

func AddPlannerRoutes(router *httprouter.Router, store *planner.Store, rl *ratelim.RateLimiter) {
	router.GET("/api/planner/:tripid/dayplans", middleware.Authenticate(store.HandleGetDayPlans))
	router.GET("/api/planner/:tripid/pool", middleware.Authenticate(store.HandleGetPool))
	router.POST("/api/planner/:tripid/init", rl.Limit(middleware.Authenticate(store.HandleInitDayPlans)))
	router.POST("/api/planner/:tripid/schedule", rl.Limit(middleware.Authenticate(store.HandleSchedule)))
	router.POST("/api/planner/:tripid/unschedule", rl.Limit(middleware.Authenticate(store.HandleUnschedule)))
	router.POST("/api/planner/:tripid/reorder", rl.Limit(middleware.Authenticate(store.HandleReorder)))
	router.POST("/api/planner/:tripid/move", rl.Limit(middleware.Authenticate(store.HandleMove)))
	router.POST("/api/planner/:tripid/lock", rl.Limit(middleware.Authenticate(store.HandleToggleLock)))
	router.POST("/api/planner/:tripid/clear/:dayplanid", rl.Limit(middleware.Authenticate(store.HandleClearDay)))
	router.PUT("/api/planner/:tripid/day/:dayplanid", rl.Limit(middleware.Authenticate(store.HandleUpdateDayPlan)))
}

// The print view is the target of the share QR, so it must work without a
// login.
func AddExportRoutes(router *httprouter.Router, svc *export.Service) {
	router.GET("/api/trips/:tripid/print", middleware.OptionalAuth(svc.PrintItinerary))
}

func AddLiveRoutes(router *httprouter.Router, hub *live.Hub) {
	router.GET("/ws/trip/:tripid", middleware.Authenticate(live.WebSocketHandler(hub)))
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/Prakhar2818/NGO-APP/internal/routing"
	"github.com/Prakhar2818/NGO-APP/internal/services"
	"github.com/sirupsen/logrus"
)

// RouteHandler exposes the driving-route passthrough the map view uses.
type RouteHandler struct {
	Browse *services.BrowseService
}

func NewRouteHandler(browse *services.BrowseService) *RouteHandler {
	return &RouteHandler{Browse: browse}
}

// GetRouteHandler returns driving distance and geometry between two points.
func (h *RouteHandler) GetRouteHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	parse := func(key string) (float64, bool) {
		v, err := strconv.ParseFloat(query.Get(key), 64)
		return v, err == nil
	}

	fromLat, ok1 := parse("fromLat")
	fromLng, ok2 := parse("fromLng")
	toLat, ok3 := parse("toLat")
	toLng, ok4 := parse("toLng")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		http.Error(w, "fromLat, fromLng, toLat and toLng are required", http.StatusBadRequest)
		return
	}

	route, err := h.Browse.Route(r.Context(),
		routing.Coordinate{Lat: fromLat, Lng: fromLng},
		routing.Coordinate{Lat: toLat, Lng: toLng},
	)
	if err != nil {
		logrus.WithError(err).Warn("Route lookup failed")
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, route)
}

package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Prakhar2818/NGO-APP/internal/models"
	"github.com/Prakhar2818/NGO-APP/pkg/apperrors"
	"github.com/Prakhar2818/NGO-APP/pkg/logger"
)

// Coordinate is a latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Client calls an OSRM-compatible driving-route service. Every failure
// mode (timeout, non-2xx, malformed payload, no route) collapses into
// apperrors.ErrRouteUnavailable so callers can treat the annotation as
// strictly best-effort.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a routing client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type osrmResponse struct {
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Geometry struct {
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route returns the driving distance in kilometers and the path geometry
// between two points.
func (c *Client) Route(ctx context.Context, from, to Coordinate) (*models.RouteInfo, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		c.baseURL, from.Lng, from.Lat, to.Lng, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRouteUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Log.WithError(err).Warn("Routing request failed")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRouteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Log.WithField("status", resp.StatusCode).Warn("Routing service returned non-OK status")
		return nil, fmt.Errorf("%w: status %d", apperrors.ErrRouteUnavailable, resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		logger.Log.WithError(err).Warn("Failed to decode routing response")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRouteUnavailable, err)
	}

	if len(body.Routes) == 0 {
		return nil, fmt.Errorf("%w: no routes in response", apperrors.ErrRouteUnavailable)
	}

	route := body.Routes[0]
	return &models.RouteInfo{
		DistanceKm: route.Distance / 1000,
		Geometry:   route.Geometry.Coordinates,
	}, nil
}

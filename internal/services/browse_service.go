package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/Prakhar2818/NGO-APP/internal/models"
	"github.com/Prakhar2818/NGO-APP/internal/routing"
	"github.com/Prakhar2818/NGO-APP/pkg/logger"
)

// BrowseService matches NGOs with nearby PENDING donations. Each browse
// is a snapshot of current state: donations claimed between calls simply
// drop out of the next result set.
type BrowseService struct {
	repo   DonationStore
	routes RouteFinder
}

// NewBrowseService creates a new instance of BrowseService.
func NewBrowseService(repo DonationStore, routes RouteFinder) *BrowseService {
	return &BrowseService{
		repo:   repo,
		routes: routes,
	}
}

// BrowseDonations runs the nearest-first proximity query seeded at the
// NGO's location. When withRoute is set, each result is annotated with
// driving distance and geometry; annotation is best-effort and a failed
// routing call leaves the item unannotated rather than failing the browse.
func (s *BrowseService) BrowseDonations(ctx context.Context, lat, lng float64, filter models.BrowseFilter, withRoute bool) ([]models.BrowseDonation, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("invalid coordinates")
	}

	donations, err := s.repo.FindNearby(ctx, models.NewGeoPoint(lng, lat), filter)
	if err != nil {
		return nil, fmt.Errorf("failed to browse donations: %v", err)
	}

	if withRoute && s.routes != nil {
		s.annotateRoutes(ctx, routing.Coordinate{Lat: lat, Lng: lng}, donations)
	}

	return donations, nil
}

// annotateRoutes fills in the Route field of each result concurrently.
// Items whose routing call fails keep a nil Route.
func (s *BrowseService) annotateRoutes(ctx context.Context, from routing.Coordinate, donations []models.BrowseDonation) {
	var wg sync.WaitGroup
	for i := range donations {
		wg.Add(1)
		go func(d *models.BrowseDonation) {
			defer wg.Done()

			coords := d.Location.Coordinates
			if len(coords) != 2 {
				return
			}
			to := routing.Coordinate{Lng: coords[0], Lat: coords[1]}

			route, err := s.routes.Route(ctx, from, to)
			if err != nil {
				logger.Log.WithError(err).WithField("donation_id", d.ID.Hex()).Warn("Skipping route annotation")
				return
			}
			d.Route = route
		}(&donations[i])
	}
	wg.Wait()
}

// Route is the standalone routing passthrough used by the map view.
func (s *BrowseService) Route(ctx context.Context, from, to routing.Coordinate) (*models.RouteInfo, error) {
	return s.routes.Route(ctx, from, to)
}

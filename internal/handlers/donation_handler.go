package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Prakhar2818/NGO-APP/internal/models"
	"github.com/Prakhar2818/NGO-APP/internal/services"
	"github.com/Prakhar2818/NGO-APP/pkg/apperrors"
	"github.com/Prakhar2818/NGO-APP/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DonationHandler handles HTTP requests related to donations.
type DonationHandler struct {
	Service *services.DonationService
	Browse  *services.BrowseService
	Users   services.ActorDirectory
}

// NewDonationHandler creates a new instance of DonationHandler.
func NewDonationHandler(service *services.DonationService, browse *services.BrowseService, users services.ActorDirectory) *DonationHandler {
	return &DonationHandler{
		Service: service,
		Browse:  browse,
		Users:   users,
	}
}

// createDonationInput is the creation payload. Coordinates arrive as a
// flat lat/lng pair and are stored as a GeoJSON point.
type createDonationInput struct {
	FoodName      string    `json:"food_name"`
	Quantity      int       `json:"quantity"`
	FoodType      string    `json:"food_type"`
	PickupAddress string    `json:"pickup_address"`
	ExpiryTime    time.Time `json:"expiry_time"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func serviceError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		// Dependency failures keep their detail in the logs only.
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

// CreateDonationHandler handles the creation of a new donation.
func (h *DonationHandler) CreateDonationHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input createDonationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during donation creation")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if input.FoodName == "" || input.PickupAddress == "" {
		http.Error(w, "food_name and pickup_address are required", http.StatusBadRequest)
		return
	}
	if input.Quantity <= 0 {
		http.Error(w, "quantity must be positive", http.StatusBadRequest)
		return
	}
	if !input.ExpiryTime.After(time.Now()) {
		http.Error(w, "expiry_time must be in the future", http.StatusBadRequest)
		return
	}

	restaurantID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	donation := &models.Donation{
		FoodName:      input.FoodName,
		Quantity:      input.Quantity,
		FoodType:      input.FoodType,
		PickupAddress: input.PickupAddress,
		ExpiryTime:    input.ExpiryTime,
		Location:      models.NewGeoPoint(input.Lng, input.Lat),
	}

	created, err := h.Service.CreateDonation(r.Context(), restaurantID, donation)
	if err != nil {
		logrus.WithError(err).Error("Failed to create donation")
		serviceError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID":     claims.UserID,
		"donationID": created.ID.Hex(),
	}).Info("Donation successfully created")

	writeJSON(w, http.StatusCreated, created)
}

// UpdateDonationHandler patches a PENDING donation owned by the caller.
func (h *DonationHandler) UpdateDonationHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	donationID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid donation ID", http.StatusBadRequest)
		return
	}
	callerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	var patch models.DonationPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	updated, err := h.Service.UpdateDonation(r.Context(), donationID, callerID, &patch)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteDonationHandler removes a PENDING donation owned by the caller.
func (h *DonationHandler) DeleteDonationHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	donationID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid donation ID", http.StatusBadRequest)
		return
	}
	callerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	if err := h.Service.DeleteDonation(r.Context(), donationID, callerID); err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Donation deleted"})
}

// BrowseDonationsHandler runs the proximity browse for NGOs.
func (h *DonationHandler) BrowseDonationsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	latStr, lngStr := query.Get("lat"), query.Get("lng")
	if latStr == "" || lngStr == "" {
		http.Error(w, "lat/lng required", http.StatusBadRequest)
		return
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		http.Error(w, "Invalid lat", http.StatusBadRequest)
		return
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		http.Error(w, "Invalid lng", http.StatusBadRequest)
		return
	}

	filter := models.BrowseFilter{FoodType: query.Get("food_type")}
	if maxHours := query.Get("max_hours"); maxHours != "" {
		hours, err := strconv.Atoi(maxHours)
		if err != nil || hours <= 0 {
			http.Error(w, "Invalid max_hours", http.StatusBadRequest)
			return
		}
		filter.MaxHours = hours
	}
	withRoute := query.Get("with_route") == "true"

	donations, err := h.Browse.BrowseDonations(r.Context(), lat, lng, filter, withRoute)
	if err != nil {
		logrus.WithError(err).Error("Browse failed")
		serviceError(w, err)
		return
	}
	if donations == nil {
		donations = []models.BrowseDonation{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"donations": donations})
}

// AcceptDonationHandler is the claim endpoint. Exactly one of any number
// of concurrent callers succeeds; the rest get a 409.
func (h *DonationHandler) AcceptDonationHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	donationID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid donation ID", http.StatusBadRequest)
		return
	}
	ngoID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	donation, err := h.Service.AcceptDonation(r.Context(), donationID, ngoID)
	if err != nil {
		serviceError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"donationID": donationID.Hex(),
		"ngoID":      claims.UserID,
	}).Info("Donation accepted")

	writeJSON(w, http.StatusOK, donation)
}

// MarkPickedUpHandler completes the lifecycle for the claiming NGO.
func (h *DonationHandler) MarkPickedUpHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	donationID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid donation ID", http.StatusBadRequest)
		return
	}
	ngoID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	donation, err := h.Service.MarkPickedUp(r.Context(), donationID, ngoID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, donation)
}

// RestaurantDashboardHandler lists the caller's donations with claim
// info and the meals-saved estimate.
func (h *DonationHandler) RestaurantDashboardHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	restaurantID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	donations, err := h.Service.GetRestaurantDonations(r.Context(), restaurantID)
	if err != nil {
		serviceError(w, err)
		return
	}

	mealsSaved := 0
	type dashboardEntry struct {
		models.Donation
		NGO *models.RestaurantInfo `json:"ngo,omitempty"`
	}
	entries := make([]dashboardEntry, 0, len(donations))
	for _, donation := range donations {
		// Each donated meal feeds roughly two people.
		mealsSaved += donation.Quantity * 2

		entry := dashboardEntry{Donation: donation}
		if donation.NgoID != nil {
			if ngo, err := h.Users.GetUserByID(r.Context(), *donation.NgoID); err == nil {
				entry.NGO = &models.RestaurantInfo{ID: ngo.ID, Name: ngo.DisplayName()}
			}
		}
		entries = append(entries, entry)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_donations": len(donations),
		"meals_saved":     mealsSaved,
		"donations":       entries,
	})
}

// NGOHistoryHandler lists donations claimed by the caller, enriched with
// restaurant display metadata.
func (h *DonationHandler) NGOHistoryHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	ngoID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	donations, err := h.Service.GetNGOHistory(r.Context(), ngoID)
	if err != nil {
		serviceError(w, err)
		return
	}

	type historyEntry struct {
		models.Donation
		Restaurant *models.RestaurantInfo `json:"restaurant,omitempty"`
	}
	entries := make([]historyEntry, 0, len(donations))
	for _, donation := range donations {
		entry := historyEntry{Donation: donation}
		if restaurant, err := h.Users.GetUserByID(r.Context(), donation.RestaurantID); err == nil {
			entry.Restaurant = &models.RestaurantInfo{
				ID:      restaurant.ID,
				Name:    restaurant.DisplayName(),
				Address: restaurant.Address,
			}
		}
		entries = append(entries, entry)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"donations": entries})
}

package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hushhome/hushhome-golang/internal/models"
)

func createDemandViaAPI(t *testing.T, router *gin.Engine, token string, input map[string]interface{}) models.Demand {
	t.Helper()

	w := doRequest(t, router, http.MethodPost, "/v1/demands", token, input)
	wantStatus(t, w, http.StatusCreated)
	env := decodeEnvelope(t, w, true)

	var demand models.Demand
	if err := json.Unmarshal(env.Data["demand"], &demand); err != nil {
		t.Fatalf("decode demand: %v", err)
	}
	return demand
}

func TestMatchSweepPairsAndNotifies(t *testing.T) {
	app, router := newTestApp(t)
	owner := createUser(t, app.DB, "matchowner@example.com", models.RoleUser, models.StatusActive)
	buyer := createUser(t, app.DB, "matchbuyer@example.com", models.RoleUser, models.StatusActive)
	ownerToken := tokenFor(t, owner)
	buyerToken := tokenFor(t, buyer)

	property := createPropertyViaAPI(t, router, ownerToken, map[string]interface{}{
		"title":        "Harbour Apartment",
		"propertyType": "apartment",
		"suburb":       "Kirribilli",
		"city":         "Sydney",
		"price":        1500000,
		"bedrooms":     3,
		"bathrooms":    2,
	})

	demand := createDemandViaAPI(t, router, buyerToken, map[string]interface{}{
		"propertyType": "apartment",
		"city":         "Sydney",
		"minPrice":     1000000,
		"maxPrice":     2000000,
		"minBedrooms":  2,
	})

	// One match, visible through the buyer's brief.
	w := doRequest(t, router, http.MethodGet, fmt.Sprintf("/v1/demands/%d/matches", demand.ID), buyerToken, nil)
	wantStatus(t, w, http.StatusOK)
	env := decodeEnvelope(t, w, true)

	var matched []models.Property
	if err := json.Unmarshal(env.Data["matches"], &matched); err != nil {
		t.Fatalf("decode matches: %v", err)
	}
	if len(matched) != 1 || matched[0].ID != property.ID {
		t.Fatalf("matches = %+v, want just property %d", matched, property.ID)
	}

	// Both parties got exactly one notification.
	for _, userID := range []int64{owner, buyer} {
		var count int
		if err := app.DB.QueryRow("SELECT COUNT(*) FROM notifications WHERE user_id = ?", userID).Scan(&count); err != nil {
			t.Fatalf("count notifications: %v", err)
		}
		if count != 1 {
			t.Fatalf("user %d has %d notifications, want 1", userID, count)
		}
	}

	// Re-running the sweep records nothing new.
	if err := app.RunMatchSweep(); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	var matchCount int
	if err := app.DB.QueryRow("SELECT COUNT(*) FROM matches").Scan(&matchCount); err != nil {
		t.Fatalf("count matches: %v", err)
	}
	if matchCount != 1 {
		t.Fatalf("matches after second sweep = %d, want 1 (sweep must be idempotent)", matchCount)
	}
}

func TestMatchPredicateBounds(t *testing.T) {
	app, router := newTestApp(t)
	owner := createUser(t, app.DB, "boundsowner@example.com", models.RoleUser, models.StatusActive)
	buyer := createUser(t, app.DB, "boundsbuyer@example.com", models.RoleUser, models.StatusActive)
	createPropertyViaAPI(t, router, tokenFor(t, owner), map[string]interface{}{
		"title":        "Bounds House",
		"propertyType": "house",
		"suburb":       "Richmond",
		"city":         "Melbourne",
		"price":        900000,
		"bedrooms":     3,
		"bathrooms":    1,
	})

	buyerToken := tokenFor(t, buyer)

	// Budget too low: no match.
	createDemandViaAPI(t, router, buyerToken, map[string]interface{}{
		"propertyType": "house",
		"city":         "Melbourne",
		"maxPrice":     500000,
	})
	// Wrong suburb: no match.
	createDemandViaAPI(t, router, buyerToken, map[string]interface{}{
		"propertyType": "house",
		"suburb":       "Carlton",
	})
	// Too many bedrooms required: no match.
	createDemandViaAPI(t, router, buyerToken, map[string]interface{}{
		"propertyType": "house",
		"minBedrooms":  5,
	})

	var matchCount int
	if err := app.DB.QueryRow("SELECT COUNT(*) FROM matches").Scan(&matchCount); err != nil {
		t.Fatalf("count matches: %v", err)
	}
	if matchCount != 0 {
		t.Fatalf("matches = %d, want 0 (none of the briefs should match)", matchCount)
	}

	// Open bounds (all zero) with the right type and suburb: match.
	createDemandViaAPI(t, router, buyerToken, map[string]interface{}{
		"propertyType": "house",
		"suburb":       "Richmond",
	})
	if err := app.DB.QueryRow("SELECT COUNT(*) FROM matches").Scan(&matchCount); err != nil {
		t.Fatalf("count matches: %v", err)
	}
	if matchCount != 1 {
		t.Fatalf("matches = %d, want 1", matchCount)
	}
}

func TestNoSelfMatch(t *testing.T) {
	app, router := newTestApp(t)
	user := createUser(t, app.DB, "selfmatch@example.com", models.RoleUser, models.StatusActive)
	token := tokenFor(t, user)
	createPropertyViaAPI(t, router, token, map[string]interface{}{
		"title":        "My Own Place",
		"propertyType": "unit",
		"suburb":       "Glebe",
		"city":         "Sydney",
		"price":        700000,
		"bedrooms":     2,
		"bathrooms":    1,
	})
	createDemandViaAPI(t, router, token, map[string]interface{}{
		"propertyType": "unit",
		"suburb":       "Glebe",
	})

	var matchCount int
	if err := app.DB.QueryRow("SELECT COUNT(*) FROM matches").Scan(&matchCount); err != nil {
		t.Fatalf("count matches: %v", err)
	}
	if matchCount != 0 {
		t.Fatalf("matches = %d, want 0 (owners must not match their own briefs)", matchCount)
	}
}

func TestPausedPropertySkipsSweep(t *testing.T) {
	app, router := newTestApp(t)
	owner := createUser(t, app.DB, "pausedowner@example.com", models.RoleUser, models.StatusActive)
	buyer := createUser(t, app.DB, "pausedbuyer@example.com", models.RoleUser, models.StatusActive)
	ownerToken := tokenFor(t, owner)
	property := createPropertyViaAPI(t, router, ownerToken, map[string]interface{}{
		"title":        "Paused Cottage",
		"propertyType": "house",
		"suburb":       "Hobart",
		"city":         "Hobart",
		"price":        600000,
		"bedrooms":     3,
		"bathrooms":    1,
	})

	w := doRequest(t, router, http.MethodPatch, fmt.Sprintf("/v1/properties/%d/status", property.ID), ownerToken,
		map[string]interface{}{"status": "PAUSED"})
	wantStatus(t, w, http.StatusOK)

	createDemandViaAPI(t, router, tokenFor(t, buyer), map[string]interface{}{
		"propertyType": "house",
		"city":         "Hobart",
	})

	var matchCount int
	if err := app.DB.QueryRow("SELECT COUNT(*) FROM matches").Scan(&matchCount); err != nil {
		t.Fatalf("count matches: %v", err)
	}
	if matchCount != 0 {
		t.Fatalf("matches = %d, want 0 (paused properties stay out of the sweep)", matchCount)
	}

	// Re-activating the property triggers a sweep and the match appears.
	w = doRequest(t, router, http.MethodPatch, fmt.Sprintf("/v1/properties/%d/status", property.ID), ownerToken,
		map[string]interface{}{"status": "ACTIVE"})
	wantStatus(t, w, http.StatusOK)

	if err := app.DB.QueryRow("SELECT COUNT(*) FROM matches").Scan(&matchCount); err != nil {
		t.Fatalf("count matches: %v", err)
	}
	if matchCount != 1 {
		t.Fatalf("matches = %d, want 1 after reactivation", matchCount)
	}
}

func TestDemandOwnershipOnMatches(t *testing.T) {
	app, router := newTestApp(t)
	buyer := createUser(t, app.DB, "briefowner@example.com", models.RoleUser, models.StatusActive)
	snoop := createUser(t, app.DB, "snoop@example.com", models.RoleUser, models.StatusActive)
	demand := createDemandViaAPI(t, router, tokenFor(t, buyer), map[string]interface{}{
		"propertyType": "house",
	})

	w := doRequest(t, router, http.MethodGet, fmt.Sprintf("/v1/demands/%d/matches", demand.ID), tokenFor(t, snoop), nil)
	wantStatus(t, w, http.StatusForbidden)
	wantErrorCode(t, w, "FORBIDDEN")

	w = doRequest(t, router, http.MethodGet, "/v1/demands/99999/matches", tokenFor(t, snoop), nil)
	wantStatus(t, w, http.StatusNotFound)
}

package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
	"github.com/greenmile-app/greenmile-backend/pkg/enums"
)

type stubCatalog struct {
	promos []models.Promotion
	err    error

	gotLocationID uuid.UUID
}

func (s *stubCatalog) ActiveForLocation(_ context.Context, locationID uuid.UUID) ([]models.Promotion, error) {
	s.gotLocationID = locationID
	return s.promos, s.err
}

func (s *stubCatalog) FindActiveByCode(context.Context, string) (*models.Promotion, error) {
	return nil, nil
}

func TestPromotionsForLocationHidesInvisible(t *testing.T) {
	t.Parallel()

	locationID := uuid.New()
	catalog := &stubCatalog{promos: []models.Promotion{
		{
			ID:           uuid.New(),
			LocationID:   locationID,
			Code:         "WELCOME10",
			Name:         "Welcome 10%",
			DiscountKind: enums.DiscountKindPercentage,
			Amount:       decimal.RequireFromString("10"),
			Scope:        enums.DiscountScopeOrder,
			Visible:      true,
		},
		{
			ID:           uuid.New(),
			LocationID:   locationID,
			Code:         "VIPSECRET",
			Name:         "VIP only",
			DiscountKind: enums.DiscountKindFixed,
			Amount:       decimal.RequireFromString("5.00"),
			Scope:        enums.DiscountScopeOrder,
			Visible:      false,
		},
	}}

	r := chi.NewRouter()
	r.Get("/locations/{locationID}/promotions", PromotionsForLocation(catalog, nil))

	req := httptest.NewRequest(http.MethodGet, "/locations/"+locationID.String()+"/promotions", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if catalog.gotLocationID != locationID {
		t.Fatalf("catalog saw location %s, want %s", catalog.gotLocationID, locationID)
	}

	var envelope struct {
		Data []PromotionView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("promotions = %d, want 1 (hidden code excluded)", len(envelope.Data))
	}
	if envelope.Data[0].Code != "WELCOME10" {
		t.Fatalf("code = %q, want WELCOME10", envelope.Data[0].Code)
	}
}

func TestPromotionsForLocationBadID(t *testing.T) {
	t.Parallel()

	catalog := &stubCatalog{}
	r := chi.NewRouter()
	r.Get("/locations/{locationID}/promotions", PromotionsForLocation(catalog, nil))

	req := httptest.NewRequest(http.MethodGet, "/locations/nope/promotions", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if catalog.gotLocationID != uuid.Nil {
		t.Fatal("catalog should not have been called")
	}
}

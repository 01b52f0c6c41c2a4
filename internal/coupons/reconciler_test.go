package coupons

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
)

func TestReconcileRemovesAutoAppliedWhenPromotionLeavesCatalog(t *testing.T) {
	t.Parallel()

	order := pickupOrder()
	gone := testPromotion(func(p *models.Promotion) { p.AutoApply = true })
	existing := []models.PromotionApplication{candidate(gone, true)}

	got, err := Reconcile(order, existing, nil, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 application, got %d", len(got))
	}
	if !got[0].Removed || got[0].Applied {
		t.Fatalf("expected removed and unapplied, got removed=%v applied=%v", got[0].Removed, got[0].Applied)
	}
}

func TestReconcileRetainsManualRedemptionOfHiddenPromotion(t *testing.T) {
	t.Parallel()

	order := pickupOrder()
	hidden := testPromotion(func(p *models.Promotion) {
		p.Visible = false
		p.LocationID = order.LocationID
	})
	existing := []models.PromotionApplication{candidate(hidden, false)}

	// catalog is pre-filtered to visible promotions, so the hidden code is
	// absent from it but still live at the location
	got, err := Reconcile(order, existing, nil, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Removed || !got[0].Applied {
		t.Fatalf("hidden manual redemption must survive, got removed=%v applied=%v", got[0].Removed, got[0].Applied)
	}
}

func TestReconcileRemovesManualRedemptionOfDeadPromotion(t *testing.T) {
	t.Parallel()

	order := pickupOrder()
	now := time.Now()
	deletedAt := now.Add(-time.Hour)
	dead := testPromotion(func(p *models.Promotion) {
		p.LocationID = order.LocationID
		p.DeletedAt = &deletedAt
	})
	existing := []models.PromotionApplication{candidate(dead, false)}

	got, err := Reconcile(order, existing, nil, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got[0].Removed || got[0].Applied {
		t.Fatalf("deleted promotion must be soft-removed, got removed=%v applied=%v", got[0].Removed, got[0].Applied)
	}
}

func TestReconcileRemovesManualRedemptionFromOtherLocation(t *testing.T) {
	t.Parallel()

	order := pickupOrder()
	elsewhere := testPromotion(func(p *models.Promotion) { p.LocationID = uuid.New() })
	existing := []models.PromotionApplication{candidate(elsewhere, false)}

	got, err := Reconcile(order, existing, nil, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got[0].Removed {
		t.Fatalf("redemption scoped to another location must be soft-removed")
	}
}

func TestReconcileCreatesAutoApplyApplications(t *testing.T) {
	t.Parallel()

	order := pickupOrder()
	auto := testPromotion(func(p *models.Promotion) { p.AutoApply = true })
	manualOnly := testPromotion(nil)

	got, err := Reconcile(order, nil, []models.Promotion{*auto, *manualOnly}, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only the auto-apply promotion to be created, got %d applications", len(got))
	}
	app := got[0]
	if app.PromotionID != auto.ID || !app.Applied || !app.AutoApplied || app.Removed {
		t.Fatalf("unexpected created application: %+v", app)
	}
	if app.OrderID != order.ID {
		t.Fatalf("application must belong to the order")
	}
}

func TestReconcileDoesNotDuplicateLiveApplications(t *testing.T) {
	t.Parallel()

	order := pickupOrder()
	auto := testPromotion(func(p *models.Promotion) { p.AutoApply = true })
	existing := []models.PromotionApplication{candidate(auto, true)}

	got, err := Reconcile(order, existing, []models.Promotion{*auto}, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 application, got %d", len(got))
	}
}

func TestReconcileIdempotent(t *testing.T) {
	t.Parallel()

	order := pickupOrder()
	now := time.Now()
	auto := testPromotion(func(p *models.Promotion) {
		p.AutoApply = true
		p.LocationID = order.LocationID
	})
	manual := testPromotion(func(p *models.Promotion) { p.LocationID = order.LocationID })
	gone := testPromotion(func(p *models.Promotion) { p.AutoApply = true })
	catalog := []models.Promotion{*auto, *manual}
	existing := []models.PromotionApplication{
		candidate(manual, false),
		candidate(gone, true),
	}

	first, err := Reconcile(order, existing, catalog, nil, now)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := Reconcile(order, first, catalog, nil, now)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("pass sizes diverged: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.PromotionID != b.PromotionID || a.Applied != b.Applied || a.Removed != b.Removed || a.AutoApplied != b.AutoApplied {
			t.Fatalf("application %d diverged across passes: %+v vs %+v", i, a, b)
		}
	}
}

func TestReconcileRejectsDuplicateLiveApplications(t *testing.T) {
	t.Parallel()

	order := pickupOrder()
	promo := testPromotion(func(p *models.Promotion) { p.LocationID = order.LocationID })
	existing := []models.PromotionApplication{
		candidate(promo, false),
		candidate(promo, false),
	}

	if _, err := Reconcile(order, existing, []models.Promotion{*promo}, nil, time.Now()); err == nil {
		t.Fatalf("expected duplicate live applications to be rejected")
	}
}

package promotions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
)

// Catalog supplies the promotions currently offered at a location. Consumed
// read-only by the reconciliation pipeline.
type Catalog interface {
	ActiveForLocation(ctx context.Context, locationID uuid.UUID) ([]models.Promotion, error)
	FindActiveByCode(ctx context.Context, code string) (*models.Promotion, error)
}

// History exposes the promotions a user has already consumed on submitted,
// non-voided orders.
type History interface {
	RedeemedByUser(ctx context.Context, userID uuid.UUID) ([]models.PromotionApplication, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the catalog/history read model over the repository.
func NewService(repo Repository) (*service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promotions repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// ActiveForLocation returns the location's current catalog snapshot.
func (s *service) ActiveForLocation(ctx context.Context, locationID uuid.UUID) ([]models.Promotion, error) {
	if locationID == uuid.Nil {
		return nil, fmt.Errorf("location id is required")
	}
	return s.repo.ListActiveForLocation(ctx, locationID, s.now())
}

// FindActiveByCode resolves a manual redemption code. Codes are matched
// case-insensitively after trimming; inactive or deleted promotions resolve
// to ErrPromotionNotFound.
func (s *service) FindActiveByCode(ctx context.Context, code string) (*models.Promotion, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, ErrPromotionNotFound
	}
	promo, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, err
	}
	if !promo.ActiveAt(s.now()) {
		return nil, ErrPromotionNotFound
	}
	return promo, nil
}

// RedeemedByUser returns the user's one-time-use consumption history.
func (s *service) RedeemedByUser(ctx context.Context, userID uuid.UUID) ([]models.PromotionApplication, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	return s.repo.ListRedeemedByUser(ctx, userID)
}

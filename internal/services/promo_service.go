package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"
)

// --- Promo DTOs ---
type CreatePromoRequest struct {
	Code          string              `json:"code" binding:"required,max=30"`
	Description   *string             `json:"description"`
	DiscountType  models.DiscountType `json:"discount_type" binding:"required"`
	DiscountValue int64               `json:"discount_value" binding:"required,gt=0"`
	MinSpend      int64               `json:"min_spend" binding:"min=0"`
	MaxDiscount   *int64              `json:"max_discount" binding:"omitempty,gt=0"`
	ValidFrom     *time.Time          `json:"valid_from"`
	ValidUntil    *time.Time          `json:"valid_until"`
	IsActive      *bool               `json:"is_active"`
}

type UpdatePromoRequest struct {
	Description   *string              `json:"description"`
	DiscountType  *models.DiscountType `json:"discount_type"`
	DiscountValue *int64               `json:"discount_value" binding:"omitempty,gt=0"`
	MinSpend      *int64               `json:"min_spend" binding:"omitempty,min=0"`
	MaxDiscount   *int64               `json:"max_discount" binding:"omitempty,gt=0"`
	ValidFrom     *time.Time           `json:"valid_from"`
	ValidUntil    *time.Time           `json:"valid_until"`
	IsActive      *bool                `json:"is_active"`
}

type ValidatePromoRequest struct {
	Code     string `json:"code" binding:"required"`
	Subtotal int64  `json:"subtotal" binding:"min=0"`
}

// PromoQuote is the outcome of applying a promo to a subtotal.
type PromoQuote struct {
	Promo    *models.Promo `json:"promo"`
	Subtotal int64         `json:"subtotal"`
	Discount int64         `json:"discount"`
	Total    int64         `json:"total"`
}

// --- PromoService Interface ---
type PromoService interface {
	CreatePromo(req CreatePromoRequest) (*models.Promo, error)
	GetPromos(activeOnly bool) ([]models.Promo, error)
	UpdatePromo(promoID int64, req UpdatePromoRequest) (*models.Promo, error)
	DeletePromo(promoID int64) error
	ValidatePromo(code string, subtotal int64) (*PromoQuote, error)
}

type promoService struct {
	promoRepo repositories.PromoRepository
	db        *sql.DB
	now       Clock
}

// NewPromoService creates a new instance of PromoService.
func NewPromoService(pr repositories.PromoRepository, db *sql.DB, clock Clock) PromoService {
	return &promoService{promoRepo: pr, db: db, now: defaultClock(clock)}
}

func validatePromoShape(p *models.Promo) error {
	switch p.DiscountType {
	case models.DiscountPercent:
		if p.DiscountValue > 100 {
			return NewValidationError("discount_value", "percentage cannot exceed 100")
		}
	case models.DiscountFixed:
	default:
		return NewValidationError("discount_type", "must be PERCENT or FIXED")
	}
	if p.DiscountValue <= 0 {
		return NewValidationError("discount_value", "must be positive")
	}
	if p.MinSpend < 0 {
		return NewValidationError("min_spend", "cannot be negative")
	}
	if p.ValidFrom != nil && p.ValidUntil != nil && p.ValidUntil.Before(*p.ValidFrom) {
		return NewValidationError("valid_until", "must not be before valid_from")
	}
	return nil
}

func (s *promoService) CreatePromo(req CreatePromoRequest) (*models.Promo, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, NewValidationError("code", "is required")
	}
	promo := &models.Promo{
		Code:          code,
		Description:   trimmedOrNil(req.Description),
		DiscountType:  models.DiscountType(strings.ToUpper(string(req.DiscountType))),
		DiscountValue: req.DiscountValue,
		MinSpend:      req.MinSpend,
		MaxDiscount:   req.MaxDiscount,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		IsActive:      true,
	}
	if req.IsActive != nil {
		promo.IsActive = *req.IsActive
	}
	if err := validatePromoShape(promo); err != nil {
		return nil, err
	}
	if err := s.promoRepo.CreatePromo(s.db, promo); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrPromoCodeExists
		}
		return nil, fmt.Errorf("failed to create promo: %w", err)
	}
	return promo, nil
}

func (s *promoService) GetPromos(activeOnly bool) ([]models.Promo, error) {
	promos, err := s.promoRepo.GetPromos(activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list promos: %w", err)
	}
	return promos, nil
}

func (s *promoService) UpdatePromo(promoID int64, req UpdatePromoRequest) (*models.Promo, error) {
	promo, err := s.promoRepo.GetPromoByID(promoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPromoNotFound
		}
		return nil, fmt.Errorf("failed to get promo %d: %w", promoID, err)
	}
	if req.Description != nil {
		promo.Description = trimmedOrNil(req.Description)
	}
	if req.DiscountType != nil {
		promo.DiscountType = models.DiscountType(strings.ToUpper(string(*req.DiscountType)))
	}
	if req.DiscountValue != nil {
		promo.DiscountValue = *req.DiscountValue
	}
	if req.MinSpend != nil {
		promo.MinSpend = *req.MinSpend
	}
	if req.MaxDiscount != nil {
		promo.MaxDiscount = req.MaxDiscount
	}
	if req.ValidFrom != nil {
		promo.ValidFrom = req.ValidFrom
	}
	if req.ValidUntil != nil {
		promo.ValidUntil = req.ValidUntil
	}
	if req.IsActive != nil {
		promo.IsActive = *req.IsActive
	}
	if err := validatePromoShape(promo); err != nil {
		return nil, err
	}
	if err := s.promoRepo.UpdatePromo(s.db, promo); err != nil {
		return nil, fmt.Errorf("failed to update promo %d: %w", promoID, err)
	}
	return promo, nil
}

func (s *promoService) DeletePromo(promoID int64) error {
	if err := s.promoRepo.DeletePromo(s.db, promoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPromoNotFound
		}
		if errors.Is(err, repositories.ErrForeignKey) {
			return fmt.Errorf("%w: promo was used by orders, deactivate it instead", ErrConflict)
		}
		return fmt.Errorf("failed to delete promo %d: %w", promoID, err)
	}
	return nil
}

func (s *promoService) ValidatePromo(code string, subtotal int64) (*PromoQuote, error) {
	if subtotal < 0 {
		return nil, NewValidationError("subtotal", "cannot be negative")
	}
	promo, err := lookupPromo(s.promoRepo, s.db, code)
	if err != nil {
		return nil, err
	}
	discount, err := applyPromo(promo, subtotal, s.now())
	if err != nil {
		return nil, err
	}
	return &PromoQuote{Promo: promo, Subtotal: subtotal, Discount: discount, Total: subtotal - discount}, nil
}

func lookupPromo(repo repositories.PromoRepository, exec repositories.SQLExecutor, code string) (*models.Promo, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, NewValidationError("promo_code", "is required")
	}
	promo, err := repo.GetPromoByCode(exec, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPromoNotFound
		}
		return nil, fmt.Errorf("failed to get promo %q: %w", code, err)
	}
	return promo, nil
}

// applyPromo returns the discount promo grants on subtotal at now.
// The discount never exceeds the subtotal.
func applyPromo(promo *models.Promo, subtotal int64, now time.Time) (int64, error) {
	if !promo.IsActive {
		return 0, fmt.Errorf("%w: promo is inactive", ErrPromoNotApplicable)
	}
	if promo.ValidFrom != nil && now.Before(*promo.ValidFrom) {
		return 0, fmt.Errorf("%w: promo is not yet valid", ErrPromoNotApplicable)
	}
	if promo.ValidUntil != nil && now.After(*promo.ValidUntil) {
		return 0, fmt.Errorf("%w: promo has expired", ErrPromoNotApplicable)
	}
	if subtotal < promo.MinSpend {
		return 0, fmt.Errorf("%w: minimum spend is %d", ErrPromoNotApplicable, promo.MinSpend)
	}

	var discount int64
	switch promo.DiscountType {
	case models.DiscountPercent:
		discount = subtotal * promo.DiscountValue / 100
		if promo.MaxDiscount != nil && discount > *promo.MaxDiscount {
			discount = *promo.MaxDiscount
		}
	case models.DiscountFixed:
		discount = promo.DiscountValue
	default:
		return 0, fmt.Errorf("%w: unknown discount type %s", ErrPromoNotApplicable, promo.DiscountType)
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount, nil
}

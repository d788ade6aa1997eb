package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/billing"
	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/utils"
)

// PromoService adalah kolaborator lookup promo. Promo tidak pernah
// disimpan ke invoice sebagai entity; hasil resolve dilipat ke
// discount_amount + discount_reason saat generate.
type PromoService struct {
	db *gorm.DB
}

func NewPromoService(db *gorm.DB) *PromoService {
	return &PromoService{db: db}
}

// Lookup mencari promo aktif berdasarkan code. Promo di luar window
// tanggal atau yang sudah habis kuota diperlakukan sama dengan tidak
// ketemu.
func (s *PromoService) Lookup(code string) (*models.Promo, error) {
	var promo models.Promo
	if err := s.db.Where("code = ? AND active = ?", code, true).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromoNotFound
		}
		return nil, upstreamErr("failed to look up promo", err)
	}

	now := time.Now()
	if now.Before(promo.StartsAt) || now.After(promo.EndsAt) {
		return nil, ErrPromoNotFound
	}
	if promo.MaxRedemptions > 0 && promo.RedeemedCount >= promo.MaxRedemptions {
		return nil, ErrPromoNotFound
	}

	return &promo, nil
}

// ResolveDiscount mengubah promo jadi nominal absolut terhadap
// subtotal, lewat tagged union billing.Adjustment.
func (s *PromoService) ResolveDiscount(promo *models.Promo, subtotal float64) float64 {
	adj := billing.Adjustment{Kind: billing.AdjustFixed, Value: promo.DiscountValue}
	if promo.DiscountType == models.PromoPercent {
		adj.Kind = billing.AdjustPercent
	}
	return adj.Resolve(subtotal)
}

// MarkRedeemed menaikkan counter redemption. Best-effort: kegagalan
// di sini dicatat, bukan membatalkan invoice yang sudah jadi.
func (s *PromoService) MarkRedeemed(promoID uint) {
	if err := s.db.Model(&models.Promo{}).
		Where("id = ?", promoID).
		Update("redeemed_count", gorm.Expr("redeemed_count + 1")).Error; err != nil {
		utils.ErrorLogger.Printf("promo %d redemption count update failed: %v", promoID, err)
	}
}

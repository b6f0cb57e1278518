package codes

import (
	"errors"

	"rsv/src/models"
	"rsv/src/types"

	"gorm.io/gorm"
)

// ErrCodeNotRedeemable covers both unknown codes and codes that were
// already spent. Callers get one answer so they cannot probe the space.
var ErrCodeNotRedeemable = errors.New("code not found or already redeemed")

// Redeem consumes a coded slot and returns it with the special price.
// The status guard makes redemption single-use under concurrency.
func Redeem(db *gorm.DB, ticketID uint, code string) (*models.SpecialPriceCode, error) {
	var slot models.SpecialPriceCode
	err := db.
		Where("ticket_id = ? AND code = ? AND status = ?", ticketID, code, types.CODE_CODED).
		First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCodeNotRedeemable
	}
	if err != nil {
		return nil, err
	}
	res := db.Model(&models.SpecialPriceCode{}).
		Where("id = ? AND status = ?", slot.ID, types.CODE_CODED).
		Update("status", types.CODE_REDEEMED)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrCodeNotRedeemable
	}
	slot.Status = types.CODE_REDEEMED
	return &slot, nil
}

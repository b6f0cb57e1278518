package codes

import (
	"crypto/rand"
	"errors"
	"log"

	"rsv/src/config"
	"rsv/src/models"
	"rsv/src/types"

	"gorm.io/gorm"
)

// Alphabet is the symbol set codes are drawn from. Ambiguous glyphs
// (0/O, 1/I/L, 5/S, B/8) are left out so the codes survive being read
// over the phone or typed off a printout.
const Alphabet = "ACDEFGHJKMNPQRTUVWXYZ2346789"

// Allocator assigns unique codes to waiting special-price slots. The
// code length comes from the config snapshot captured at construction.
type Allocator struct {
	db  *gorm.DB
	cfg config.Snapshot
}

func NewAllocator(db *gorm.DB, cfg config.Snapshot) *Allocator {
	return &Allocator{db: db, cfg: cfg}
}

// Run processes every waiting slot once and reports how many received a
// code. Store failures on one slot are logged and skipped so a single
// bad row cannot starve the rest of the batch.
func (a *Allocator) Run() (int, error) {
	var pending []models.SpecialPriceCode
	err := a.db.
		Where("status = ? AND code IS NULL", types.CODE_WAITING).
		Order("id asc").
		Find(&pending).Error
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	assigned := 0
	for _, slot := range pending {
		coded, err := a.assign(slot)
		if err != nil {
			log.Printf("[Codes] Slot %d kept waiting: %s\n", slot.ID, err.Error())
			continue
		}
		if coded {
			assigned++
		}
	}
	if assigned > 0 {
		log.Printf("[Codes] Assigned %d special price codes\n", assigned)
	}
	return assigned, nil
}

// assign draws candidates until one sticks and reports whether this run
// coded the slot. Collisions, whether caught by the pre-check or by the
// unique index itself, just mean another draw; at the configured lengths
// a fresh candidate lands within a few attempts, so the loop carries no
// cap. The guarded update also checks the waiting status, leaving alone
// any slot another run already coded.
func (a *Allocator) assign(slot models.SpecialPriceCode) (bool, error) {
	for {
		code, err := randomCode(a.cfg.CodeLength)
		if err != nil {
			return false, err
		}
		var taken int64
		err = a.db.Model(&models.SpecialPriceCode{}).
			Where("ticket_id = ? AND code = ?", slot.TicketID, code).
			Count(&taken).Error
		if err != nil {
			return false, err
		}
		if taken > 0 {
			continue
		}
		res := a.db.Model(&models.SpecialPriceCode{}).
			Where("id = ? AND status = ? AND code IS NULL", slot.ID, types.CODE_WAITING).
			Updates(map[string]any{
				"code":   code,
				"status": types.CODE_CODED,
			})
		if res.Error != nil {
			// A concurrent run won the index race with this exact code.
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				continue
			}
			return false, res.Error
		}
		// Zero rows means someone else handled the slot, nothing left to do.
		return res.RowsAffected == 1, nil
	}
}

// randomCode draws length symbols from Alphabet using crypto/rand.
// Modulo bias is avoided by rejecting bytes past the largest multiple
// of the alphabet size.
func randomCode(length int) (string, error) {
	limit := byte(256 - 256%len(Alphabet))
	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

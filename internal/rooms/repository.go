package rooms

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockByID reads a room with a row lock held until tx ends. Scheduling
// serializes per room on this lock.
func LockByID(tx *gorm.DB, id uint) (*Room, error) {
	var room Room
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

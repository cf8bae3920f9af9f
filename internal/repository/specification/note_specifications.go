package specification

import "gorm.io/gorm"

type ByID struct {
	ID int64
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.id = ?", s.ID)
}

type OwnedBy struct {
	UserID int64
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.user_id = ?", s.UserID)
}

// HasTag narrows notes to those carrying an exact tag token. The caller is
// expected to pass an already normalized tag (lowercase, leading '#').
type HasTag struct {
	Tag string
}

func (s HasTag) Apply(db *gorm.DB) *gorm.DB {
	return db.Joins("JOIN note_tags ON note_tags.note_id = notes.id").
		Where("note_tags.tag = ?", s.Tag)
}

// OrderByIDAsc fixes the listing order that display indexes are derived from.
type OrderByIDAsc struct{}

func (OrderByIDAsc) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("notes.id ASC")
}

// AtOffset selects the single row at a zero-based position within the
// current ordering. Combined with OrderByIDAsc it translates a 1-based
// display index into a stable note id.
type AtOffset struct {
	Offset int
}

func (s AtOffset) Apply(db *gorm.DB) *gorm.DB {
	return db.Offset(s.Offset).Limit(1)
}

package model

import "time"

// Note is the persisted shape of a user's note. Ids are assigned by the
// database sequence and never reused; the user-visible numbering is derived
// from the ascending id order at read time.
type Note struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	UserId    int64     `gorm:"not null;index"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Tags []NoteTag `gorm:"foreignKey:NoteId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Note) TableName() string {
	return "notes"
}

// NoteTag relates one tag token to one note. Rows are rewritten wholesale
// whenever the note text changes, so the set always mirrors the current text.
type NoteTag struct {
	Id     int64  `gorm:"primaryKey;autoIncrement"`
	NoteId int64  `gorm:"not null;index"`
	Tag    string `gorm:"type:varchar(255);not null;index"`
}

func (NoteTag) TableName() string {
	return "note_tags"
}

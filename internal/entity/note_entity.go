package entity

import "time"

type Note struct {
	Id        int64
	UserId    int64
	Text      string
	Tags      []string
	CreatedAt time.Time
}

// TagCount is one row of the per-user tag summary.
type TagCount struct {
	Tag   string
	Count int64
}

package contract

import (
	"context"

	"notebot-be/internal/entity"
	"notebot-be/internal/repository/specification"
)

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	// UpdateText rewrites the text of the note owned by userId and reports
	// whether such a note existed.
	UpdateText(ctx context.Context, userId, noteId int64, text string) (bool, error)
	// Delete removes the note owned by userId and reports whether it existed.
	Delete(ctx context.Context, userId, noteId int64) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// ReplaceTags discards every tag row of the note and writes the given
	// set. Must run inside the same transaction as the text write.
	ReplaceTags(ctx context.Context, noteId int64, tags []string) error
	// TagsForNote returns the note's tags in insertion order.
	TagsForNote(ctx context.Context, noteId int64) ([]string, error)
	// TagCounts returns the user's tags with usage counts, sorted by tag.
	TagCounts(ctx context.Context, userId int64) ([]entity.TagCount, error)
}

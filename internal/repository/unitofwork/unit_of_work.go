package unitofwork

import (
	"context"

	"notebot-be/internal/repository/contract"
)

// UnitOfWork scopes repository writes to one transaction. A note and its
// tag rows are only ever written between Begin and Commit, so a crash can
// never leave a textless note or orphaned tags behind.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	NoteRepository() contract.NoteRepository
}

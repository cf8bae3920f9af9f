package contract

import (
	"context"

	"notebot-be/pkg/store"
)

// DialogueRepository keeps the per-user dialogue position shared by every
// chat front end. Missing users read as an idle session.
type DialogueRepository interface {
	Get(ctx context.Context, userId int64) (*store.DialogueSession, error)
	Save(ctx context.Context, session *store.DialogueSession) error
	Delete(ctx context.Context, userId int64) error
}

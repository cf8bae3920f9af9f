package memory

import (
	"context"
	"strconv"
	"time"

	"notebot-be/internal/repository/contract"
	"notebot-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// DialogueRepository keeps dialogue sessions in process memory. With a zero
// TTL sessions live until completed or cancelled; a positive TTL makes a
// stuck mid-flow dialogue quietly expire back to the idle state.
type DialogueRepository struct {
	cache *cache.Cache
}

func NewDialogueRepository(ttl time.Duration) *DialogueRepository {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 10 * time.Minute
	}
	return &DialogueRepository{
		cache: cache.New(expiration, cleanup),
	}
}

var _ contract.DialogueRepository = (*DialogueRepository)(nil)

func key(userId int64) string {
	return strconv.FormatInt(userId, 10)
}

func (r *DialogueRepository) Get(ctx context.Context, userId int64) (*store.DialogueSession, error) {
	if x, found := r.cache.Get(key(userId)); found {
		s := x.(store.DialogueSession)
		return &s, nil
	}
	return store.NewSession(userId), nil
}

func (r *DialogueRepository) Save(ctx context.Context, session *store.DialogueSession) error {
	r.cache.Set(key(session.UserID), *session, cache.DefaultExpiration)
	return nil
}

func (r *DialogueRepository) Delete(ctx context.Context, userId int64) error {
	r.cache.Delete(key(userId))
	return nil
}

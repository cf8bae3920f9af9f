package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"notebot-be/internal/repository/contract"
	"notebot-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

// DialogueRepository keeps dialogue sessions in Redis so several gateway
// instances can serve the same user. Sessions are small JSON blobs keyed by
// user id; TTL semantics match the in-memory store.
type DialogueRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDialogueRepository(rdb *redis.Client, ttl time.Duration) *DialogueRepository {
	return &DialogueRepository{rdb: rdb, ttl: ttl}
}

var _ contract.DialogueRepository = (*DialogueRepository)(nil)

func key(userId int64) string {
	return fmt.Sprintf("dialogue:%d", userId)
}

func (r *DialogueRepository) Get(ctx context.Context, userId int64) (*store.DialogueSession, error) {
	data, err := r.rdb.Get(ctx, key(userId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return store.NewSession(userId), nil
		}
		return nil, err
	}

	var session store.DialogueSession
	if err := json.Unmarshal(data, &session); err != nil {
		// A corrupt session is unrecoverable; start the user over.
		return store.NewSession(userId), nil
	}
	return &session, nil
}

func (r *DialogueRepository) Save(ctx context.Context, session *store.DialogueSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, key(session.UserID), data, r.ttl).Err()
}

func (r *DialogueRepository) Delete(ctx context.Context, userId int64) error {
	return r.rdb.Del(ctx, key(userId)).Err()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/daystreak/api/internal/pkg/apperr"
	"github.com/daystreak/api/internal/pkg/utils"
	"github.com/redis/go-redis/v9"
)

const draftIDPrefix = "rd_"

// DraftStore keeps generated roadmaps until the user confirms them.
type DraftStore interface {
	Put(ctx context.Context, userID string, d *RoadmapDraft) (string, error)
	Get(ctx context.Context, userID, draftID string) (*RoadmapDraft, error)
	Delete(ctx context.Context, userID, draftID string) error
}

type redisDraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDraftStore(rdb *redis.Client, ttl time.Duration) DraftStore {
	return &redisDraftStore{rdb: rdb, ttl: ttl}
}

func draftKey(userID, draftID string) string {
	return fmt.Sprintf("roadmap:draft:%s:%s", userID, draftID)
}

func (s *redisDraftStore) Put(ctx context.Context, userID string, d *RoadmapDraft) (string, error) {
	id, err := utils.RandomToken(draftIDPrefix, 22)
	if err != nil {
		return "", fmt.Errorf("draft id: %w", err)
	}
	d.DraftID = id
	b, err := sonic.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.rdb.Set(ctx, draftKey(userID, id), b, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store draft: %w", err)
	}
	return id, nil
}

func (s *redisDraftStore) Get(ctx context.Context, userID, draftID string) (*RoadmapDraft, error) {
	b, err := s.rdb.Get(ctx, draftKey(userID, draftID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NotFound("roadmap draft", draftID)
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	var d RoadmapDraft
	if err := sonic.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	return &d, nil
}

func (s *redisDraftStore) Delete(ctx context.Context, userID, draftID string) error {
	return s.rdb.Del(ctx, draftKey(userID, draftID)).Err()
}

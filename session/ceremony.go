package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
)

// CeremonyStore 暂存 WebAuthn 挑战（SessionData），一次性使用
type CeremonyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCeremonyStore(rdb *redis.Client, ttl time.Duration) *CeremonyStore {
	return &CeremonyStore{rdb: rdb, ttl: ttl}
}

// 注册挑战按用户 id 存，登录挑战按一次性 sid 存
func regKey(userID string) string { return fmt.Sprintf("ts:webauthn:reg:%s", userID) }
func authKey(sid string) string   { return fmt.Sprintf("ts:webauthn:auth:%s", sid) }

func (s *CeremonyStore) SaveRegistration(ctx context.Context, userID string, sd *webauthn.SessionData) error {
	return s.save(ctx, regKey(userID), sd)
}

// TakeRegistration 读取后即删除，防止重放
func (s *CeremonyStore) TakeRegistration(ctx context.Context, userID string) (*webauthn.SessionData, error) {
	return s.take(ctx, regKey(userID))
}

func (s *CeremonyStore) SaveLogin(ctx context.Context, sid string, sd *webauthn.SessionData) error {
	return s.save(ctx, authKey(sid), sd)
}

func (s *CeremonyStore) TakeLogin(ctx context.Context, sid string) (*webauthn.SessionData, error) {
	return s.take(ctx, authKey(sid))
}

func (s *CeremonyStore) save(ctx context.Context, key string, sd *webauthn.SessionData) error {
	b, err := json.Marshal(sd)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, s.ttl).Err()
}

func (s *CeremonyStore) take(ctx context.Context, key string) (*webauthn.SessionData, error) {
	b, err := s.rdb.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var sd webauthn.SessionData
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

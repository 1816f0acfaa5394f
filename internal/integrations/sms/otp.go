package sms

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCodeNotFound = errors.New("verification code not found or expired")

// OTPStore keeps short-lived phone verification codes.
type OTPStore interface {
	Set(ctx context.Context, phone, code string, ttl time.Duration) error
	Get(ctx context.Context, phone string) (string, error)
	Delete(ctx context.Context, phone string) error
}

// RedisOTPStore keeps codes in redis with a TTL.
type RedisOTPStore struct {
	client *redis.Client
}

func NewRedisOTPStore(addr string) *RedisOTPStore {
	return &RedisOTPStore{
		client: redis.NewClient(&redis.Options{Addr: addr, DB: 0}),
	}
}

func otpKey(phone string) string { return "otp:" + phone }

func (s *RedisOTPStore) Set(ctx context.Context, phone, code string, ttl time.Duration) error {
	return s.client.Set(ctx, otpKey(phone), code, ttl).Err()
}

func (s *RedisOTPStore) Get(ctx context.Context, phone string) (string, error) {
	code, err := s.client.Get(ctx, otpKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	return code, err
}

func (s *RedisOTPStore) Delete(ctx context.Context, phone string) error {
	return s.client.Del(ctx, otpKey(phone)).Err()
}

// MemoryOTPStore is the in-process fallback when redis is not configured.
type MemoryOTPStore struct {
	mu    sync.Mutex
	codes map[string]memoryCode
}

type memoryCode struct {
	code      string
	expiresAt time.Time
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{codes: make(map[string]memoryCode)}
}

func (s *MemoryOTPStore) Set(_ context.Context, phone, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = memoryCode{code: code, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryOTPStore) Get(_ context.Context, phone string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.codes[phone]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.codes, phone)
		return "", ErrCodeNotFound
	}
	return entry.code, nil
}

func (s *MemoryOTPStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, phone)
	return nil
}

// OTPStoreFromConfig picks redis when an address is configured.
func OTPStoreFromConfig(redisAddr string) OTPStore {
	if redisAddr == "" {
		return NewMemoryOTPStore()
	}
	return NewRedisOTPStore(redisAddr)
}

// GenerateCode returns a 6-digit numeric code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MaxOTPAttempts is how many wrong guesses a code survives
const MaxOTPAttempts = 5

// OTPStore keeps one pending one-time password per email
type OTPStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	// Verify consumes the code when it matches. After MaxOTPAttempts
	// mismatches the code is discarded and a new one must be requested.
	Verify(ctx context.Context, email, code string) (bool, error)
}

// GenerateOTP returns a numeric code of the given length
func GenerateOTP(length int) (string, error) {
	var b strings.Builder
	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

func codesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

type otpEntry struct {
	code      string
	expiresAt time.Time
	failures  int
}

type MemoryOTPStore struct {
	mu      sync.Mutex
	entries map[string]otpEntry
	clock   func() time.Time
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{entries: map[string]otpEntry{}, clock: time.Now}
}

func (s *MemoryOTPStore) Save(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[email] = otpEntry{code: code, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryOTPStore) Verify(_ context.Context, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[email]
	if !ok {
		return false, nil
	}
	if s.clock().After(e.expiresAt) {
		delete(s.entries, email)
		return false, nil
	}
	if !codesEqual(e.code, code) {
		e.failures++
		if e.failures >= MaxOTPAttempts {
			delete(s.entries, email)
		} else {
			s.entries[email] = e
		}
		return false, nil
	}
	delete(s.entries, email)
	return true, nil
}

type RedisOTPStore struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client, keyPrefix: "otp:"}
}

func (s *RedisOTPStore) attemptsKey(email string) string {
	return s.keyPrefix + "attempts:" + email
}

func (s *RedisOTPStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keyPrefix+email, code, ttl)
	pipe.Del(ctx, s.attemptsKey(email))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return nil
}

func (s *RedisOTPStore) Verify(ctx context.Context, email, code string) (bool, error) {
	key := s.keyPrefix + email
	stored, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read otp: %w", err)
	}
	if !codesEqual(stored, code) {
		return false, s.recordFailure(ctx, email)
	}
	if err := s.client.Del(ctx, key, s.attemptsKey(email)).Err(); err != nil {
		return false, fmt.Errorf("failed to consume otp: %w", err)
	}
	return true, nil
}

// recordFailure counts a wrong guess and drops the code once the limit is hit.
// The counter expires together with the code it guards.
func (s *RedisOTPStore) recordFailure(ctx context.Context, email string) error {
	key, attempts := s.keyPrefix+email, s.attemptsKey(email)
	n, err := s.client.Incr(ctx, attempts).Result()
	if err != nil {
		return fmt.Errorf("failed to count otp attempts: %w", err)
	}
	if n >= MaxOTPAttempts {
		if err := s.client.Del(ctx, key, attempts).Err(); err != nil {
			return fmt.Errorf("failed to discard otp: %w", err)
		}
		return nil
	}
	if n == 1 {
		ttl, err := s.client.PTTL(ctx, key).Result()
		if err == nil && ttl > 0 {
			err = s.client.PExpire(ctx, attempts, ttl).Err()
		}
		if err != nil {
			return fmt.Errorf("failed to expire otp attempts: %w", err)
		}
	}
	return nil
}

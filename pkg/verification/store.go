package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
)

const (
	codeDigits = 6
	// DefaultTTL bounds how long a delivery confirmation code stays valid.
	DefaultTTL = 10 * time.Minute
)

// codeStore is the slice of the redis client the store needs.
type codeStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	VerificationKey(kind, recipient string) string
}

// Store issues and checks short-lived numeric confirmation codes, such as
// the delivery confirmation code shared with a customer.
type Store struct {
	redis codeStore
	ttl   time.Duration
}

// NewStore builds a code store over the shared redis client.
func NewStore(redis codeStore, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{redis: redis, ttl: ttl}
}

// Issue generates a fresh code for the recipient and persists it with the
// configured TTL, replacing any outstanding code of the same kind.
func (s *Store) Issue(ctx context.Context, kind, recipient string) (string, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}

	code, err := generateCode()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification code")
	}

	key := s.redis.VerificationKey(kind, recipient)
	if err := s.redis.Set(ctx, key, code, s.ttl); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store verification code")
	}
	return code, nil
}

// Check validates a submitted code. A matching code is consumed so it cannot
// be replayed; a missing or expired code reports NOT_FOUND.
func (s *Store) Check(ctx context.Context, kind, recipient, submitted string) error {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "verification code is required")
	}

	key := s.redis.VerificationKey(kind, recipient)
	stored, err := s.redis.Get(ctx, key)
	if err != nil {
		if err == goredis.Nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "verification code expired or not issued")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification code")
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "verification code does not match")
	}

	if err := s.redis.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume verification code")
	}
	return nil
}

// Outstanding reports whether an unconsumed code exists for the recipient.
func (s *Store) Outstanding(ctx context.Context, kind, recipient string) (bool, error) {
	key := s.redis.VerificationKey(kind, recipient)
	if _, err := s.redis.Get(ctx, key); err != nil {
		if err == goredis.Nil {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification code")
	}
	return true, nil
}

func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}

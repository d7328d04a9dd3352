package presence

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrOTPInvalid = errors.New("invalid or expired otp")

const otpTTL = 10 * time.Minute

// OTPStore keeps short-lived one-time codes in Redis keyed by email.
type OTPStore struct {
	rdb *redis.Client
}

func NewOTPStore(rdb *redis.Client) *OTPStore {
	return &OTPStore{rdb: rdb}
}

func otpKey(email string) string {
	return "otp:" + email
}

// Issue generates and stores a 6-digit code for the email.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.rdb.Set(ctx, otpKey(email), code, otpTTL).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify consumes the code: a correct code deletes the key so it cannot be
// replayed.
func (s *OTPStore) Verify(ctx context.Context, email, code string) error {
	stored, err := s.rdb.Get(ctx, otpKey(email)).Result()
	if err == redis.Nil {
		return ErrOTPInvalid
	}
	if err != nil {
		return err
	}
	if stored != code {
		return ErrOTPInvalid
	}
	return s.rdb.Del(ctx, otpKey(email)).Err()
}

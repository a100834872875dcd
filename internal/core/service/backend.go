package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/helios/session-gateway/internal/core/domain"
)

// DelayBackend simulates the round trip to an account backend by sleeping.
type DelayBackend struct {
	delay time.Duration
}

func NewDelayBackend(delay time.Duration) *DelayBackend {
	return &DelayBackend{delay: delay}
}

// Call waits for the configured delay or until ctx is done.
func (b *DelayBackend) Call(ctx context.Context, op string) error {
	if b.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(b.delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w: %w", op, domain.ErrBackendUnavailable, ctx.Err())
	}
}

const (
	userIDPrefix   = "user_"
	userIDLength   = 9
	userIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// RandomIDGenerator issues user_<9 base36 chars> identifiers. There is no
// uniqueness check; collisions are possible but unlikely.
type RandomIDGenerator struct{}

func (RandomIDGenerator) NewUserID() (string, error) {
	base := big.NewInt(int64(len(userIDAlphabet)))
	b := make([]byte, userIDLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("generate user id: %w", err)
		}
		b[i] = userIDAlphabet[n.Int64()]
	}
	return userIDPrefix + string(b), nil
}

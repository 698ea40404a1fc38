// Package challenge issues and verifies single-use one-time codes.
package challenge

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// Purposes namespace codes so one flow's code never satisfies another.
const (
	PurposeRegistration  = "register"
	PurposePasswordReset = "reset"
)

const (
	codeFloor = 100000
	codeSpan  = 900000
)

// Cache hands out 6-digit codes for one purpose.
type Cache struct {
	store   Store
	purpose string
	ttl     time.Duration
}

func New(store Store, purpose string, ttl time.Duration) *Cache {
	return &Cache{store: store, purpose: purpose, ttl: ttl}
}

func (c *Cache) key(address string) string {
	return "otp:" + c.purpose + ":" + address
}

// Issue stores a fresh code for address, replacing any live one.
func (c *Cache) Issue(ctx context.Context, address string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	code := strconv.FormatInt(codeFloor+n.Int64(), 10)

	if err := c.store.Put(ctx, c.key(address), code, c.ttl); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Verify consumes the live code for address when candidate matches it exactly.
// A mismatch leaves the stored code untouched.
func (c *Cache) Verify(ctx context.Context, address, candidate string) (bool, error) {
	if candidate == "" {
		return false, nil
	}
	ok, err := c.store.CompareAndDelete(ctx, c.key(address), candidate)
	if err != nil {
		return false, fmt.Errorf("verify otp: %w", err)
	}
	return ok, nil
}

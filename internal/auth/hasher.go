package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	// Verify reports a wrong password as (false, nil). An error means the
	// hash itself could not be used.
	Verify(hash, pw string) (bool, error)
}

// ErrInvalidHash marks a stored hash the hasher cannot parse.
var ErrInvalidHash = errors.New("invalid password hash")

// DefaultCost is the bcrypt work factor used for the admin credential.
const DefaultCost = 12

// BcryptHasher salts every hash and embeds salt and cost in its output.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
}

// hashGate bounds the number of hash computations running at once so a
// burst of logins cannot occupy every CPU the request handlers need.
type hashGate struct {
	sem    *semaphore.Weighted
	hasher PasswordHasher
}

func newHashGate(hasher PasswordHasher, workers int) *hashGate {
	if workers < 1 {
		workers = 1
	}
	return &hashGate{sem: semaphore.NewWeighted(int64(workers)), hasher: hasher}
}

func (g *hashGate) hash(ctx context.Context, pw string) (string, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("wait for hash worker: %w", err)
	}
	defer g.sem.Release(1)
	return g.hasher.Hash(pw)
}

func (g *hashGate) verify(ctx context.Context, hash, pw string) (bool, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("wait for hash worker: %w", err)
	}
	defer g.sem.Release(1)
	return g.hasher.Verify(hash, pw)
}

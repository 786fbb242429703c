package room

import (
	"context"
	"fmt"

	"github.com/jmcvetta/randutil"
)

// codeAlphabet omits 0, O, 1 and I so codes survive being read aloud
// or copied off a TV screen.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the length of every room code.
const CodeLength = 6

const maxCodeAttempts = 10

// NewCode returns a random room code. It does not check for collisions.
func NewCode() (string, error) {
	return randutil.String(CodeLength, codeAlphabet)
}

// codeChecker is satisfied by *Repository.
type codeChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// UniqueCode generates a code and retries on collision. Collisions are
// vanishingly rare at this alphabet size; the retry cap just bounds the
// damage if the rooms table ever fills up.
func UniqueCode(ctx context.Context, repo codeChecker) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := NewCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate room code: %w", err)
		}
		exists, err := repo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check room code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

package room

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCodeChecker struct {
	taken map[string]bool
	calls int
}

func (f *fakeCodeChecker) CodeExists(ctx context.Context, code string) (bool, error) {
	f.calls++
	return f.taken[code], nil
}

func TestNewCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewCode()
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected rune %q", r)
		}
		seen[code] = true
	}
	// 100 draws from a 32^6 space colliding would mean a broken RNG.
	assert.Greater(t, len(seen), 95)
}

func TestUniqueCode(t *testing.T) {
	ctx := context.Background()

	t.Run("returns first free code", func(t *testing.T) {
		checker := &fakeCodeChecker{taken: map[string]bool{}}
		code, err := UniqueCode(ctx, checker)
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		assert.Equal(t, 1, checker.calls)
	})

	t.Run("gives up when everything collides", func(t *testing.T) {
		full := &alwaysTaken{}
		_, err := UniqueCode(ctx, full)
		assert.ErrorIs(t, err, ErrCodeExhausted)
		assert.Equal(t, maxCodeAttempts, full.calls)
	})
}

type alwaysTaken struct{ calls int }

func (a *alwaysTaken) CodeExists(ctx context.Context, code string) (bool, error) {
	a.calls++
	return true, nil
}

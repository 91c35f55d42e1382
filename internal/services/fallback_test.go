package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func constant(value string, err error, calls *int) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		*calls++
		return value, err
	}
}

func TestFirstOf(t *testing.T) {
	ctx := context.Background()

	t.Run("first success wins", func(t *testing.T) {
		var a, b int
		got := FirstOf(ctx, testLogger(), "default",
			Attempt{Name: "a", Fn: constant("first", nil, &a)},
			Attempt{Name: "b", Fn: constant("second", nil, &b)},
		)
		assert.Equal(t, "first", got)
		assert.Equal(t, 1, a)
		assert.Equal(t, 0, b, "later attempts must not run")
	})

	t.Run("errors and blanks fall through", func(t *testing.T) {
		var a, b, c int
		got := FirstOf(ctx, testLogger(), "default",
			Attempt{Name: "a", Fn: constant("", errors.New("boom"), &a)},
			Attempt{Name: "b", Fn: constant("  ", nil, &b)},
			Attempt{Name: "c", Fn: constant("third", nil, &c)},
		)
		assert.Equal(t, "third", got)
		assert.Equal(t, []int{1, 1, 1}, []int{a, b, c})
	})

	t.Run("all fail", func(t *testing.T) {
		var a int
		got := FirstOf(ctx, testLogger(), TitleNotFound,
			Attempt{Name: "a", Fn: constant("partial", errors.New("boom"), &a)},
		)
		assert.Equal(t, TitleNotFound, got)
	})

	t.Run("no attempts", func(t *testing.T) {
		assert.Equal(t, "x", FirstOf(ctx, testLogger(), "x"))
	})
}

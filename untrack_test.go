package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUntrack(t *testing.T) {
	t.Run("does not track reads", func(t *testing.T) {
		ran := 0
		tracked := NewSignal(0)
		skipped := NewSignal(0)

		NewEffect(func() {
			ran++
			tracked.Read()
			Untrack(func() int {
				return skipped.Read()
			})
		})

		skipped.Write(1) // untracked read, no re-run
		assert.Equal(t, 1, ran)

		tracked.Write(1)
		assert.Equal(t, 2, ran)
	})

	t.Run("UntrackVoid skips tracking without a return value", func(t *testing.T) {
		ran := 0
		skipped := NewSignal(0)

		NewEffect(func() {
			ran++
			UntrackVoid(func() {
				skipped.Read()
			})
		})

		skipped.Write(1)
		assert.Equal(t, 1, ran)
	})
}

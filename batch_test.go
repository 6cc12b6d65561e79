package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatch(t *testing.T) {
	t.Run("batches multiple writes", func(t *testing.T) {
		log := []string{}
		count := NewSignal(0)

		NewEffect(func() {
			log = append(log, "run")
			count.Read()
		})

		Batch(func() {
			count.Write(1)
			count.Write(2)
			count.Write(3)
		})

		assert.Equal(t, []string{"run", "run"}, log)
		assert.Equal(t, 3, count.Read())
	})

	t.Run("batches multiple signals", func(t *testing.T) {
		log := []string{}
		a := NewSignal(0)
		b := NewSignal(0)

		NewEffect(func() {
			log = append(log, "run")
			_ = a.Read() + b.Read()
		})

		Batch(func() {
			a.Write(1)
			b.Write(1)
		})

		assert.Equal(t, []string{"run", "run"}, log)
	})

	t.Run("nested batches", func(t *testing.T) {
		log := []string{}
		count := NewSignal(0)

		NewEffect(func() {
			log = append(log, "run")
			count.Read()
		})

		Batch(func() {
			count.Write(1)
			Batch(func() {
				count.Write(2)
			})
			count.Write(3)
		})

		assert.Equal(t, []string{"run", "run"}, log)
		assert.Equal(t, 3, count.Read())
	})

	t.Run("immediate priority effect bypasses batching", func(t *testing.T) {
		log := []string{}
		count := NewSignal(0)

		NewEffectWithOptions(func() {
			log = append(log, "run")
			count.Read()
		}, EffectOptions{Priority: PriorityImmediate})

		Batch(func() {
			count.Write(1)
			assert.Equal(t, []string{"run", "run"}, log, "immediate effects run inline, not deferred to the end of the batch")
			count.Write(2)
		})

		assert.Equal(t, []string{"run", "run", "run"}, log)
	})

	t.Run("BatchValue returns the thunk's result", func(t *testing.T) {
		count := NewSignal(1)

		result := BatchValue(func() int {
			count.Write(10)
			return count.Read() + 1
		})

		assert.Equal(t, 11, result)
		assert.Equal(t, 10, count.Read())
	})
}

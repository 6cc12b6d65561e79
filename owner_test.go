package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwner(t *testing.T) {
	t.Run("runs function and disposes", func(t *testing.T) {
		log := []string{}
		o := NewOwner()

		err := o.Run(func() error {
			log = append(log, "ran")
			OnCleanup(func() {
				log = append(log, "cleanup")
			})
			return nil
		})
		assert.NoError(t, err)

		o.Dispose()
		o.Dispose() // idempotent

		assert.Equal(t, []string{"ran", "cleanup"}, log)
	})

	t.Run("nested owners", func(t *testing.T) {
		log := []string{}
		outer := NewOwner()

		var inner *Owner
		outer.Run(func() error {
			inner = NewOwner()
			inner.OnDispose(func() {
				log = append(log, "inner disposed")
			})
			return nil
		})

		outer.OnDispose(func() {
			log = append(log, "outer disposed")
		})

		outer.Dispose()
		assert.Equal(t, []string{"inner disposed", "outer disposed"}, log)
	})

	t.Run("sibling effects stop re-running after disposal", func(t *testing.T) {
		log := []string{}
		count := NewSignal(0)
		o := NewOwner()

		o.Run(func() error {
			NewEffect(func() {
				log = append(log, "first")
				count.Read()
			})
			NewEffect(func() {
				log = append(log, "second")
				count.Read()
			})
			return nil
		})

		log = nil
		o.Dispose()
		count.Write(1) // neither effect should re-run

		assert.Empty(t, log)
	})

	t.Run("catches panics with OnError", func(t *testing.T) {
		var caught any
		count := NewSignal(0)
		o := NewOwner()

		o.OnError(func(r any) { caught = r })
		o.Run(func() error {
			NewEffect(func() {
				if count.Read() == 1 {
					panic("boom")
				}
			})
			return nil
		})

		count.Write(1)
		assert.Equal(t, "boom", caught)
	})

	t.Run("disposal prevents effect re-runs", func(t *testing.T) {
		ran := 0
		count := NewSignal(0)
		o := NewOwner()

		o.Run(func() error {
			NewEffect(func() {
				ran++
				count.Read()
			})
			return nil
		})

		o.Dispose()
		count.Write(1)
		count.Write(2)

		assert.Equal(t, 1, ran)
	})

	t.Run("disposal during effect execution", func(t *testing.T) {
		log := []string{}
		count := NewSignal(0)
		o := NewOwner()

		// Watchdog effect has no owner and is registered first: it must run
		// before the owned effect below on the same write, since subscribers
		// fire in the order they were linked.
		NewEffect(func() {
			if count.Read() == 1 {
				log = append(log, "watchdog")
				o.Dispose()
			}
		})

		o.Run(func() error {
			NewEffect(func() {
				log = append(log, "owned")
				count.Read()
			})
			return nil
		})

		log = nil
		count.Write(1)

		assert.Equal(t, []string{"watchdog"}, log)
	})
}

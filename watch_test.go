package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWatch(t *testing.T) {
	t.Run("runs on every change, not immediately", func(t *testing.T) {
		type change struct{ old, new int }
		var changes []change

		count := NewSignal(0)
		Watch(count, func(old, new int) {
			changes = append(changes, change{old, new})
		}, false)

		count.Write(1)
		count.Write(2)

		assert.Equal(t, []change{{0, 1}, {1, 2}}, changes)
	})

	t.Run("immediate fires once with the current value", func(t *testing.T) {
		type change struct{ old, new int }
		var changes []change

		count := NewSignal(5)
		Watch(count, func(old, new int) {
			changes = append(changes, change{old, new})
		}, true)

		assert.Equal(t, []change{{5, 5}}, changes)
	})

	t.Run("Stop cancels the subscription", func(t *testing.T) {
		ran := 0
		count := NewSignal(0)

		h := Watch(count, func(old, new int) { ran++ }, false)
		count.Write(1)
		h.Stop()
		count.Write(2)

		assert.Equal(t, 1, ran)
	})

	t.Run("does not count as a reactive read", func(t *testing.T) {
		effectRuns := 0
		count := NewSignal(0)

		NewEffect(func() {
			effectRuns++
			Watch(count, func(old, new int) {}, false)
		})

		count.Write(1) // should not re-run the outer effect a second time per watch fire
		assert.Equal(t, 1, effectRuns)
	})
}

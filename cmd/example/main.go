// Command example wires up a small counter UI component with a derived
// total, a render effect, and a user-level logging effect, to demonstrate
// the render/user settled split and batching.
package main

import (
	"fmt"
	"time"

	"github.com/vela-lang/reactive"
)

func main() {
	owner := reactive.NewOwner()

	owner.Run(func() error {
		a := reactive.NewSignal(1)
		b := reactive.NewSignal(2)

		sum := reactive.NewComputed(func() int {
			result := a.Read() + b.Read()
			fmt.Println("  [computed] sum recomputed:", result)
			return result
		})

		reactive.NewRenderEffect(func() {
			fmt.Println("  [render] sum is now:", sum.Read())
		})

		reactive.NewEffect(func() {
			fmt.Println("  [user] logging sum:", sum.Read())
		})

		reactive.OnRenderSettled(func() {
			fmt.Println("  [render settled]")
		})
		reactive.OnUserSettled(func() {
			fmt.Println("  [user settled]")
		})
		reactive.OnSettled(func() {
			fmt.Println("  [settled]")
		})

		fmt.Println("updating a and b in a batch...")
		reactive.Batch(func() {
			a.Write(10)
			b.Write(20)
		})

		return nil
	})

	time.Sleep(50 * time.Millisecond)
	owner.Dispose()
}

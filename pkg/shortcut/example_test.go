package shortcut_test

import (
	"fmt"
	"math"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/shortcut"
)

func ExampleBrent() {
	root, err := shortcut.Brent(func(x float64) float64 { return x*x - 2 }, 0, 2, 1e-12, 100)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%.6f %v\n", root, math.Abs(root-math.Sqrt2) < 1e-9)
	// Output: 1.414214 true
}

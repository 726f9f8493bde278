package layout_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/modhouse/pkg/catalog/catalogtest"
	"github.com/matzehuels/modhouse/pkg/layout"
)

func ExampleBuildMatrix() {
	// Two levels of START, B, B, C, END modules at section width W4
	dnas := catalogtest.TwoStorey(4)

	m, err := layout.BuildMatrix(context.Background(), catalogtest.Index(), catalogtest.SystemID, dnas)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("Section:", m.SectionType)
	fmt.Println("Levels:", len(m.Levels))
	for _, col := range m.Columns {
		fmt.Printf("%s %s depth=%.1f\n", col.Role, col.GridType, col.Depth)
	}
	// Output:
	// Section: W4
	// Levels: 2
	// start A depth=1.2
	// mid B depth=2.4
	// mid C depth=2.4
	// end A depth=1.2
}

package assembly

import (
	"fmt"
)

// NonMonotonicGeometryError is returned when two sections of one
// category end at the same elevation, the stacking order cannot be
// decided and is never guessed.
type NonMonotonicGeometryError struct {
	Category  string
	Elevation float64
}

func (e *NonMonotonicGeometryError) Error() string {
	return fmt.Sprintf(`duplicate elevation %v in "%s" sections, stacking order is ambiguous`, e.Elevation, e.Category)
}

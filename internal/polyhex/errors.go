package polyhex

import (
	"errors"

	"github.com/talgya/polyhex/internal/hex"
)

// Error kinds returned by the core. Callers match them with errors.Is; the
// core never retries.
var (
	// ErrConfiguration is a permanent unsupported-layout condition.
	ErrConfiguration = hex.ErrUnsupported
	// ErrValidation reports malformed input: edge list length, coordinate
	// shape, radius, geometry mismatch, unknown tiling or encoding.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicatePlacement reports an insert at an occupied coordinate.
	ErrDuplicatePlacement = errors.New("coordinate already occupied")
	// ErrOccupancy reports a token placed on an occupied or incompatible cell.
	ErrOccupancy = errors.New("cell cannot take token")
)

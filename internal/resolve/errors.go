package resolve

import (
	"github.com/rotisserie/eris"
)

// ErrMemoryLimit is returned when the memory guard aborts a run. No
// partial result accompanies it.
var ErrMemoryLimit = eris.New("resolve: memory usage exceeded safety limit")

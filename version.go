package verdant

import _ "embed"

// Version is the release of the library and the verdant binary.
//
//go:embed VERSION
var Version string

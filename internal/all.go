// Package internal wires in every package that registers event listeners in
// its init function.
package internal

import (
	_ "github.com/psource-dev/psman/internal/api_v1"
)

// Package all registers all shell commands.
package all

import (
	// commands
	_ "github.com/robotalks/digipot.go/pkg/cli/cmds/digipot"
)

// Package cli holds the attendancectl subcommands.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
)

// Context is passed to every command's Run method.
type Context struct {
	Log *log.Logger
	Out io.Writer
}

//go:build !linux || !cgo

package gpu

import (
	"errors"
	"log/slog"
)

var errNoCgo = errors.New("gpu: requires linux and cgo")

// Context is a zero-functionality stand-in on platforms without a
// cgo-capable EGL/GLES toolchain.
type Context struct{}

// NewContext always fails on this build.
func NewContext(log *slog.Logger) (*Context, error) {
	return nil, errNoCgo
}

func (c *Context) MakeCurrent() error { return errNoCgo }

func (c *Context) Close() {}

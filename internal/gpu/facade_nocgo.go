//go:build !linux || !cgo

package gpu

import (
	"log/slog"

	"github.com/wlblur/wlblurd/internal/params"
)

// RenderTarget is a zero-functionality stand-in on this build.
type RenderTarget struct {
	Width, Height uint32
}

// Pool is a zero-functionality stand-in on this build.
type Pool struct{}

// NewPool returns an unusable pool; every Acquire fails.
func NewPool() *Pool { return &Pool{} }

func (p *Pool) Acquire(w, h uint32) (*RenderTarget, error) { return nil, errNoCgo }
func (p *Pool) Release(t *RenderTarget)                    {}
func (p *Pool) Close()                                     {}

// Engine is a zero-functionality stand-in on this build.
type Engine struct{}

// NewEngine always fails on this build.
func NewEngine(pool *Pool) (*Engine, error) { return nil, errNoCgo }

func (e *Engine) Close() {}

func (e *Engine) Run(inputTex uint32, w, h uint32, p params.Set) (*RenderTarget, error) {
	return nil, errNoCgo
}

// Service is a zero-functionality stand-in on this build.
type Service struct{}

// NewService always fails on this build: C1-C6 require linux and cgo.
func NewService(log *slog.Logger) (*Service, error) { return nil, errNoCgo }

func (s *Service) Close() {}

func (s *Service) LastError() error { return errNoCgo }

func (s *Service) ApplyBlur(input BufferAttribs, p params.Set) (BufferAttribs, error) {
	return BufferAttribs{}, errNoCgo
}

func (c *Context) Import(attribs BufferAttribs) (uint32, error) { return 0, errNoCgo }

func (c *Context) Export(tex uint32, width, height uint32) (BufferAttribs, error) {
	return BufferAttribs{}, errNoCgo
}

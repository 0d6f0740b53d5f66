//go:build linux && cgo

package gpu

import (
	"fmt"
	"log/slog"

	gl "github.com/go-gl/gl/v3.1/gles2"

	"github.com/wlblur/wlblurd/internal/params"
)

// Service is C6's single entry point: given an input buffer descriptor
// and parameters, it imports, runs the engine, exports, and returns
// the output descriptor. It owns the process-wide GPU context, the
// render-target pool, and the blur engine.
type Service struct {
	ctx    *Context
	pool   *Pool
	engine *Engine

	lastErr error
}

// NewService acquires the GPU context, shader programs, and render
// target pool needed to serve requests.
func NewService(log *slog.Logger) (*Service, error) {
	ctx, err := NewContext(log)
	if err != nil {
		return nil, err
	}
	if err := gl.Init(); err != nil {
		ctx.Close()
		return nil, fmt.Errorf("gpu: gl.Init: %w", err)
	}
	pool := NewPool()
	engine, err := NewEngine(pool)
	if err != nil {
		pool.Close()
		ctx.Close()
		return nil, err
	}
	return &Service{ctx: ctx, pool: pool, engine: engine}, nil
}

// Close tears the service down in reverse acquisition order.
func (s *Service) Close() {
	s.engine.Close()
	s.pool.Close()
	s.ctx.Close()
}

// LastError returns the error set by the most recent failed
// ApplyBlur call, or nil after a success. Kept as a plain field rather
// than a thread-local: the daemon's single-goroutine discipline is the
// only caller of this value (see DESIGN.md Open Question 6).
func (s *Service) LastError() error { return s.lastErr }

// ApplyBlur implements spec §4.6's apply_blur: validate params,
// make the context current, import, run the engine, export, and clean
// up the imported texture.
func (s *Service) ApplyBlur(input BufferAttribs, p params.Set) (BufferAttribs, error) {
	if err := params.Validate(p); err != nil {
		s.lastErr = fmt.Errorf("%w: %v", ErrInvalidParams, err)
		return BufferAttribs{}, s.lastErr
	}

	if err := s.ctx.MakeCurrent(); err != nil {
		s.lastErr = err
		return BufferAttribs{}, err
	}

	inputTex, err := s.ctx.Import(input)
	if err != nil {
		s.lastErr = err
		return BufferAttribs{}, err
	}

	target, err := s.engine.Run(inputTex, input.Width, input.Height, p)
	if err != nil {
		gl.DeleteTextures(1, &inputTex)
		s.lastErr = err
		return BufferAttribs{}, err
	}

	out, err := s.ctx.Export(target.Texture, target.Width, target.Height)
	if err != nil {
		gl.DeleteTextures(1, &inputTex)
		s.pool.Release(target)
		s.lastErr = err
		return BufferAttribs{}, err
	}

	gl.DeleteTextures(1, &inputTex)
	s.pool.Release(target)
	s.lastErr = nil
	return out, nil
}

//go:build linux && cgo

package gpu

import (
	"fmt"

	gl "github.com/go-gl/gl/v3.1/gles2"
)

// PoolCapacity is the hard cap on cached render targets (spec §4.3).
const PoolCapacity = 16

// RenderTarget is a framebuffer backed by an 8-bit-per-channel RGBA
// color texture, linear-filtered, clamp-to-edge. Created once per
// distinct (width, height) seen by the pool, reused thereafter.
type RenderTarget struct {
	FBO     uint32
	Texture uint32
	Width   uint32
	Height  uint32
	inUse   bool
}

// Pool is the fixed-capacity render target cache described in spec
// §4.3, grounded on framebuffer.c's acquire/release/pool semantics.
type Pool struct {
	targets []*RenderTarget
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{targets: make([]*RenderTarget, 0, PoolCapacity)}
}

// Acquire returns a render target of exactly (w, h), creating one if
// the pool has no free match and is under capacity. Fails with
// ErrPoolExhausted once the pool is at capacity and every (w,h) match
// is in use.
func (p *Pool) Acquire(w, h uint32) (*RenderTarget, error) {
	for _, t := range p.targets {
		if t.Width == w && t.Height == h && !t.inUse {
			t.inUse = true
			return t, nil
		}
	}
	if len(p.targets) >= PoolCapacity {
		return nil, ErrPoolExhausted
	}
	t, err := newRenderTarget(w, h)
	if err != nil {
		return nil, err
	}
	t.inUse = true
	p.targets = append(p.targets, t)
	return t, nil
}

// Release clears t's in-use flag. t is never destroyed until pool
// teardown, per spec's pool-aging design note.
func (p *Pool) Release(t *RenderTarget) {
	t.inUse = false
}

// Close destroys every target the pool has ever created.
func (p *Pool) Close() {
	for _, t := range p.targets {
		gl.DeleteFramebuffers(1, &t.FBO)
		gl.DeleteTextures(1, &t.Texture)
	}
	p.targets = nil
}

func newRenderTarget(w, h uint32) (*RenderTarget, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fbo)
		gl.DeleteTextures(1, &tex)
		return nil, fmt.Errorf("gpu: %w: framebuffer incomplete 0x%x", ErrRenderFailed, status)
	}

	return &RenderTarget{FBO: fbo, Texture: tex, Width: w, Height: h}, nil
}

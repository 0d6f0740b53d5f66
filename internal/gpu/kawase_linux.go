//go:build linux && cgo

package gpu

import (
	"fmt"

	gl "github.com/go-gl/gl/v3.1/gles2"

	"github.com/wlblur/wlblurd/internal/params"
)

var quadVertices = [8]float32{
	-1, -1,
	1, -1,
	-1, 1,
	1, 1,
}

// Engine runs the Dual Kawase downsample/upsample/finish passes over
// an imported texture, per spec §4.5. It owns the shared fullscreen
// quad geometry, the program store (C4), and the render-target pool
// (C3) it draws into.
type Engine struct {
	programs *ProgramStore
	pool     *Pool
	quadVAO  uint32
	quadVBO  uint32
}

// NewEngine compiles the engine's shader programs and allocates the
// shared quad geometry.
func NewEngine(pool *Pool) (*Engine, error) {
	programs, err := NewProgramStore(vertexShaderSrc, downsampleFragSrc, upsampleFragSrc, finishFragSrc)
	if err != nil {
		return nil, err
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(&quadVertices[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	return &Engine{programs: programs, pool: pool, quadVAO: vao, quadVBO: vbo}, nil
}

// Close releases the engine's GPU-resident state. The pool passed to
// NewEngine is not owned by the engine and is not closed here.
func (e *Engine) Close() {
	e.programs.Close()
	gl.DeleteVertexArrays(1, &e.quadVAO)
	gl.DeleteBuffers(1, &e.quadVBO)
}

func (e *Engine) drawQuad() {
	gl.BindVertexArray(e.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}

// Run executes the downsample pyramid, the upsample pyramid, and the
// finish pass over inputTex (size w x h) per p. On success it returns
// the finish target, still marked in-use in the pool -- the caller
// (the façade) must release it back to the pool once it has exported
// the texture. Every intermediate target is released before Run
// returns, on both the success and failure paths.
func (e *Engine) Run(inputTex uint32, w, h uint32, p params.Set) (*RenderTarget, error) {
	n := int(p.Passes)
	sizes := kawasePlan(w, h, n)

	downTargets := make([]*RenderTarget, 0, n)
	release := func() {
		for _, t := range downTargets {
			e.pool.Release(t)
		}
	}

	var prevSourceTex uint32 = inputTex
	for i := 0; i < n; i++ {
		t, err := e.pool.Acquire(sizes[i].W, sizes[i].H)
		if err != nil {
			release()
			return nil, fmt.Errorf("gpu: downsample pass %d: %w", i, err)
		}
		downTargets = append(downTargets, t)

		if err := e.renderPass(e.programs.downsample, t, prevSourceTex, p.Radius+float32(i), params.Set{}); err != nil {
			release()
			return nil, err
		}
		prevSourceTex = t.Texture
	}

	// Upsample pyramid: walk back up from the deepest downsample
	// target to a freshly acquired full-resolution target.
	prevSourceTex = downTargets[n-1].Texture
	var fullResTarget *RenderTarget
	for i := n - 1; i >= 0; i-- {
		var dest *RenderTarget
		var err error
		if i > 0 {
			dest = downTargets[i-1]
		} else {
			dest, err = e.pool.Acquire(w, h)
			if err != nil {
				release()
				return nil, fmt.Errorf("gpu: upsample final pass: %w", err)
			}
			fullResTarget = dest
		}

		if err := e.renderPass(e.programs.upsample, dest, prevSourceTex, p.Radius+float32(i), params.Set{}); err != nil {
			release()
			if fullResTarget != nil {
				e.pool.Release(fullResTarget)
			}
			return nil, err
		}
		prevSourceTex = dest.Texture
	}

	finishTarget, err := e.pool.Acquire(w, h)
	if err != nil {
		release()
		e.pool.Release(fullResTarget)
		return nil, fmt.Errorf("gpu: finish pass target: %w", err)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, finishTarget.FBO)
	gl.Viewport(0, 0, int32(w), int32(h))
	e.programs.finish.bind()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, prevSourceTex)
	if e.programs.finish.uSrcTex >= 0 {
		gl.Uniform1i(e.programs.finish.uSrcTex, 0)
	}
	e.programs.finish.setFinishUniforms(p.Brightness, p.Contrast, p.Saturation, p.Noise)
	e.drawQuad()

	release()
	e.pool.Release(fullResTarget)

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		e.pool.Release(finishTarget)
		return nil, fmt.Errorf("gpu: %w: gl error 0x%x after finish pass", ErrRenderFailed, glErr)
	}

	return finishTarget, nil
}

// renderPass binds dest's framebuffer, sets the standard downsample or
// upsample uniforms (sampler, half-pixel, radius), draws the quad, and
// checks for a GL error. extra is unused and reserved for future
// per-pass parameters.
func (e *Engine) renderPass(prog program, dest *RenderTarget, sourceTex uint32, radius float32, extra params.Set) error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, dest.FBO)
	gl.Viewport(0, 0, int32(dest.Width), int32(dest.Height))
	prog.bind()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, sourceTex)
	if prog.uSrcTex >= 0 {
		gl.Uniform1i(prog.uSrcTex, 0)
	}
	prog.setHalfPixel(0.5/float32(dest.Width), 0.5/float32(dest.Height))
	prog.setRadius(radius)
	e.drawQuad()
	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		return fmt.Errorf("gpu: %w: gl error 0x%x", ErrRenderFailed, glErr)
	}
	return nil
}

//go:build linux && cgo

package gpu

import (
	"errors"
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v3.1/gles2"
)

// program is a linked GL program plus its cached uniform handles. A
// missing uniform (optimized away by the compiler) is recorded as -1
// and silently skipped when set, per spec §4.4.
type program struct {
	id uint32

	uSrcTex     int32
	uHalfPixel  int32
	uRadius     int32
	uBrightness int32
	uContrast   int32
	uSaturation int32
	uNoise      int32
}

func (p program) bind() { gl.UseProgram(p.id) }

func (p program) setHalfPixel(x, y float32) {
	if p.uHalfPixel >= 0 {
		gl.Uniform2f(p.uHalfPixel, x, y)
	}
}

func (p program) setRadius(r float32) {
	if p.uRadius >= 0 {
		gl.Uniform1f(p.uRadius, r)
	}
}

func (p program) setFinishUniforms(brightness, contrast, saturation, noise float32) {
	if p.uBrightness >= 0 {
		gl.Uniform1f(p.uBrightness, brightness)
	}
	if p.uContrast >= 0 {
		gl.Uniform1f(p.uContrast, contrast)
	}
	if p.uSaturation >= 0 {
		gl.Uniform1f(p.uSaturation, saturation)
	}
	if p.uNoise >= 0 {
		gl.Uniform1f(p.uNoise, noise)
	}
}

func (p program) delete() { gl.DeleteProgram(p.id) }

// ProgramStore holds the three fragment programs (downsample, upsample,
// finish) sharing one vertex program, compiled and linked once at
// engine initialization (spec §4.4).
type ProgramStore struct {
	downsample program
	upsample   program
	finish     program
}

// NewProgramStore compiles and links the three blur programs from the
// given GLSL ES sources.
func NewProgramStore(vertexSrc, downsampleSrc, upsampleSrc, finishSrc string) (*ProgramStore, error) {
	ds, err := compileProgram(vertexSrc, downsampleSrc)
	if err != nil {
		return nil, fmt.Errorf("gpu: downsample program: %w", err)
	}
	us, err := compileProgram(vertexSrc, upsampleSrc)
	if err != nil {
		ds.delete()
		return nil, fmt.Errorf("gpu: upsample program: %w", err)
	}
	fp, err := compileProgram(vertexSrc, finishSrc)
	if err != nil {
		ds.delete()
		us.delete()
		return nil, fmt.Errorf("gpu: finish program: %w", err)
	}
	return &ProgramStore{downsample: ds, upsample: us, finish: fp}, nil
}

// Close deletes every compiled program.
func (s *ProgramStore) Close() {
	s.downsample.delete()
	s.upsample.delete()
	s.finish.delete()
}

func compileProgram(vertexSrc, fragmentSrc string) (program, error) {
	id := gl.CreateProgram()
	if id == 0 {
		return program{}, errors.New("gl: CreateProgram returned 0 -- is a context current on this thread?")
	}

	var shaders []uint32
	var linked bool
	defer func() {
		for _, sid := range shaders {
			if linked {
				gl.DetachShader(id, sid)
			}
			gl.DeleteShader(sid)
		}
	}()

	vid, err := compileShader(gl.VERTEX_SHADER, vertexSrc)
	if err != nil {
		gl.DeleteProgram(id)
		return program{}, fmt.Errorf("vertex shader: %w", err)
	}
	gl.AttachShader(id, vid)
	shaders = append(shaders, vid)

	fid, err := compileShader(gl.FRAGMENT_SHADER, fragmentSrc)
	if err != nil {
		gl.DeleteProgram(id)
		return program{}, fmt.Errorf("fragment shader: %w", err)
	}
	gl.AttachShader(id, fid)
	shaders = append(shaders, fid)

	gl.LinkProgram(id)
	if err := linkError(id); err != nil {
		gl.DeleteProgram(id)
		return program{}, fmt.Errorf("link: %w", err)
	}
	linked = true

	uloc := func(name string) int32 { return gl.GetUniformLocation(id, gl.Str(name+"\x00")) }
	return program{
		id:          id,
		uSrcTex:     uloc("u_tex"),
		uHalfPixel:  uloc("u_halfpixel"),
		uRadius:     uloc("u_radius"),
		uBrightness: uloc("u_brightness"),
		uContrast:   uloc("u_contrast"),
		uSaturation: uloc("u_saturation"),
		uNoise:      uloc("u_noise"),
	}, nil
}

func compileShader(shaderType uint32, src string) (uint32, error) {
	if !strings.HasSuffix(src, "\x00") {
		src += "\x00"
	}
	id := gl.CreateShader(shaderType)
	if id == 0 {
		return 0, errors.New("CreateShader returned 0")
	}
	csrc, free := gl.Strs(src)
	gl.ShaderSource(id, 1, csrc, nil)
	free()
	gl.CompileShader(id)

	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		log := shaderInfoLog(id)
		gl.DeleteShader(id)
		return 0, errors.New(log)
	}
	return id, nil
}

func linkError(id uint32) error {
	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(id, logLen, nil, &log[0])
		return errors.New(string(log))
	}
	return nil
}

func shaderInfoLog(id uint32) string {
	var logLen int32
	gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return "shader compile failed with no log"
	}
	log := make([]byte, logLen+1)
	gl.GetShaderInfoLog(id, logLen, nil, &log[0])
	return string(log)
}

//go:build linux && cgo

package gpu

/*
#include <EGL/egl.h>
#include <EGL/eglext.h>
#include <GLES2/gl2.h>
*/
import "C"

import (
	"fmt"

	gl "github.com/go-gl/gl/v3.1/gles2"
)

// Import implements C2's import path: builds the driver attribute
// list from attribs (per-plane fd/offset/stride, modifier split into
// low/high halves when not the sentinel), creates an EGLImage from the
// DMA-BUF, and binds it to a new GL texture.
//
// The returned texture retains the image's contents after the EGLImage
// handle itself is destroyed, matching dmabuf.c's
// wlblur_dmabuf_import.
func (c *Context) Import(attribs BufferAttribs) (uint32, error) {
	if attribs.NumPlanes < 1 || attribs.NumPlanes > MaxPlanes {
		return 0, fmt.Errorf("gpu: %w: num_planes %d out of range", ErrInvalidParams, attribs.NumPlanes)
	}

	a := make([]C.EGLint, 0, 50)
	push := func(v C.EGLint) { a = append(a, v) }

	push(C.EGL_WIDTH)
	push(C.EGLint(attribs.Width))
	push(C.EGL_HEIGHT)
	push(C.EGLint(attribs.Height))
	push(C.EGL_LINUX_DRM_FOURCC_EXT)
	push(C.EGLint(attribs.Format))

	planeFDAttr := [MaxPlanes]C.EGLint{C.EGL_DMA_BUF_PLANE0_FD_EXT, C.EGL_DMA_BUF_PLANE1_FD_EXT, C.EGL_DMA_BUF_PLANE2_FD_EXT, C.EGL_DMA_BUF_PLANE3_FD_EXT}
	planeOffsetAttr := [MaxPlanes]C.EGLint{C.EGL_DMA_BUF_PLANE0_OFFSET_EXT, C.EGL_DMA_BUF_PLANE1_OFFSET_EXT, C.EGL_DMA_BUF_PLANE2_OFFSET_EXT, C.EGL_DMA_BUF_PLANE3_OFFSET_EXT}
	planeStrideAttr := [MaxPlanes]C.EGLint{C.EGL_DMA_BUF_PLANE0_PITCH_EXT, C.EGL_DMA_BUF_PLANE1_PITCH_EXT, C.EGL_DMA_BUF_PLANE2_PITCH_EXT, C.EGL_DMA_BUF_PLANE3_PITCH_EXT}
	planeModLoAttr := [MaxPlanes]C.EGLint{C.EGL_DMA_BUF_PLANE0_MODIFIER_LO_EXT, C.EGL_DMA_BUF_PLANE1_MODIFIER_LO_EXT, C.EGL_DMA_BUF_PLANE2_MODIFIER_LO_EXT, C.EGL_DMA_BUF_PLANE3_MODIFIER_LO_EXT}
	planeModHiAttr := [MaxPlanes]C.EGLint{C.EGL_DMA_BUF_PLANE0_MODIFIER_HI_EXT, C.EGL_DMA_BUF_PLANE1_MODIFIER_HI_EXT, C.EGL_DMA_BUF_PLANE2_MODIFIER_HI_EXT, C.EGL_DMA_BUF_PLANE3_MODIFIER_HI_EXT}

	for i := 0; i < attribs.NumPlanes; i++ {
		p := attribs.Planes[i]
		push(planeFDAttr[i])
		push(C.EGLint(p.FD))
		push(planeOffsetAttr[i])
		push(C.EGLint(p.Offset))
		push(planeStrideAttr[i])
		push(C.EGLint(p.Stride))
		if attribs.Modifier != DRMFormatModInvalid {
			push(planeModLoAttr[i])
			push(C.EGLint(uint32(attribs.Modifier)))
			push(planeModHiAttr[i])
			push(C.EGLint(uint32(attribs.Modifier >> 32)))
		}
	}
	push(C.EGL_NONE)

	image := C.wlblur_CreateImageKHR(c.createImageKHR, c.display, C.EGL_NO_CONTEXT, C.EGL_LINUX_DMA_BUF_EXT, nil, &a[0])
	if image == C.EGL_NO_IMAGE_KHR {
		return 0, fmt.Errorf("gpu: %w: eglCreateImageKHR failed: 0x%x", ErrImportFailed, C.eglGetError())
	}
	defer C.wlblur_DestroyImageKHR(c.destroyImageKHR, c.display, image)

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	C.wlblur_ImageTargetTexture2DOES(c.imageTargetTex2DOES, C.GL_TEXTURE_2D, C.GLeglImageOES(image))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("gpu: %w: gl error 0x%x during import", ErrImportFailed, glErr)
	}
	return tex, nil
}

// Export implements C2's export path: creates an EGLImage from tex,
// queries its format/plane-count/modifier, extracts per-plane
// descriptors/strides/offsets, and returns a populated BufferAttribs
// the caller owns.
func (c *Context) Export(tex uint32, width, height uint32) (BufferAttribs, error) {
	out := BufferAttribs{Width: width, Height: height}
	for i := range out.Planes {
		out.Planes[i].FD = -1
	}

	image := C.wlblur_CreateImageKHR(c.createImageKHR, c.display, c.egl, C.EGL_GL_TEXTURE_2D, C.EGLClientBuffer(uintptr(tex)), nil)
	if image == C.EGL_NO_IMAGE_KHR {
		return BufferAttribs{}, fmt.Errorf("gpu: %w: eglCreateImageKHR failed: 0x%x", ErrExportFailed, C.eglGetError())
	}
	defer C.wlblur_DestroyImageKHR(c.destroyImageKHR, c.display, image)

	var fourcc, numPlanes C.int
	var modifiers [MaxPlanes]C.EGLuint64KHR
	if C.wlblur_ExportDMABUFImageQueryMESA(c.exportDMABUFQueryMESA, c.display, image, &fourcc, &numPlanes, &modifiers[0]) == C.EGL_FALSE {
		return BufferAttribs{}, fmt.Errorf("gpu: %w: eglExportDMABUFImageQueryMESA failed: 0x%x", ErrExportFailed, C.eglGetError())
	}
	if numPlanes < 1 || numPlanes > MaxPlanes {
		return BufferAttribs{}, fmt.Errorf("gpu: %w: driver reported %d planes", ErrExportFailed, int(numPlanes))
	}

	var fds [MaxPlanes]C.int
	var strides, offsets [MaxPlanes]C.EGLint
	if C.wlblur_ExportDMABUFImageMESA(c.exportDMABUFMESA, c.display, image, &fds[0], &strides[0], &offsets[0]) == C.EGL_FALSE {
		return BufferAttribs{}, fmt.Errorf("gpu: %w: eglExportDMABUFImageMESA failed: 0x%x", ErrExportFailed, C.eglGetError())
	}

	out.Format = uint32(fourcc)
	out.Modifier = uint64(modifiers[0])
	out.NumPlanes = int(numPlanes)
	for i := 0; i < out.NumPlanes; i++ {
		out.Planes[i] = PlaneAttribs{
			FD:     int(fds[i]),
			Offset: uint32(offsets[i]),
			Stride: uint32(strides[i]),
		}
	}
	return out, nil
}

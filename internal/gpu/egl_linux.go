//go:build linux && cgo

package gpu

/*
#cgo LDFLAGS: -lEGL -lGLESv2
#include <EGL/egl.h>
#include <EGL/eglext.h>
#include <GLES2/gl2.h>
#include <stdlib.h>

typedef EGLImageKHR (*PFNEGLCREATEIMAGEKHR)(EGLDisplay, EGLContext, EGLenum, EGLClientBuffer, const EGLint *);
typedef EGLBoolean (*PFNEGLDESTROYIMAGEKHR)(EGLDisplay, EGLImageKHR);
typedef EGLBoolean (*PFNEGLEXPORTDMABUFIMAGEMESA)(EGLDisplay, EGLImageKHR, int *, EGLint *, EGLint *);
typedef EGLBoolean (*PFNEGLEXPORTDMABUFIMAGEQUERYMESA)(EGLDisplay, EGLImageKHR, int *, int *, EGLuint64KHR *);
typedef void (*PFNGLEGLIMAGETARGETTEXTURE2DOES)(GLenum, GLeglImageOES);

static EGLImageKHR wlblur_CreateImageKHR(PFNEGLCREATEIMAGEKHR fn, EGLDisplay dpy, EGLContext ctx, EGLenum target, EGLClientBuffer buf, const EGLint *attrs) {
	return fn(dpy, ctx, target, buf, attrs);
}
static EGLBoolean wlblur_DestroyImageKHR(PFNEGLDESTROYIMAGEKHR fn, EGLDisplay dpy, EGLImageKHR img) {
	return fn(dpy, img);
}
static EGLBoolean wlblur_ExportDMABUFImageMESA(PFNEGLEXPORTDMABUFIMAGEMESA fn, EGLDisplay dpy, EGLImageKHR img, int *fds, EGLint *strides, EGLint *offsets) {
	return fn(dpy, img, fds, strides, offsets);
}
static EGLBoolean wlblur_ExportDMABUFImageQueryMESA(PFNEGLEXPORTDMABUFIMAGEQUERYMESA fn, EGLDisplay dpy, EGLImageKHR img, int *fourcc, int *numPlanes, EGLuint64KHR *modifiers) {
	return fn(dpy, img, fourcc, numPlanes, modifiers);
}
static void wlblur_ImageTargetTexture2DOES(PFNGLEGLIMAGETARGETTEXTURE2DOES fn, GLenum target, GLeglImageOES image) {
	fn(target, image);
}
*/
import "C"

import (
	"fmt"
	"log/slog"
	"strings"
	"unsafe"
)

// Context wraps a surfaceless EGL display and OpenGL ES 3.0-class
// context, grounded on egl_helpers.c's wlblur_egl_create. Exactly one
// Context should exist per process (C1's contract).
type Context struct {
	display C.EGLDisplay
	config  C.EGLConfig
	egl     C.EGLContext

	createImageKHR      C.PFNEGLCREATEIMAGEKHR
	destroyImageKHR     C.PFNEGLDESTROYIMAGEKHR
	exportDMABUFMESA    C.PFNEGLEXPORTDMABUFIMAGEMESA
	exportDMABUFQueryMESA C.PFNEGLEXPORTDMABUFIMAGEQUERYMESA
	imageTargetTex2DOES C.PFNGLEGLIMAGETARGETTEXTURE2DOES

	log *slog.Logger
}

// NewContext acquires the default EGL display, verifies the required
// extension set, creates a surfaceless OpenGL ES 3.0 context, and
// makes it current. The returned Context is ready for C2-C5 use.
func NewContext(log *slog.Logger) (*Context, error) {
	if log == nil {
		log = slog.Default()
	}
	ctx := &Context{log: log}

	ctx.display = C.eglGetDisplay(C.EGL_DEFAULT_DISPLAY)
	if ctx.display == C.EGL_NO_DISPLAY {
		return nil, fmt.Errorf("gpu: eglGetDisplay failed: 0x%x", C.eglGetError())
	}

	var major, minor C.EGLint
	if C.eglInitialize(ctx.display, &major, &minor) == C.EGL_FALSE {
		return nil, fmt.Errorf("gpu: eglInitialize failed: 0x%x", C.eglGetError())
	}
	log.Debug("egl initialized", slog.Int("major", int(major)), slog.Int("minor", int(minor)))

	extsC := C.eglQueryString(ctx.display, C.EGL_EXTENSIONS)
	if extsC == nil {
		C.eglTerminate(ctx.display)
		return nil, fmt.Errorf("gpu: eglQueryString(EGL_EXTENSIONS) failed")
	}
	exts := C.GoString(extsC)

	if !hasExtension(exts, "EGL_KHR_surfaceless_context") && !hasExtension(exts, "EGL_KHR_surfaceless_opengl") {
		C.eglTerminate(ctx.display)
		return nil, fmt.Errorf("gpu: %w: EGL_KHR_surfaceless_context", ErrMissingExtension)
	}
	if !hasExtension(exts, "EGL_EXT_image_dma_buf_import") || !hasExtension(exts, "EGL_KHR_image_base") {
		C.eglTerminate(ctx.display)
		return nil, fmt.Errorf("gpu: %w: EGL_EXT_image_dma_buf_import/EGL_KHR_image_base", ErrMissingExtension)
	}
	if !hasExtension(exts, "EGL_MESA_image_dma_buf_export") {
		C.eglTerminate(ctx.display)
		return nil, fmt.Errorf("gpu: %w: EGL_MESA_image_dma_buf_export", ErrMissingExtension)
	}

	if C.eglBindAPI(C.EGL_OPENGL_ES_API) == C.EGL_FALSE {
		C.eglTerminate(ctx.display)
		return nil, fmt.Errorf("gpu: eglBindAPI failed: 0x%x", C.eglGetError())
	}

	configAttribs := []C.EGLint{
		C.EGL_SURFACE_TYPE, C.EGL_DONT_CARE,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_ES3_BIT,
		C.EGL_RED_SIZE, 8,
		C.EGL_GREEN_SIZE, 8,
		C.EGL_BLUE_SIZE, 8,
		C.EGL_ALPHA_SIZE, 8,
		C.EGL_NONE,
	}
	var numConfigs C.EGLint
	if C.eglChooseConfig(ctx.display, &configAttribs[0], &ctx.config, 1, &numConfigs) == C.EGL_FALSE || numConfigs == 0 {
		C.eglTerminate(ctx.display)
		return nil, fmt.Errorf("gpu: eglChooseConfig failed: 0x%x", C.eglGetError())
	}

	contextAttribs := []C.EGLint{
		C.EGL_CONTEXT_MAJOR_VERSION, 3,
		C.EGL_CONTEXT_MINOR_VERSION, 0,
		C.EGL_NONE,
	}
	ctx.egl = C.eglCreateContext(ctx.display, ctx.config, C.EGL_NO_CONTEXT, &contextAttribs[0])
	if ctx.egl == C.EGL_NO_CONTEXT {
		C.eglTerminate(ctx.display)
		return nil, fmt.Errorf("gpu: eglCreateContext failed: 0x%x", C.eglGetError())
	}

	if C.eglMakeCurrent(ctx.display, C.EGL_NO_SURFACE, C.EGL_NO_SURFACE, ctx.egl) == C.EGL_FALSE {
		C.eglDestroyContext(ctx.display, ctx.egl)
		C.eglTerminate(ctx.display)
		return nil, fmt.Errorf("gpu: eglMakeCurrent failed: 0x%x", C.eglGetError())
	}

	ctx.createImageKHR = (C.PFNEGLCREATEIMAGEKHR)(getProcAddress("eglCreateImageKHR"))
	ctx.destroyImageKHR = (C.PFNEGLDESTROYIMAGEKHR)(getProcAddress("eglDestroyImageKHR"))
	ctx.exportDMABUFMESA = (C.PFNEGLEXPORTDMABUFIMAGEMESA)(getProcAddress("eglExportDMABUFImageMESA"))
	ctx.exportDMABUFQueryMESA = (C.PFNEGLEXPORTDMABUFIMAGEQUERYMESA)(getProcAddress("eglExportDMABUFImageQueryMESA"))
	ctx.imageTargetTex2DOES = (C.PFNGLEGLIMAGETARGETTEXTURE2DOES)(getProcAddress("glEGLImageTargetTexture2DOES"))

	if ctx.createImageKHR == nil || ctx.destroyImageKHR == nil || ctx.imageTargetTex2DOES == nil {
		ctx.Close()
		return nil, fmt.Errorf("gpu: %w: failed to resolve required extension entry points", ErrMissingExtension)
	}
	if ctx.exportDMABUFMESA == nil || ctx.exportDMABUFQueryMESA == nil {
		ctx.Close()
		return nil, fmt.Errorf("gpu: %w: failed to resolve DMA-BUF export entry points", ErrMissingExtension)
	}

	glVersion := C.GoString((*C.char)(unsafe.Pointer(C.glGetString(C.GL_VERSION))))
	log.Info("gpu context ready", slog.String("gles_version", glVersion))

	return ctx, nil
}

// MakeCurrent re-binds this context to the calling thread. C1's
// contract requires this to succeed before any C2-C5 operation.
func (c *Context) MakeCurrent() error {
	if C.eglMakeCurrent(c.display, C.EGL_NO_SURFACE, C.EGL_NO_SURFACE, c.egl) == C.EGL_FALSE {
		return fmt.Errorf("gpu: eglMakeCurrent failed: 0x%x", C.eglGetError())
	}
	return nil
}

// Close tears the context down: unbinds, destroys the EGL context, and
// terminates the display connection.
func (c *Context) Close() {
	if c.display == C.EGL_NO_DISPLAY {
		return
	}
	C.eglMakeCurrent(c.display, C.EGL_NO_SURFACE, C.EGL_NO_SURFACE, C.EGL_NO_CONTEXT)
	if c.egl != C.EGL_NO_CONTEXT {
		C.eglDestroyContext(c.display, c.egl)
	}
	C.eglTerminate(c.display)
	c.display = C.EGL_NO_DISPLAY
}

func getProcAddress(name string) unsafe.Pointer {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return unsafe.Pointer(C.eglGetProcAddress(cname))
}

func hasExtension(exts, name string) bool {
	for _, tok := range strings.Fields(exts) {
		if tok == name {
			return true
		}
	}
	return false
}

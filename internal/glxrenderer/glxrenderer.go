// Package glxrenderer binds a GL context to an externally supplied X11
// window and draws the per-cell slideshow commands. It owns every GL
// object it creates; the window itself is never ours to destroy.
package glxrenderer

/*
#cgo LDFLAGS: -lGL -lX11
#include <X11/Xlib.h>
#include <GL/gl.h>
#include <GL/glx.h>
#include <stdlib.h>

#ifndef GLX_CONTEXT_MAJOR_VERSION_ARB
#define GLX_CONTEXT_MAJOR_VERSION_ARB 0x2091
#define GLX_CONTEXT_MINOR_VERSION_ARB 0x2092
#endif
#ifndef GLX_CONTEXT_PROFILE_MASK_ARB
#define GLX_CONTEXT_PROFILE_MASK_ARB 0x9126
#define GLX_CONTEXT_CORE_PROFILE_BIT_ARB 0x1
#endif

typedef GLXContext (*glXCreateContextAttribsARBProc)(Display*, GLXFBConfig, GLXContext, Bool, const int*);

static Display* open_display() {
	return XOpenDisplay(NULL);
}

static int get_window_size(Display* dpy, Window win, int* width, int* height) {
	XWindowAttributes attrs;
	if (!XGetWindowAttributes(dpy, win, &attrs)) {
		return 0;
	}
	*width = attrs.width;
	*height = attrs.height;
	return 1;
}

static GLXContext create_context(Display* dpy, int screen, Window win) {
	static const int fb_attribs[] = {
		GLX_RENDER_TYPE  , GLX_RGBA_BIT,
		GLX_DRAWABLE_TYPE, GLX_WINDOW_BIT,
		GLX_DOUBLEBUFFER , True,
		GLX_RED_SIZE     , 8,
		GLX_GREEN_SIZE   , 8,
		GLX_BLUE_SIZE    , 8,
		GLX_ALPHA_SIZE   , 8,
		GLX_DEPTH_SIZE   , 16,
		None,
	};

	int count = 0;
	GLXFBConfig* configs = glXChooseFBConfig(dpy, screen, fb_attribs, &count);
	if (configs == NULL || count == 0) {
		return NULL;
	}
	GLXFBConfig config = configs[0];
	XFree(configs);

	glXCreateContextAttribsARBProc create = (glXCreateContextAttribsARBProc)
		glXGetProcAddressARB((const GLubyte*)"glXCreateContextAttribsARB");
	if (create == NULL) {
		return NULL;
	}

	static const int ctx_attribs[] = {
		GLX_CONTEXT_MAJOR_VERSION_ARB, 3,
		GLX_CONTEXT_MINOR_VERSION_ARB, 3,
		GLX_CONTEXT_PROFILE_MASK_ARB, GLX_CONTEXT_CORE_PROFILE_BIT_ARB,
		None,
	};
	GLXContext ctx = create(dpy, config, NULL, True, ctx_attribs);
	if (ctx == NULL) {
		return NULL;
	}
	if (!glXMakeContextCurrent(dpy, win, win, ctx)) {
		glXDestroyContext(dpy, ctx);
		return NULL;
	}
	return ctx;
}
*/
import "C"

import (
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/matjam/slidepaper/internal/config"
	"github.com/matjam/slidepaper/internal/render"
)

type GLXRenderer struct {
	display *C.Display
	window  C.Window
	context C.GLXContext
	width   int
	height  int

	mode      config.Mode
	easing    config.Easing
	framerate int

	fadeProg   uint32
	scrollProg uint32

	// fade program uniforms
	uProgress int32
	uAlpha    int32

	// scroll program uniforms
	uTexOffset int32

	vao          uint32
	vertexBuffer uint32
	indexBuffer  uint32
}

// NewRenderer attaches to the window id, creates a core-profile context and
// compiles both shader programs. Every failure here is fatal; the bundled
// shaders are a fixed contract, so a compile error means the environment
// does not meet the required GL feature level.
func NewRenderer(cfg *config.Config) (*GLXRenderer, error) {
	runtime.LockOSThread() // the GL context stays on this one OS thread

	dpy := C.open_display()
	if dpy == nil {
		return nil, fmt.Errorf("unable to open X11 display")
	}
	screen := C.XDefaultScreen(dpy)
	win := C.Window(cfg.WindowID)

	width, height := 0, 0
	if cfg.Geometry != nil {
		width, height = cfg.Geometry.W, cfg.Geometry.H
	} else {
		var w, h C.int
		if C.get_window_size(dpy, win, &w, &h) == 0 {
			C.XCloseDisplay(dpy)
			return nil, fmt.Errorf("unable to get attributes of window 0x%x", cfg.WindowID)
		}
		width, height = int(w), int(h)
	}

	ctx := C.create_context(dpy, screen, win)
	if ctx == nil {
		C.XCloseDisplay(dpy)
		return nil, fmt.Errorf("unable to create GL 3.3 context for window 0x%x", cfg.WindowID)
	}

	if err := gl.Init(); err != nil {
		C.XCloseDisplay(dpy)
		return nil, fmt.Errorf("opengl init failed: %w", err)
	}

	r := &GLXRenderer{
		display:   dpy,
		window:    win,
		context:   ctx,
		width:     width,
		height:    height,
		mode:      cfg.Mode,
		easing:    cfg.Easing,
		framerate: cfg.FramerateLimit,
	}

	if err := r.setupPrograms(); err != nil {
		r.Cleanup()
		return nil, err
	}
	r.setupGeometry()

	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(0.0, 0.0, 0.0, 1.0)
	return r, nil
}

func (r *GLXRenderer) setupPrograms() error {
	var err error
	r.fadeProg, err = compileProgram(fadeVertexSrc, fadeFragmentSrc)
	if err != nil {
		return fmt.Errorf("fade program: %w", err)
	}
	r.scrollProg, err = compileProgram(scrollVertexSrc, scrollFragmentSrc)
	if err != nil {
		return fmt.Errorf("scroll program: %w", err)
	}

	gl.UseProgram(r.fadeProg)
	gl.Uniform1i(gl.GetUniformLocation(r.fadeProg, gl.Str("cur_tex\x00")), 0)
	gl.Uniform1i(gl.GetUniformLocation(r.fadeProg, gl.Str("next_tex\x00")), 1)
	r.uProgress = gl.GetUniformLocation(r.fadeProg, gl.Str("progress\x00"))
	r.uAlpha = gl.GetUniformLocation(r.fadeProg, gl.Str("alpha\x00"))

	gl.UseProgram(r.scrollProg)
	gl.Uniform1i(gl.GetUniformLocation(r.scrollProg, gl.Str("tex\x00")), 0)
	r.uTexOffset = gl.GetUniformLocation(r.scrollProg, gl.Str("tex_offset\x00"))

	gl.UseProgram(0)
	return nil
}

// setupGeometry uploads one full-viewport quad; per-cell placement is done
// with glViewport rather than per-cell vertex data.
func (r *GLXRenderer) setupGeometry() {
	vertices := []float32{
		// position   uv
		-1.0, -1.0, 0.0, 0.0,
		1.0, -1.0, 1.0, 0.0,
		-1.0, 1.0, 0.0, 1.0,
		1.0, 1.0, 1.0, 1.0,
	}
	indices := []uint32{0, 1, 3, 0, 3, 2}

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vertexBuffer)
	gl.GenBuffers(1, &r.indexBuffer)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vertexBuffer)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.indexBuffer)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 4*len(indices), gl.Ptr(indices), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 4*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 4*4, 2*4)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

func (r *GLXRenderer) Size() (int, int) {
	return r.width, r.height
}

// texture implements render.Texture for a GL texture object.
type texture struct {
	id     uint32
	width  int
	height int
}

func (t *texture) Release() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

func (t *texture) Size() (int, int) {
	return t.width, t.height
}

// Upload copies a decoded frame into a new GL texture. In scroll mode the
// T axis wraps so the pan can cross the seam without a second draw.
func (r *GLXRenderer) Upload(img *image.RGBA) (render.Texture, error) {
	b := img.Bounds()
	tex := &texture{width: b.Dx(), height: b.Dy()}

	gl.GenTextures(1, &tex.id)
	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	if r.mode == config.ModeScroll {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(tex.width), int32(tex.height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return tex, nil
}

// Begin clears the frame before the per-cell draw passes.
func (r *GLXRenderer) Begin() {
	gl.Viewport(0, 0, int32(r.width), int32(r.height))
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// Draw issues one draw call for a cell. The scheduler has already decided
// which textures and what progress; nothing here holds state across frames.
func (r *GLXRenderer) Draw(cmd render.Command) error {
	gl.Viewport(cmd.Viewport.X, cmd.Viewport.Y, cmd.Viewport.W, cmd.Viewport.H)

	cur, ok := cmd.Cur.(*texture)
	if !ok || cur.id == 0 {
		return fmt.Errorf("draw without a resident current texture")
	}

	switch cmd.Mode {
	case config.ModeScroll:
		gl.UseProgram(r.scrollProg)
		gl.Uniform1f(r.uTexOffset, cmd.Offset)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, cur.id)

	default:
		next, ok := cmd.Next.(*texture)
		if !ok || next.id == 0 {
			next = cur
		}
		gl.UseProgram(r.fadeProg)
		gl.Uniform1f(r.uProgress, render.ApplyEasing(r.easing, cmd.Progress))
		gl.Uniform1f(r.uAlpha, 1.0)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, cur.id)
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, next.id)
	}

	gl.BindVertexArray(r.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, 6, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
	return nil
}

// Swap presents the frame and paces the loop to the framerate limit.
func (r *GLXRenderer) Swap() error {
	C.glXSwapBuffers(r.display, C.GLXDrawable(r.window))
	time.Sleep(time.Second / time.Duration(r.framerate))
	return nil
}

// Cleanup releases everything created during setup. The window belongs to
// whoever gave us its id, so it is left alone.
func (r *GLXRenderer) Cleanup() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		gl.DeleteBuffers(1, &r.vertexBuffer)
		gl.DeleteBuffers(1, &r.indexBuffer)
	}
	if r.fadeProg != 0 {
		gl.DeleteProgram(r.fadeProg)
	}
	if r.scrollProg != 0 {
		gl.DeleteProgram(r.scrollProg)
	}
	C.glXMakeContextCurrent(r.display, 0, 0, nil)
	if r.context != nil {
		C.glXDestroyContext(r.display, r.context)
	}
	C.XCloseDisplay(r.display)
}

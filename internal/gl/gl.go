package gl

import (
	"errors"
	"unsafe"
)

const (
	// Texture2D is the texture target for 2D textures.
	Texture2D = 0x0DE1
	// Texture0 is the first texture unit.
	Texture0 = 0x84C0

	// TextureWrapS selects the wrapping function for texture coordinate S.
	TextureWrapS = 0x2802
	// TextureWrapT selects the wrapping function for texture coordinate T.
	TextureWrapT = 0x2803

	// TextureMinFilter selects the texture minification filter.
	TextureMinFilter = 0x2801
	// TextureMagFilter selects the texture magnification filter.
	TextureMagFilter = 0x2800

	// Linear selects linear filtering.
	Linear = 0x2601

	// ClampToEdge clamps texture coordinates to the edge of the texture.
	ClampToEdge = 0x812F

	// RGBA is a pixel format representing red/green/blue/alpha.
	RGBA = 0x1908

	// Data types.
	UnsignedByte = 0x1401
	UnsignedInt  = 0x1405
	Float        = 0x1406

	// Triangles is the primitive type used for indexed quad drawing.
	Triangles = 0x0004

	// Buffer targets and usage.
	ArrayBuffer        = 0x8892
	ElementArrayBuffer = 0x8893
	StaticDraw         = 0x88E4

	// Shader types and queries.
	FragmentShader = 0x8B30
	VertexShader   = 0x8B31
	CompileStatus  = 0x8B81
	LinkStatus     = 0x8B82
	InfoLogLength  = 0x8B84

	// NoError is returned by GetError when the error flag is clear.
	NoError = 0

	// GetString parameters.
	//
	// Vendor returns the company responsible for the GL implementation.
	Vendor = 0x1F00
	// Renderer returns the name of the renderer.
	Renderer = 0x1F01
	// Version returns the GL version string of the current context.
	Version = 0x1F02
)

// ErrUnsupported is returned by Load and CurrentContext on platforms without a
// shared-context implementation.
var ErrUnsupported = errors.New("gl: platform not supported")

// OpenGL describes the subset of OpenGL entry points used by this module.
//
// Implementations wrap platform-specific GL bindings. All methods operate on the
// context that is current for the calling thread.
type OpenGL interface {
	// Viewport sets the affine transformation of x and y from normalized device
	// coordinates to window coordinates.
	Viewport(x, y, width, height int32)

	// Finish blocks until all previously issued commands have completed.
	Finish()

	// GetError returns and clears the oldest error flag.
	GetError() uint32

	// GetString returns a string describing a GL property for the current context.
	GetString(name uint32) string

	GenTextures(n int32, textures *uint32)
	DeleteTextures(n int32, textures *uint32)
	BindTexture(target, texture uint32)
	ActiveTexture(texture uint32)
	TexParameteri(target, pname uint32, param int32)

	// TexImage2D specifies a two-dimensional texture image.
	//
	// The pixels pointer may be nil to allocate storage without uploading data.
	TexImage2D(
		target uint32,
		level int32,
		internalformat int32,
		width int32,
		height int32,
		border int32,
		format uint32,
		xtype uint32,
		pixels unsafe.Pointer,
	)

	GenBuffers(n int32, buffers *uint32)
	DeleteBuffers(n int32, buffers *uint32)
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, size int, data unsafe.Pointer, usage uint32)

	GenVertexArrays(n int32, arrays *uint32)
	DeleteVertexArrays(n int32, arrays *uint32)
	BindVertexArray(array uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr)
	EnableVertexAttribArray(index uint32)

	CreateShader(xtype uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderiv(shader, pname uint32, params *int32)
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	BindFragDataLocation(program, color uint32, name string)
	LinkProgram(program uint32)
	GetProgramiv(program, pname uint32, params *int32)
	GetProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	GetAttribLocation(program uint32, name string) int32
	GetUniformLocation(program uint32, name string) int32
	Uniform1i(location, v0 int32)

	// DrawElements renders indexed primitives from the bound element buffer,
	// starting offset bytes into it.
	DrawElements(mode uint32, count int32, xtype uint32, offset uintptr)
}

// Surface is a native drawable a Context can be made current on: an X11 window
// on Linux, a device context (HDC) on Windows.
type Surface uintptr

// Context is a GL rendering context owned by someone else (the host) that this
// module borrows to draw into its own surfaces.
type Context interface {
	// MakeCurrent binds the context to s on the calling thread.
	MakeCurrent(s Surface) error

	// Swap presents the back buffer of s.
	Swap(s Surface)

	// Restore makes the context current on the drawable it was captured with.
	Restore() error
}

func gostring(ptr *byte) string {
	if ptr == nil {
		return ""
	}
	var bytes []byte
	for p := ptr; *p != 0; p = (*byte)(unsafe.Pointer(uintptr(unsafe.Pointer(p)) + 1)) {
		bytes = append(bytes, *p)
	}
	return string(bytes)
}

func cString(s string) *byte {
	b := append([]byte(s), 0)
	return &b[0]
}

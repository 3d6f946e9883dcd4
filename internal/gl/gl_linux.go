//go:build linux

package gl

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

// The Linux loader binds core entry points from libGL, falling back to
// glXGetProcAddressARB for anything the library does not export directly.
type openGL struct {
	viewport       func(int32, int32, int32, int32)
	finish         func()
	getError       func() uint32
	getString      func(uint32) *byte
	genTextures    func(int32, *uint32)
	deleteTextures func(int32, *uint32)
	bindTexture    func(uint32, uint32)
	activeTexture  func(uint32)
	texParameteri  func(uint32, uint32, int32)
	texImage2D     func(uint32, int32, int32, int32, int32, int32, uint32, uint32, unsafe.Pointer)

	// Buffer operations
	genBuffers    func(int32, *uint32)
	deleteBuffers func(int32, *uint32)
	bindBuffer    func(uint32, uint32)
	bufferData    func(uint32, int, unsafe.Pointer, uint32)

	// VAO operations
	genVertexArrays         func(int32, *uint32)
	deleteVertexArrays      func(int32, *uint32)
	bindVertexArray         func(uint32)
	vertexAttribPointer     func(uint32, int32, uint32, bool, int32, uintptr)
	enableVertexAttribArray func(uint32)

	// Shader operations
	createShader     func(uint32) uint32
	shaderSource     func(uint32, int32, **byte, *int32)
	compileShader    func(uint32)
	getShaderiv      func(uint32, uint32, *int32)
	getShaderInfoLog func(uint32, int32, *int32, *byte)
	deleteShader     func(uint32)

	// Program operations
	createProgram        func() uint32
	attachShader         func(uint32, uint32)
	bindFragDataLocation func(uint32, uint32, *byte)
	linkProgram          func(uint32)
	getProgramiv         func(uint32, uint32, *int32)
	getProgramInfoLog    func(uint32, int32, *int32, *byte)
	useProgram           func(uint32)
	deleteProgram        func(uint32)

	// Uniform operations
	getUniformLocation func(uint32, *byte) int32
	getAttribLocation  func(uint32, *byte) int32
	uniform1i          func(int32, int32)

	// Drawing
	drawElements func(uint32, int32, uint32, uintptr)
}

func (gl *openGL) Viewport(x, y, width, height int32) {
	gl.viewport(x, y, width, height)
}

func (gl *openGL) Finish() {
	gl.finish()
}

func (gl *openGL) GetError() uint32 {
	return gl.getError()
}

func (gl *openGL) GetString(name uint32) string {
	return gostring(gl.getString(name))
}

func (gl *openGL) GenTextures(n int32, textures *uint32) {
	gl.genTextures(n, textures)
}

func (gl *openGL) DeleteTextures(n int32, textures *uint32) {
	gl.deleteTextures(n, textures)
}

func (gl *openGL) BindTexture(target, texture uint32) {
	gl.bindTexture(target, texture)
}

func (gl *openGL) ActiveTexture(texture uint32) {
	gl.activeTexture(texture)
}

func (gl *openGL) TexParameteri(target, pname uint32, param int32) {
	gl.texParameteri(target, pname, param)
}

func (gl *openGL) TexImage2D(target uint32, level, internalFormat, width, height, border int32, format, xtype uint32, pixels unsafe.Pointer) {
	gl.texImage2D(target, level, internalFormat, width, height, border, format, xtype, pixels)
}

func (gl *openGL) GenBuffers(n int32, buffers *uint32) {
	gl.genBuffers(n, buffers)
}

func (gl *openGL) DeleteBuffers(n int32, buffers *uint32) {
	gl.deleteBuffers(n, buffers)
}

func (gl *openGL) BindBuffer(target uint32, buffer uint32) {
	gl.bindBuffer(target, buffer)
}

func (gl *openGL) BufferData(target uint32, size int, data unsafe.Pointer, usage uint32) {
	gl.bufferData(target, size, data, usage)
}

func (gl *openGL) GenVertexArrays(n int32, arrays *uint32) {
	gl.genVertexArrays(n, arrays)
}

func (gl *openGL) DeleteVertexArrays(n int32, arrays *uint32) {
	gl.deleteVertexArrays(n, arrays)
}

func (gl *openGL) BindVertexArray(array uint32) {
	gl.bindVertexArray(array)
}

func (gl *openGL) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	gl.vertexAttribPointer(index, size, xtype, normalized, stride, offset)
}

func (gl *openGL) EnableVertexAttribArray(index uint32) {
	gl.enableVertexAttribArray(index)
}

func (gl *openGL) CreateShader(xtype uint32) uint32 {
	return gl.createShader(xtype)
}

func (gl *openGL) ShaderSource(shader uint32, source string) {
	srcBytes := []byte(source)
	srcPtr := &srcBytes[0]
	length := int32(len(source))
	gl.shaderSource(shader, 1, &srcPtr, &length)
	runtime.KeepAlive(srcBytes)
}

func (gl *openGL) CompileShader(shader uint32) {
	gl.compileShader(shader)
}

func (gl *openGL) GetShaderiv(shader uint32, pname uint32, params *int32) {
	gl.getShaderiv(shader, pname, params)
}

func (gl *openGL) GetShaderInfoLog(shader uint32) string {
	var length int32
	gl.getShaderiv(shader, InfoLogLength, &length)
	if length == 0 {
		return ""
	}
	log := make([]byte, length)
	gl.getShaderInfoLog(shader, length, &length, &log[0])
	return string(log[:length])
}

func (gl *openGL) DeleteShader(shader uint32) {
	gl.deleteShader(shader)
}

func (gl *openGL) CreateProgram() uint32 {
	return gl.createProgram()
}

func (gl *openGL) AttachShader(program uint32, shader uint32) {
	gl.attachShader(program, shader)
}

func (gl *openGL) BindFragDataLocation(program, color uint32, name string) {
	gl.bindFragDataLocation(program, color, cString(name))
}

func (gl *openGL) LinkProgram(program uint32) {
	gl.linkProgram(program)
}

func (gl *openGL) GetProgramiv(program uint32, pname uint32, params *int32) {
	gl.getProgramiv(program, pname, params)
}

func (gl *openGL) GetProgramInfoLog(program uint32) string {
	var length int32
	gl.getProgramiv(program, InfoLogLength, &length)
	if length == 0 {
		return ""
	}
	log := make([]byte, length)
	gl.getProgramInfoLog(program, length, &length, &log[0])
	return string(log[:length])
}

func (gl *openGL) UseProgram(program uint32) {
	gl.useProgram(program)
}

func (gl *openGL) DeleteProgram(program uint32) {
	gl.deleteProgram(program)
}

func (gl *openGL) GetUniformLocation(program uint32, name string) int32 {
	return gl.getUniformLocation(program, cString(name))
}

func (gl *openGL) GetAttribLocation(program uint32, name string) int32 {
	return gl.getAttribLocation(program, cString(name))
}

func (gl *openGL) Uniform1i(location int32, v0 int32) {
	gl.uniform1i(location, v0)
}

func (gl *openGL) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	gl.drawElements(mode, count, xtype, offset)
}

// Load binds the GL entry points. A context must be current so that
// extension lookups through GLX resolve to the right driver.
func Load() (OpenGL, error) {
	handle, err := openLibGL()
	if err != nil {
		return nil, err
	}

	var getProcAddress func(*byte) uintptr
	purego.RegisterLibFunc(&getProcAddress, handle, "glXGetProcAddressARB")

	var missing []string
	register := func(dst interface{}, name string) {
		if sym, err := purego.Dlsym(handle, name); err == nil && sym != 0 {
			purego.RegisterFunc(dst, sym)
			return
		}
		if sym := getProcAddress(cString(name)); sym != 0 {
			purego.RegisterFunc(dst, sym)
			return
		}
		missing = append(missing, name)
	}

	gl := &openGL{}
	register(&gl.viewport, "glViewport")
	register(&gl.finish, "glFinish")
	register(&gl.getError, "glGetError")
	register(&gl.getString, "glGetString")
	register(&gl.genTextures, "glGenTextures")
	register(&gl.deleteTextures, "glDeleteTextures")
	register(&gl.bindTexture, "glBindTexture")
	register(&gl.activeTexture, "glActiveTexture")
	register(&gl.texParameteri, "glTexParameteri")
	register(&gl.texImage2D, "glTexImage2D")

	// GL3 functions
	register(&gl.genBuffers, "glGenBuffers")
	register(&gl.deleteBuffers, "glDeleteBuffers")
	register(&gl.bindBuffer, "glBindBuffer")
	register(&gl.bufferData, "glBufferData")
	register(&gl.genVertexArrays, "glGenVertexArrays")
	register(&gl.deleteVertexArrays, "glDeleteVertexArrays")
	register(&gl.bindVertexArray, "glBindVertexArray")
	register(&gl.vertexAttribPointer, "glVertexAttribPointer")
	register(&gl.enableVertexAttribArray, "glEnableVertexAttribArray")
	register(&gl.createShader, "glCreateShader")
	register(&gl.shaderSource, "glShaderSource")
	register(&gl.compileShader, "glCompileShader")
	register(&gl.getShaderiv, "glGetShaderiv")
	register(&gl.getShaderInfoLog, "glGetShaderInfoLog")
	register(&gl.deleteShader, "glDeleteShader")
	register(&gl.createProgram, "glCreateProgram")
	register(&gl.attachShader, "glAttachShader")
	register(&gl.bindFragDataLocation, "glBindFragDataLocation")
	register(&gl.linkProgram, "glLinkProgram")
	register(&gl.getProgramiv, "glGetProgramiv")
	register(&gl.getProgramInfoLog, "glGetProgramInfoLog")
	register(&gl.useProgram, "glUseProgram")
	register(&gl.deleteProgram, "glDeleteProgram")
	register(&gl.getUniformLocation, "glGetUniformLocation")
	register(&gl.getAttribLocation, "glGetAttribLocation")
	register(&gl.uniform1i, "glUniform1i")
	register(&gl.drawElements, "glDrawElements")

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing GL entry points: %v", missing)
	}
	return gl, nil
}

var libGL uintptr

func openLibGL() (uintptr, error) {
	if libGL != 0 {
		return libGL, nil
	}
	handle, err := purego.Dlopen("libGL.so.1", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, fmt.Errorf("dlopen libGL.so.1: %w", err)
	}
	libGL = handle
	return handle, nil
}

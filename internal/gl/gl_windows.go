//go:build windows

package gl

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// proc is satisfied by both opengl32.dll exports and driver entry points
// resolved through wglGetProcAddress.
type proc interface {
	Call(a ...uintptr) (r1, r2 uintptr, lastErr error)
}

type extProc uintptr

func (p extProc) Call(a ...uintptr) (uintptr, uintptr, error) {
	r1, r2, errno := syscall.SyscallN(uintptr(p), a...)
	return r1, r2, errno
}

var (
	opengl32              = windows.NewLazySystemDLL("opengl32.dll")
	procWglGetProcAddress = opengl32.NewProc("wglGetProcAddress")
)

type openGL struct {
	viewport       proc
	finish         proc
	getError       proc
	getString      proc
	genTextures    proc
	deleteTextures proc
	bindTexture    proc
	activeTexture  proc
	texParameteri  proc
	texImage2D     proc

	genBuffers    proc
	deleteBuffers proc
	bindBuffer    proc
	bufferData    proc

	genVertexArrays         proc
	deleteVertexArrays      proc
	bindVertexArray         proc
	vertexAttribPointer     proc
	enableVertexAttribArray proc

	createShader     proc
	shaderSource     proc
	compileShader    proc
	getShaderiv      proc
	getShaderInfoLog proc
	deleteShader     proc

	createProgram        proc
	attachShader         proc
	bindFragDataLocation proc
	linkProgram          proc
	getProgramiv         proc
	getProgramInfoLog    proc
	useProgram           proc
	deleteProgram        proc

	getUniformLocation proc
	getAttribLocation  proc
	uniform1i          proc

	drawElements proc
}

func (gl *openGL) Viewport(x, y, width, height int32) {
	gl.viewport.Call(uintptr(x), uintptr(y), uintptr(width), uintptr(height))
}

func (gl *openGL) Finish() {
	gl.finish.Call()
}

func (gl *openGL) GetError() uint32 {
	ret, _, _ := gl.getError.Call()
	return uint32(ret)
}

func (gl *openGL) GetString(name uint32) string {
	ptr, _, _ := gl.getString.Call(uintptr(name))
	return gostring((*byte)(unsafe.Pointer(ptr)))
}

func (gl *openGL) GenTextures(n int32, textures *uint32) {
	gl.genTextures.Call(uintptr(n), uintptr(unsafe.Pointer(textures)))
}

func (gl *openGL) DeleteTextures(n int32, textures *uint32) {
	gl.deleteTextures.Call(uintptr(n), uintptr(unsafe.Pointer(textures)))
}

func (gl *openGL) BindTexture(target, texture uint32) {
	gl.bindTexture.Call(uintptr(target), uintptr(texture))
}

func (gl *openGL) ActiveTexture(texture uint32) {
	gl.activeTexture.Call(uintptr(texture))
}

func (gl *openGL) TexParameteri(target, pname uint32, param int32) {
	gl.texParameteri.Call(uintptr(target), uintptr(pname), uintptr(param))
}

func (gl *openGL) TexImage2D(target uint32, level, internalFormat, width, height, border int32, format, xtype uint32, pixels unsafe.Pointer) {
	gl.texImage2D.Call(uintptr(target), uintptr(level), uintptr(internalFormat), uintptr(width), uintptr(height), uintptr(border), uintptr(format), uintptr(xtype), uintptr(pixels))
}

func (gl *openGL) GenBuffers(n int32, buffers *uint32) {
	gl.genBuffers.Call(uintptr(n), uintptr(unsafe.Pointer(buffers)))
}

func (gl *openGL) DeleteBuffers(n int32, buffers *uint32) {
	gl.deleteBuffers.Call(uintptr(n), uintptr(unsafe.Pointer(buffers)))
}

func (gl *openGL) BindBuffer(target, buffer uint32) {
	gl.bindBuffer.Call(uintptr(target), uintptr(buffer))
}

func (gl *openGL) BufferData(target uint32, size int, data unsafe.Pointer, usage uint32) {
	gl.bufferData.Call(uintptr(target), uintptr(size), uintptr(data), uintptr(usage))
}

func (gl *openGL) GenVertexArrays(n int32, arrays *uint32) {
	gl.genVertexArrays.Call(uintptr(n), uintptr(unsafe.Pointer(arrays)))
}

func (gl *openGL) DeleteVertexArrays(n int32, arrays *uint32) {
	gl.deleteVertexArrays.Call(uintptr(n), uintptr(unsafe.Pointer(arrays)))
}

func (gl *openGL) BindVertexArray(array uint32) {
	gl.bindVertexArray.Call(uintptr(array))
}

func (gl *openGL) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	var norm uintptr
	if normalized {
		norm = 1
	}
	gl.vertexAttribPointer.Call(uintptr(index), uintptr(size), uintptr(xtype), norm, uintptr(stride), offset)
}

func (gl *openGL) EnableVertexAttribArray(index uint32) {
	gl.enableVertexAttribArray.Call(uintptr(index))
}

func (gl *openGL) CreateShader(xtype uint32) uint32 {
	ret, _, _ := gl.createShader.Call(uintptr(xtype))
	return uint32(ret)
}

func (gl *openGL) ShaderSource(shader uint32, source string) {
	srcBytes := []byte(source)
	srcPtr := &srcBytes[0]
	length := int32(len(source))
	gl.shaderSource.Call(uintptr(shader), 1, uintptr(unsafe.Pointer(&srcPtr)), uintptr(unsafe.Pointer(&length)))
	runtime.KeepAlive(srcBytes)
}

func (gl *openGL) CompileShader(shader uint32) {
	gl.compileShader.Call(uintptr(shader))
}

func (gl *openGL) GetShaderiv(shader, pname uint32, params *int32) {
	gl.getShaderiv.Call(uintptr(shader), uintptr(pname), uintptr(unsafe.Pointer(params)))
}

func (gl *openGL) GetShaderInfoLog(shader uint32) string {
	var length int32
	gl.GetShaderiv(shader, InfoLogLength, &length)
	if length == 0 {
		return ""
	}
	log := make([]byte, length)
	gl.getShaderInfoLog.Call(uintptr(shader), uintptr(length), uintptr(unsafe.Pointer(&length)), uintptr(unsafe.Pointer(&log[0])))
	return string(log[:length])
}

func (gl *openGL) DeleteShader(shader uint32) {
	gl.deleteShader.Call(uintptr(shader))
}

func (gl *openGL) CreateProgram() uint32 {
	ret, _, _ := gl.createProgram.Call()
	return uint32(ret)
}

func (gl *openGL) AttachShader(program, shader uint32) {
	gl.attachShader.Call(uintptr(program), uintptr(shader))
}

func (gl *openGL) BindFragDataLocation(program, color uint32, name string) {
	gl.bindFragDataLocation.Call(uintptr(program), uintptr(color), uintptr(unsafe.Pointer(cString(name))))
}

func (gl *openGL) LinkProgram(program uint32) {
	gl.linkProgram.Call(uintptr(program))
}

func (gl *openGL) GetProgramiv(program, pname uint32, params *int32) {
	gl.getProgramiv.Call(uintptr(program), uintptr(pname), uintptr(unsafe.Pointer(params)))
}

func (gl *openGL) GetProgramInfoLog(program uint32) string {
	var length int32
	gl.GetProgramiv(program, InfoLogLength, &length)
	if length == 0 {
		return ""
	}
	log := make([]byte, length)
	gl.getProgramInfoLog.Call(uintptr(program), uintptr(length), uintptr(unsafe.Pointer(&length)), uintptr(unsafe.Pointer(&log[0])))
	return string(log[:length])
}

func (gl *openGL) UseProgram(program uint32) {
	gl.useProgram.Call(uintptr(program))
}

func (gl *openGL) DeleteProgram(program uint32) {
	gl.deleteProgram.Call(uintptr(program))
}

func (gl *openGL) GetUniformLocation(program uint32, name string) int32 {
	ret, _, _ := gl.getUniformLocation.Call(uintptr(program), uintptr(unsafe.Pointer(cString(name))))
	return int32(ret)
}

func (gl *openGL) GetAttribLocation(program uint32, name string) int32 {
	ret, _, _ := gl.getAttribLocation.Call(uintptr(program), uintptr(unsafe.Pointer(cString(name))))
	return int32(ret)
}

func (gl *openGL) Uniform1i(location, v0 int32) {
	gl.uniform1i.Call(uintptr(location), uintptr(v0))
}

func (gl *openGL) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	gl.drawElements.Call(uintptr(mode), uintptr(count), uintptr(xtype), offset)
}

// Load binds the GL entry points. opengl32.dll only exports OpenGL 1.1, so
// everything newer is resolved through wglGetProcAddress, which needs the
// host context to be current.
func Load() (OpenGL, error) {
	if err := opengl32.Load(); err != nil {
		return nil, fmt.Errorf("load opengl32.dll: %w", err)
	}

	var missing []string
	core := func(name string) proc {
		p := opengl32.NewProc(name)
		if err := p.Find(); err != nil {
			missing = append(missing, name)
		}
		return p
	}
	ext := func(name string) proc {
		addr, _, _ := procWglGetProcAddress.Call(uintptr(unsafe.Pointer(cString(name))))
		// Some drivers return small sentinel values instead of NULL.
		switch int(addr) {
		case 0, 1, 2, 3, -1:
			missing = append(missing, name)
		}
		return extProc(addr)
	}

	gl := &openGL{
		viewport:       core("glViewport"),
		finish:         core("glFinish"),
		getError:       core("glGetError"),
		getString:      core("glGetString"),
		genTextures:    core("glGenTextures"),
		deleteTextures: core("glDeleteTextures"),
		bindTexture:    core("glBindTexture"),
		texParameteri:  core("glTexParameteri"),
		texImage2D:     core("glTexImage2D"),
		drawElements:   core("glDrawElements"),

		activeTexture:           ext("glActiveTexture"),
		genBuffers:              ext("glGenBuffers"),
		deleteBuffers:           ext("glDeleteBuffers"),
		bindBuffer:              ext("glBindBuffer"),
		bufferData:              ext("glBufferData"),
		genVertexArrays:         ext("glGenVertexArrays"),
		deleteVertexArrays:      ext("glDeleteVertexArrays"),
		bindVertexArray:         ext("glBindVertexArray"),
		vertexAttribPointer:     ext("glVertexAttribPointer"),
		enableVertexAttribArray: ext("glEnableVertexAttribArray"),
		createShader:            ext("glCreateShader"),
		shaderSource:            ext("glShaderSource"),
		compileShader:           ext("glCompileShader"),
		getShaderiv:             ext("glGetShaderiv"),
		getShaderInfoLog:        ext("glGetShaderInfoLog"),
		deleteShader:            ext("glDeleteShader"),
		createProgram:           ext("glCreateProgram"),
		attachShader:            ext("glAttachShader"),
		bindFragDataLocation:    ext("glBindFragDataLocation"),
		linkProgram:             ext("glLinkProgram"),
		getProgramiv:            ext("glGetProgramiv"),
		getProgramInfoLog:       ext("glGetProgramInfoLog"),
		useProgram:              ext("glUseProgram"),
		deleteProgram:           ext("glDeleteProgram"),
		getUniformLocation:      ext("glGetUniformLocation"),
		getAttribLocation:       ext("glGetAttribLocation"),
		uniform1i:               ext("glUniform1i"),
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing GL entry points: %v", missing)
	}
	return gl, nil
}

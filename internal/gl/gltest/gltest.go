// Package gltest provides recording fakes for the gl package so rendering code
// can be exercised without a GPU.
package gltest

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/tinyrange/multiwin/internal/gl"
)

// Recorder implements gl.OpenGL by logging every call and handing out
// sequential object names.
type Recorder struct {
	Calls []string

	// Allocated and Deleted hold object names per kind ("texture", "buffer",
	// "vertexarray", "shader", "program").
	Allocated map[string][]uint32
	Deleted   map[string][]uint32

	// FailShader makes CompileShader report failure for the given shader type.
	FailShader map[uint32]bool
	// FailLink makes LinkProgram report failure.
	FailLink bool

	next        uint32
	shaderTypes map[uint32]uint32
	compiled    map[uint32]bool
	linked      map[uint32]bool
}

var _ gl.OpenGL = (*Recorder)(nil)

func New() *Recorder {
	return &Recorder{
		Allocated:   map[string][]uint32{},
		Deleted:     map[string][]uint32{},
		FailShader:  map[uint32]bool{},
		shaderTypes: map[uint32]uint32{},
		compiled:    map[uint32]bool{},
		linked:      map[uint32]bool{},
	}
}

// Count returns the number of recorded calls whose text starts with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, c := range r.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls but keeps object bookkeeping.
func (r *Recorder) Reset() {
	r.Calls = nil
}

func (r *Recorder) record(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) alloc(kind string) uint32 {
	r.next++
	r.Allocated[kind] = append(r.Allocated[kind], r.next)
	return r.next
}

func (r *Recorder) genN(kind string, n int32, out *uint32) {
	names := unsafe.Slice(out, n)
	for i := range names {
		names[i] = r.alloc(kind)
	}
}

func (r *Recorder) deleteN(kind string, n int32, in *uint32) {
	for _, name := range unsafe.Slice(in, n) {
		r.Deleted[kind] = append(r.Deleted[kind], name)
	}
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.record("Viewport(%d, %d, %d, %d)", x, y, width, height)
}

func (r *Recorder) Finish() { r.record("Finish()") }

func (r *Recorder) GetError() uint32 { return gl.NoError }

func (r *Recorder) GetString(name uint32) string {
	if name == gl.Version {
		return "4.5.0 gltest"
	}
	return "gltest"
}

func (r *Recorder) GenTextures(n int32, textures *uint32) {
	r.genN("texture", n, textures)
	r.record("GenTextures(%d)", n)
}

func (r *Recorder) DeleteTextures(n int32, textures *uint32) {
	r.deleteN("texture", n, textures)
	r.record("DeleteTextures(%d)", n)
}

func (r *Recorder) BindTexture(target, texture uint32) {
	r.record("BindTexture(%#x, %d)", target, texture)
}

func (r *Recorder) ActiveTexture(texture uint32) { r.record("ActiveTexture(%#x)", texture) }

func (r *Recorder) TexParameteri(target, pname uint32, param int32) {
	r.record("TexParameteri(%#x, %#x, %#x)", target, pname, param)
}

func (r *Recorder) TexImage2D(target uint32, level, internalformat, width, height, border int32, format, xtype uint32, pixels unsafe.Pointer) {
	r.record("TexImage2D(%#x, %d, %d, %d)", target, level, width, height)
}

func (r *Recorder) GenBuffers(n int32, buffers *uint32) {
	r.genN("buffer", n, buffers)
	r.record("GenBuffers(%d)", n)
}

func (r *Recorder) DeleteBuffers(n int32, buffers *uint32) {
	r.deleteN("buffer", n, buffers)
	r.record("DeleteBuffers(%d)", n)
}

func (r *Recorder) BindBuffer(target, buffer uint32) {
	r.record("BindBuffer(%#x, %d)", target, buffer)
}

func (r *Recorder) BufferData(target uint32, size int, data unsafe.Pointer, usage uint32) {
	r.record("BufferData(%#x, %d, %#x)", target, size, usage)
}

func (r *Recorder) GenVertexArrays(n int32, arrays *uint32) {
	r.genN("vertexarray", n, arrays)
	r.record("GenVertexArrays(%d)", n)
}

func (r *Recorder) DeleteVertexArrays(n int32, arrays *uint32) {
	r.deleteN("vertexarray", n, arrays)
	r.record("DeleteVertexArrays(%d)", n)
}

func (r *Recorder) BindVertexArray(array uint32) { r.record("BindVertexArray(%d)", array) }

func (r *Recorder) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	r.record("VertexAttribPointer(%d, %d, %#x, %t, %d, %d)", index, size, xtype, normalized, stride, offset)
}

func (r *Recorder) EnableVertexAttribArray(index uint32) {
	r.record("EnableVertexAttribArray(%d)", index)
}

func (r *Recorder) CreateShader(xtype uint32) uint32 {
	name := r.alloc("shader")
	r.shaderTypes[name] = xtype
	r.record("CreateShader(%#x)", xtype)
	return name
}

func (r *Recorder) ShaderSource(shader uint32, source string) {
	r.record("ShaderSource(%d)", shader)
}

func (r *Recorder) CompileShader(shader uint32) {
	r.compiled[shader] = !r.FailShader[r.shaderTypes[shader]]
	r.record("CompileShader(%d)", shader)
}

func (r *Recorder) GetShaderiv(shader, pname uint32, params *int32) {
	switch pname {
	case gl.CompileStatus:
		*params = boolInt(r.compiled[shader])
	case gl.InfoLogLength:
		*params = int32(len(r.GetShaderInfoLog(shader)))
	}
}

func (r *Recorder) GetShaderInfoLog(shader uint32) string {
	if r.compiled[shader] {
		return ""
	}
	return fmt.Sprintf("0:1(1): error: shader %d rejected", shader)
}

func (r *Recorder) DeleteShader(shader uint32) {
	r.Deleted["shader"] = append(r.Deleted["shader"], shader)
	r.record("DeleteShader(%d)", shader)
}

func (r *Recorder) CreateProgram() uint32 {
	r.record("CreateProgram()")
	return r.alloc("program")
}

func (r *Recorder) AttachShader(program, shader uint32) {
	r.record("AttachShader(%d, %d)", program, shader)
}

func (r *Recorder) BindFragDataLocation(program, color uint32, name string) {
	r.record("BindFragDataLocation(%d, %d, %s)", program, color, name)
}

func (r *Recorder) LinkProgram(program uint32) {
	r.linked[program] = !r.FailLink
	r.record("LinkProgram(%d)", program)
}

func (r *Recorder) GetProgramiv(program, pname uint32, params *int32) {
	switch pname {
	case gl.LinkStatus:
		*params = boolInt(r.linked[program])
	case gl.InfoLogLength:
		*params = int32(len(r.GetProgramInfoLog(program)))
	}
}

func (r *Recorder) GetProgramInfoLog(program uint32) string {
	if r.linked[program] {
		return ""
	}
	return "error: linking failed"
}

func (r *Recorder) UseProgram(program uint32) { r.record("UseProgram(%d)", program) }

func (r *Recorder) DeleteProgram(program uint32) {
	r.Deleted["program"] = append(r.Deleted["program"], program)
	r.record("DeleteProgram(%d)", program)
}

// Attribute and uniform locations follow declaration order in the quad shaders.
func (r *Recorder) GetAttribLocation(program uint32, name string) int32 {
	switch name {
	case "position":
		return 0
	case "texcoord":
		return 1
	}
	return -1
}

func (r *Recorder) GetUniformLocation(program uint32, name string) int32 {
	if name == "tex" {
		return 0
	}
	return -1
}

func (r *Recorder) Uniform1i(location, v0 int32) { r.record("Uniform1i(%d, %d)", location, v0) }

func (r *Recorder) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	r.record("DrawElements(%#x, %d, %#x, %d)", mode, count, xtype, offset)
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Context implements gl.Context and logs into the same Recorder so call order
// across context switches and draws can be asserted.
type Context struct {
	rec *Recorder

	// Fail makes MakeCurrent return an error for the listed surfaces.
	Fail map[gl.Surface]bool

	Current gl.Surface
}

var _ gl.Context = (*Context)(nil)

// Host is the surface the fake context was "captured" on.
const Host gl.Surface = 0xfeed

func NewContext(rec *Recorder) *Context {
	return &Context{rec: rec, Fail: map[gl.Surface]bool{}, Current: Host}
}

func (c *Context) MakeCurrent(s gl.Surface) error {
	c.rec.record("MakeCurrent(%d)", s)
	if c.Fail[s] {
		return errors.New("gltest: make current refused")
	}
	c.Current = s
	return nil
}

func (c *Context) Swap(s gl.Surface) {
	c.rec.record("Swap(%d)", s)
}

func (c *Context) Restore() error {
	c.rec.record("Restore()")
	c.Current = Host
	return nil
}

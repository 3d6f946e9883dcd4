// Package surface owns the GL objects every auxiliary window draws with: a
// full-screen textured quad and the shader program that samples it.
package surface

import (
	"errors"
	"fmt"
	"unsafe"

	glpkg "github.com/tinyrange/multiwin/internal/gl"
)

const (
	vertexShaderSource = `#version 150 core
in vec2 position;
in vec2 texcoord;
out vec2 Texcoord;
void main()
{
	Texcoord = texcoord;
	gl_Position = vec4(position, 0.0, 1.0);
}`

	fragmentShaderSource = `#version 150 core
in vec2 Texcoord;
out vec4 outColor;
uniform sampler2D tex;
void main()
{
	outColor = texture(tex, Texcoord);
}`
)

// Position (xy) followed by texcoord (uv) for each corner.
var quadVertices = [16]float32{
	-1.0, 1.0, 0.0, 1.0, // top-left
	1.0, 1.0, 1.0, 1.0, // top-right
	1.0, -1.0, 1.0, 0.0, // bottom-right
	-1.0, -1.0, 0.0, 0.0, // bottom-left
}

var quadIndices = [6]uint32{
	0, 1, 2,
	2, 3, 0,
}

// QuadIndexCount is the number of indices drawn per window.
const QuadIndexCount = int32(len(quadIndices))

const vertexStride = 4 * 4

// Registry holds the shared quad geometry and program. There is one per
// window manager; windows only differ in the texture they bind.
type Registry struct {
	gl glpkg.OpenGL

	vao            uint32
	vbo            uint32
	ebo            uint32
	vertexShader   uint32
	fragmentShader uint32
	program        uint32
	sampler        int32

	loaded bool
}

func New(gl glpkg.OpenGL) *Registry {
	return &Registry{gl: gl}
}

// Loaded reports whether Load has run without a matching Unload.
func (r *Registry) Loaded() bool {
	return r.loaded
}

// Program returns the linked program name, or 0 before Load.
func (r *Registry) Program() uint32 {
	return r.program
}

// Load allocates the quad buffers and builds the program. Compile and link
// failures are returned but leave the objects allocated; draws with them are
// blank rather than fatal, and Unload still releases everything.
func (r *Registry) Load() error {
	if r.loaded {
		return nil
	}
	gl := r.gl

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(glpkg.ArrayBuffer, r.vbo)
	gl.BufferData(glpkg.ArrayBuffer, len(quadVertices)*4, unsafe.Pointer(&quadVertices[0]), glpkg.StaticDraw)

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(glpkg.ElementArrayBuffer, r.ebo)
	gl.BufferData(glpkg.ElementArrayBuffer, len(quadIndices)*4, unsafe.Pointer(&quadIndices[0]), glpkg.StaticDraw)

	var errs []error

	r.vertexShader = gl.CreateShader(glpkg.VertexShader)
	if err := compileShader(gl, r.vertexShader, vertexShaderSource); err != nil {
		errs = append(errs, fmt.Errorf("vertex shader compilation failed: %w", err))
	}

	r.fragmentShader = gl.CreateShader(glpkg.FragmentShader)
	if err := compileShader(gl, r.fragmentShader, fragmentShaderSource); err != nil {
		errs = append(errs, fmt.Errorf("fragment shader compilation failed: %w", err))
	}

	r.program = gl.CreateProgram()
	gl.AttachShader(r.program, r.vertexShader)
	gl.AttachShader(r.program, r.fragmentShader)
	gl.BindFragDataLocation(r.program, 0, "outColor")
	gl.LinkProgram(r.program)
	var status int32
	gl.GetProgramiv(r.program, glpkg.LinkStatus, &status)
	if status == 0 {
		errs = append(errs, fmt.Errorf("program linking failed: %s", gl.GetProgramInfoLog(r.program)))
	}

	// Attribute layout is captured by the VAO bound above.
	if loc := gl.GetAttribLocation(r.program, "position"); loc >= 0 {
		gl.EnableVertexAttribArray(uint32(loc))
		gl.VertexAttribPointer(uint32(loc), 2, glpkg.Float, false, vertexStride, 0)
	}
	if loc := gl.GetAttribLocation(r.program, "texcoord"); loc >= 0 {
		gl.EnableVertexAttribArray(uint32(loc))
		gl.VertexAttribPointer(uint32(loc), 2, glpkg.Float, false, vertexStride, 2*4)
	}
	r.sampler = gl.GetUniformLocation(r.program, "tex")

	r.loaded = true
	return errors.Join(errs...)
}

func compileShader(gl glpkg.OpenGL, shader uint32, source string) error {
	gl.ShaderSource(shader, source)
	gl.CompileShader(shader)
	var status int32
	gl.GetShaderiv(shader, glpkg.CompileStatus, &status)
	if status == 0 {
		return errors.New(gl.GetShaderInfoLog(shader))
	}
	return nil
}

// Unload releases every object created by Load, once each.
func (r *Registry) Unload() {
	if !r.loaded {
		return
	}
	gl := r.gl

	gl.DeleteProgram(r.program)
	gl.DeleteShader(r.fragmentShader)
	gl.DeleteShader(r.vertexShader)
	gl.DeleteBuffers(1, &r.ebo)
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteVertexArrays(1, &r.vao)

	*r = Registry{gl: gl}
}

// Bind makes the quad geometry and program current and points the sampler
// at texture unit 0.
func (r *Registry) Bind() {
	gl := r.gl
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(glpkg.ArrayBuffer, r.vbo)
	gl.BindBuffer(glpkg.ElementArrayBuffer, r.ebo)
	gl.UseProgram(r.program)
	gl.Uniform1i(r.sampler, 0)
}

// Draw issues the indexed draw for the bound quad.
func (r *Registry) Draw() {
	r.gl.DrawElements(glpkg.Triangles, QuadIndexCount, glpkg.UnsignedInt, 0)
}

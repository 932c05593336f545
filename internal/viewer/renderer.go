package viewer

import (
	gomath "math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/wavefront/pkg/math"
	"github.com/Faultbox/wavefront/pkg/model"
)

const vertexShaderSrc = `#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inTexCoord;

uniform mat4 uMVP;
uniform mat4 uModel;

out vec3 vNormal;
out vec2 vTexCoord;

void main() {
	vNormal = mat3(uModel) * inNormal;
	vTexCoord = inTexCoord;
	gl_Position = uMVP * vec4(inPosition, 1.0);
}
`

const fragmentShaderSrc = `#version 410 core
in vec3 vNormal;
in vec2 vTexCoord;

uniform vec4 uAmbient;
uniform vec4 uDiffuse;
uniform vec3 uLightDir;
uniform sampler2D uTexture;
uniform bool uUseTexture;

out vec4 fragColor;

void main() {
	vec3 n = normalize(vNormal);
	float lambert = max(dot(n, -uLightDir), 0.0);
	vec4 base = uDiffuse;
	if (uUseTexture) {
		base *= texture(uTexture, vTexCoord);
	}
	fragColor = uAmbient + base * lambert;
	fragColor.a = base.a;
}
`

// Renderer draws one mesh with a fixed lambert shader.
type Renderer struct {
	program uint32
	vao     uint32
	vbos    [3]uint32
	ebo     uint32
	count   int32
	texture uint32

	uMVP        int32
	uModel      int32
	uAmbient    int32
	uDiffuse    int32
	uLightDir   int32
	uUseTexture int32
}

// NewRenderer compiles the shader and uploads the mesh buffers. Requires a
// current GL context.
func NewRenderer(mesh *model.Mesh) (*Renderer, error) {
	program, err := CompileProgram(vertexShaderSrc, fragmentShaderSrc)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		program:     program,
		count:       int32(len(mesh.Indices)),
		uMVP:        uniform(program, "uMVP"),
		uModel:      uniform(program, "uModel"),
		uAmbient:    uniform(program, "uAmbient"),
		uDiffuse:    uniform(program, "uDiffuse"),
		uLightDir:   uniform(program, "uLightDir"),
		uUseTexture: uniform(program, "uUseTexture"),
	}

	if mesh.Material != nil && mesh.Material.Texture != nil {
		r.texture = mesh.Material.Texture.ID
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(3, &r.vbos[0])

	uploadAttrib(r.vbos[0], 0, 3, flatten3(mesh.Positions))
	uploadAttrib(r.vbos[1], 1, 3, flatten3(mesh.Normals))
	uploadAttrib(r.vbos[2], 2, 2, flatten2(mesh.TexCoords))

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(0.15, 0.15, 0.18, 1.0)

	return r, nil
}

func uploadAttrib(vbo, index uint32, components int32, data []float32) {
	if len(data) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(index)
	gl.VertexAttribPointerWithOffset(index, components, gl.FLOAT, false, 0, 0)
}

// Draw renders the mesh with the given matrices and material colors.
func (r *Renderer) Draw(mvp, modelMat math.Mat4, ambient, diffuse math.Vec4) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if r.count == 0 {
		return
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.uMVP, 1, false, mvp.Ptr())
	gl.UniformMatrix4fv(r.uModel, 1, false, modelMat.Ptr())
	gl.Uniform4f(r.uAmbient, ambient.X, ambient.Y, ambient.Z, ambient.W)
	gl.Uniform4f(r.uDiffuse, diffuse.X, diffuse.Y, diffuse.Z, diffuse.W)

	light := math.Vec3{X: -0.4, Y: -1, Z: -0.3}.Normalize()
	gl.Uniform3f(r.uLightDir, light.X, light.Y, light.Z)

	if r.texture != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, r.texture)
		gl.Uniform1i(r.uUseTexture, 1)
	} else {
		gl.Uniform1i(r.uUseTexture, 0)
	}

	gl.BindVertexArray(r.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, r.count, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

// Destroy releases the GL objects owned by the renderer.
func (r *Renderer) Destroy() {
	gl.DeleteBuffers(3, &r.vbos[0])
	gl.DeleteBuffers(1, &r.ebo)
	gl.DeleteVertexArrays(1, &r.vao)
	gl.DeleteProgram(r.program)
}

// Run renders the mesh in the window, orbiting the camera around it, until
// the window is closed or escape is pressed.
func Run(win *Window, mesh *model.Mesh) error {
	renderer, err := NewRenderer(mesh)
	if err != nil {
		return err
	}
	defer renderer.Destroy()

	center := mesh.Bounds.Min.Add(mesh.Bounds.Max).Scale(0.5)
	radius := mesh.Bounds.Max.Sub(mesh.Bounds.Min).Length()
	if radius == 0 {
		radius = 1
	}

	ambient := math.Vec4{X: 0.2, Y: 0.2, Z: 0.2, W: 1}
	diffuse := math.Vec4{X: 0.8, Y: 0.8, Z: 0.8, W: 1}
	if mesh.Material != nil {
		ambient = mesh.Material.Ambient
		diffuse = mesh.Material.Diffuse
	}

	start := sdl.GetTicks64()
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				return nil
			case *sdl.KeyboardEvent:
				if e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_ESCAPE {
					return nil
				}
			}
		}

		width, height := win.Size()
		gl.Viewport(0, 0, int32(width), int32(height))

		angle := float32(sdl.GetTicks64()-start) / 1000.0
		eye := math.Vec3{
			X: center.X + radius*float32(gomath.Cos(float64(angle))),
			Y: center.Y + radius*0.5,
			Z: center.Z + radius*float32(gomath.Sin(float64(angle))),
		}

		proj := math.Perspective(gomath.Pi/4, float32(width)/float32(height), 0.1, radius*10)
		view := math.LookAt(eye, center, math.Vec3{Y: 1})
		modelMat := math.Identity()
		mvp := proj.Mul(view).Mul(modelMat)

		renderer.Draw(mvp, modelMat, ambient, diffuse)
		win.SwapBuffers()
	}
}

func flatten3(vecs []math.Vec3) []float32 {
	out := make([]float32, 0, len(vecs)*3)
	for _, v := range vecs {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}

func flatten2(vecs []math.Vec2) []float32 {
	out := make([]float32, 0, len(vecs)*2)
	for _, v := range vecs {
		out = append(out, v.X, v.Y)
	}
	return out
}

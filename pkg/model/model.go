// Package model resolves parsed OBJ face records into flat, renderer-ready
// mesh buffers.
package model

import (
	"fmt"

	"github.com/Faultbox/wavefront/pkg/formats"
	"github.com/Faultbox/wavefront/pkg/math"
)

// Topology identifies the primitive layout of a mesh index buffer.
type Topology int

const (
	// Triangles is a triangle list: every three indices form one triangle.
	Triangles Topology = iota
)

// String returns a human-readable topology name.
func (t Topology) String() string {
	switch t {
	case Triangles:
		return "Triangles"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// Bounds is the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Mesh holds unwelded mesh data ready for GPU upload. Every face corner owns
// its own output vertex, so Indices is the identity permutation and the
// attribute buffers all have length 3 times the accepted face count. A mesh
// with no accepted faces has empty buffers; callers must tolerate that.
type Mesh struct {
	Indices   []uint32
	Positions []math.Vec3
	Normals   []math.Vec3
	TexCoords []math.Vec2
	Topology  Topology

	// Material is the single material applied to the whole mesh: the one
	// active when parsing finished. Nil if the file never selected one.
	Material *formats.Material

	Bounds Bounds
}

// FaceCount returns the number of triangles in the mesh.
func (m *Mesh) FaceCount() int {
	return len(m.Indices) / 3
}

// Build resolves every face record of doc against its raw attribute arrays
// and repacks them into a flat mesh. A face whose indices do not resolve
// within the current array bounds is dropped and reported through diag;
// resolution continues with the remaining faces.
func Build(doc *formats.OBJ, diag formats.DiagnosticFunc) *Mesh {
	mesh := &Mesh{
		Topology: Triangles,
		Material: doc.Material,
	}

	for _, face := range doc.Faces {
		if !resolvable(doc, face) {
			if diag != nil {
				diag(formats.Diagnostic{
					File:    doc.Name,
					Line:    face.Line,
					Message: "face index out of range",
				})
			}
			continue
		}

		for _, c := range face.Corners {
			pos := doc.Positions[c.Position-1]
			mesh.Positions = append(mesh.Positions, pos)
			mesh.Normals = append(mesh.Normals, resolveNormal(doc, c))
			mesh.TexCoords = append(mesh.TexCoords, resolveTexCoord(doc, c))
			mesh.Indices = append(mesh.Indices, uint32(len(mesh.Indices)))

			if len(mesh.Positions) == 1 {
				mesh.Bounds = Bounds{Min: pos, Max: pos}
			} else {
				mesh.Bounds.Min = mesh.Bounds.Min.Min(pos)
				mesh.Bounds.Max = mesh.Bounds.Max.Max(pos)
			}
		}
	}

	return mesh
}

// resolvable checks that every corner index of face lies within the raw
// arrays. Index 0 is valid for texcoords and normals: it marks a slot the
// face encoding omitted and resolves to an implicit zero attribute.
func resolvable(doc *formats.OBJ, face formats.Face) bool {
	for _, c := range face.Corners {
		if c.Position < 1 || c.Position > len(doc.Positions) {
			return false
		}
		if c.TexCoord < 0 || c.TexCoord > len(doc.TexCoords) {
			return false
		}
		if c.Normal < 0 || c.Normal > len(doc.Normals) {
			return false
		}
	}
	return true
}

func resolveTexCoord(doc *formats.OBJ, c formats.FaceCorner) math.Vec2 {
	if c.TexCoord == 0 {
		return math.Vec2{}
	}
	return doc.TexCoords[c.TexCoord-1]
}

func resolveNormal(doc *formats.OBJ, c formats.FaceCorner) math.Vec3 {
	if c.Normal == 0 {
		return math.Vec3{}
	}
	return doc.Normals[c.Normal-1]
}

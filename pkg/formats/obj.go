package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/wavefront/pkg/math"
)

// FaceCorner holds the 1-based attribute indices of one triangle corner as
// they were read from the file. A zero TexCoord or Normal index marks a slot
// the face encoding omitted; it resolves to an implicit zero attribute.
type FaceCorner struct {
	Position int
	TexCoord int
	Normal   int
}

// Face is one triangle, recorded with the material that was active when it
// was declared and the line it came from.
type Face struct {
	Corners  [3]FaceCorner
	Material *Material
	Line     int
}

// OBJ holds the raw result of parsing an OBJ file: append-only attribute
// arrays, the face records referencing them, and the material table built
// from every mtllib the file named.
type OBJ struct {
	// Name is the file name used in diagnostics.
	Name string

	Positions []math.Vec3
	TexCoords []math.Vec2
	Normals   []math.Vec3
	Faces     []Face

	// Materials maps material names across all referenced libraries.
	Materials map[string]*Material
	// Material is the material that was active when parsing finished.
	// It is nil if the file never selected one.
	Material *Material
}

// ParseOBJFile parses an OBJ file from disk. Material libraries are resolved
// relative to the file's directory.
func (p *Parser) ParseOBJFile(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()
	return p.ParseOBJ(f, filepath.Base(path), filepath.Dir(path))
}

// ParseOBJ parses OBJ text from r in a single pass. name is the file name
// reported in diagnostics and dir is the directory mtllib references resolve
// against. Only read failures and unopenable material libraries return an
// error; every other problem is a diagnostic.
func (p *Parser) ParseOBJ(r io.Reader, name, dir string) (*OBJ, error) {
	doc := &OBJ{
		Name:      name,
		Materials: make(map[string]*Material),
	}

	// Material selected by the last usemtl. Stays nil until the first one.
	var current *Material
	// Stand-in for usemtl names missing from the table. Never enters the
	// material table.
	var fallback *Material

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 4096), 1<<20)

	line := 0
	for sc.Scan() {
		line++
		fields := splitLine(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "g", "s":
			// Groups and smoothing groups are not modeled.

		case "v":
			if pos, ok := parseVec3(fields[1:]); ok {
				doc.Positions = append(doc.Positions, pos)
			} else {
				p.report(name, line, "invalid vertex")
			}

		case "vt":
			if tc, ok := parseVec2(fields[1:]); ok {
				doc.TexCoords = append(doc.TexCoords, tc)
			} else {
				p.report(name, line, "invalid texture coordinate")
			}

		case "vn":
			if n, ok := parseVec3(fields[1:]); ok {
				doc.Normals = append(doc.Normals, n)
			} else {
				p.report(name, line, "invalid vertex normal")
			}

		case "f":
			if len(fields) != 4 {
				p.report(name, line, "face has not been triangulated")
				continue
			}
			corners, ok := parseFaceCorners(fields[1:4])
			if !ok {
				p.report(name, line, "invalid face")
				continue
			}
			doc.Faces = append(doc.Faces, Face{
				Corners:  corners,
				Material: current,
				Line:     line,
			})

		case "mtllib":
			if len(fields) < 2 {
				p.report(name, line, "invalid mtllib declaration")
				continue
			}
			for _, lib := range fields[1:] {
				if err := p.ParseMTLFile(filepath.Join(dir, lib), doc.Materials); err != nil {
					return nil, err
				}
			}

		case "usemtl":
			if len(fields) < 2 {
				p.report(name, line, "invalid usemtl declaration")
				continue
			}
			if m, ok := doc.Materials[fields[1]]; ok {
				current = m
			} else {
				p.report(name, line, fmt.Sprintf("material %q is not defined in any material library", fields[1]))
				if fallback == nil {
					fallback = NewMaterial("default")
				}
				current = fallback
			}

		default:
			p.report(name, line, "unsupported OBJ declaration")
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	doc.Material = current
	return doc, nil
}

// parseFaceCorners matches three corner tokens against the face encodings
// "pos/tex/norm", "pos//norm" and "pos", tried in that order. The first
// encoding matched by all three corners governs; a mixed face matches none.
func parseFaceCorners(tokens []string) ([3]FaceCorner, bool) {
	encodings := []func(string) (FaceCorner, bool){
		cornerFull,
		cornerPosNormal,
		cornerPos,
	}
	for _, parse := range encodings {
		var corners [3]FaceCorner
		ok := true
		for i, tok := range tokens {
			c, matched := parse(tok)
			if !matched {
				ok = false
				break
			}
			corners[i] = c
		}
		if ok {
			return corners, true
		}
	}
	return [3]FaceCorner{}, false
}

// cornerFull matches "pos/tex/norm".
func cornerFull(tok string) (FaceCorner, bool) {
	parts := strings.Split(tok, "/")
	if len(parts) != 3 {
		return FaceCorner{}, false
	}
	pos, err1 := strconv.Atoi(parts[0])
	tex, err2 := strconv.Atoi(parts[1])
	norm, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return FaceCorner{}, false
	}
	return FaceCorner{Position: pos, TexCoord: tex, Normal: norm}, true
}

// cornerPosNormal matches "pos//norm". The omitted texcoord slot stays 0.
func cornerPosNormal(tok string) (FaceCorner, bool) {
	parts := strings.Split(tok, "/")
	if len(parts) != 3 || parts[1] != "" {
		return FaceCorner{}, false
	}
	pos, err1 := strconv.Atoi(parts[0])
	norm, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		return FaceCorner{}, false
	}
	return FaceCorner{Position: pos, Normal: norm}, true
}

// cornerPos matches a bare position index.
func cornerPos(tok string) (FaceCorner, bool) {
	if strings.Contains(tok, "/") {
		return FaceCorner{}, false
	}
	pos, err := strconv.Atoi(tok)
	if err != nil {
		return FaceCorner{}, false
	}
	return FaceCorner{Position: pos}, true
}

package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/wavefront/pkg/math"
)

// Material describes the surface appearance properties declared by an MTL
// material library entry. Texture and Shader reference resources owned by an
// external manager; each material carries at most one of either.
type Material struct {
	Name      string
	Ambient   math.Vec4
	Diffuse   math.Vec4
	Specular  math.Vec4
	Shininess float32
	Texture   *ResourceRef
	Shader    *ResourceRef
}

// NewMaterial returns a material with the defaults given in the MTL
// specification: ambient (.2,.2,.2,1), diffuse (.8,.8,.8,1),
// specular (1,1,1,1), shininess 0.
func NewMaterial(name string) *Material {
	return &Material{
		Name:     name,
		Ambient:  math.Vec4{X: 0.2, Y: 0.2, Z: 0.2, W: 1},
		Diffuse:  math.Vec4{X: 0.8, Y: 0.8, Z: 0.8, W: 1},
		Specular: math.Vec4{X: 1, Y: 1, Z: 1, W: 1},
	}
}

// ParseMTLFile parses a material library from disk and merges it into table.
// Only a failure to open the file is an error.
func (p *Parser) ParseMTLFile(path string, table map[string]*Material) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening material library: %w", err)
	}
	defer f.Close()
	return p.ParseMTL(f, filepath.Base(path), table)
}

// ParseMTL parses MTL text from r and merges the declared materials into
// table. A name declared again replaces the earlier entry with a fresh
// default material. name is the file name reported in diagnostics.
func (p *Parser) ParseMTL(r io.Reader, name string, table map[string]*Material) error {
	// The material the last newmtl opened. Color, shininess, texture and
	// shader directives apply to it; before the first newmtl they are
	// errors.
	var current *Material

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
		case "newmtl":
			if len(fields) < 2 {
				p.report(name, line, "invalid newmtl declaration")
				continue
			}
			current = NewMaterial(fields[1])
			table[fields[1]] = current

		case "Ka", "Kd", "Ks":
			rgb, ok := parseVec3(fields[1:])
			if !ok {
				p.report(name, line, "invalid "+fields[0]+" declaration")
				continue
			}
			if current == nil {
				p.report(name, line, fields[0]+" section without newmtl declaration")
				continue
			}
			switch fields[0] {
			case "Ka":
				setRGB(&current.Ambient, rgb)
			case "Kd":
				setRGB(&current.Diffuse, rgb)
			case "Ks":
				setRGB(&current.Specular, rgb)
			}

		case "Ns":
			if len(fields) < 2 {
				p.report(name, line, "invalid Ns declaration")
				continue
			}
			shininess, err := parseFloat(fields[1])
			if err != nil {
				p.report(name, line, "invalid Ns declaration")
				continue
			}
			if current == nil {
				p.report(name, line, "Ns section without newmtl declaration")
				continue
			}
			current.Shininess = shininess

		case "map_Kd":
			p.attach(name, line, fields, current, &attachment{
				directive: "map_Kd",
				slot:      func(m *Material) **ResourceRef { return &m.Texture },
				load:      p.LoadTexture,
			})

		case "shader":
			p.attach(name, line, fields, current, &attachment{
				directive: "shader",
				slot:      func(m *Material) **ResourceRef { return &m.Shader },
				load:      p.LoadShader,
			})

		default:
			// All other MTL sections are ignored.
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	return nil
}

// attachment describes a sub-resource directive (map_Kd or shader).
type attachment struct {
	directive string
	slot      func(*Material) **ResourceRef
	load      LoaderFunc
}

// attach handles a texture or shader directive: the material must exist and
// the slot must still be empty, then the reference is created through the
// configured loader. Without a loader only the name is recorded.
func (p *Parser) attach(file string, line int, fields []string, current *Material, a *attachment) {
	if len(fields) < 2 {
		p.report(file, line, "invalid "+a.directive+" declaration")
		return
	}
	if current == nil {
		p.report(file, line, a.directive+" section without newmtl declaration")
		return
	}
	slot := a.slot(current)
	if *slot != nil {
		p.report(file, line, "multiple "+a.directive+" sections in material "+current.Name)
		return
	}

	ref := ResourceRef{Name: fields[1]}
	if a.load != nil {
		loaded, err := a.load(fields[1])
		if err != nil {
			p.report(file, line, fmt.Sprintf("creating %s resource %q: %v", a.directive, fields[1], err))
			return
		}
		ref = loaded
	}
	*slot = &ref
}

// setRGB overwrites the RGB components of a color, leaving alpha untouched.
func setRGB(dst *math.Vec4, rgb math.Vec3) {
	dst.X = rgb.X
	dst.Y = rgb.Y
	dst.Z = rgb.Z
}

// Package formats provides parsers for Wavefront geometry file formats.
//
// OBJ (geometry) is parsed by Parser.ParseOBJ and MTL (material libraries)
// by Parser.ParseMTL. Both parsers are fault tolerant: only a failure to
// open or read a file aborts a parse, every other problem is reported as a
// Diagnostic and parsing continues with the next line.
package formats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/wavefront/pkg/math"
)

// MaxLineBytes is the longest line either parser considers. Longer lines
// are truncated before they are interpreted.
const MaxLineBytes = 254

// Diagnostic reports a recoverable parse problem and where it occurred.
// Line numbers are 1-based.
type Diagnostic struct {
	File    string
	Line    int
	Message string
}

// String formats the diagnostic as "file line[n] message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s line[%d] %s", d.File, d.Line, d.Message)
}

// DiagnosticFunc receives parse diagnostics. A nil function drops them.
type DiagnosticFunc func(d Diagnostic)

// ResourceRef references a texture or shader owned by an external resource
// manager. ID is the manager's handle; it is zero when no loader was
// configured and only the name could be recorded.
type ResourceRef struct {
	Name string
	ID   uint32
}

// LoaderFunc resolves a texture or shader filename into an externally owned
// resource handle.
type LoaderFunc func(name string) (ResourceRef, error)

// Parser parses OBJ and MTL files. The zero value is usable; Diag and the
// loaders are optional.
type Parser struct {
	// Diag receives every recoverable parse problem.
	Diag DiagnosticFunc
	// LoadTexture is invoked for map_Kd directives.
	LoadTexture LoaderFunc
	// LoadShader is invoked for shader directives.
	LoadShader LoaderFunc
}

func (p *Parser) report(file string, line int, msg string) {
	if p.Diag != nil {
		p.Diag(Diagnostic{File: file, Line: line, Message: msg})
	}
}

// splitLine truncates a raw line to MaxLineBytes and splits it into
// whitespace-separated fields. It returns nil for blank and comment lines.
func splitLine(text string) []string {
	if len(text) > MaxLineBytes {
		text = text[:MaxLineBytes]
	}
	text = strings.TrimRight(text, "\r")
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}
	return strings.Fields(trimmed)
}

// parseFloat parses a float with '.' as the decimal separator regardless of
// the process locale. Values written with ',' are malformed.
func parseFloat(s string) (float32, error) {
	if strings.ContainsRune(s, ',') {
		return 0, strconv.ErrSyntax
	}
	f, err := strconv.ParseFloat(s, 32)
	return float32(f), err
}

// parseVec3 parses three floats from the start of fields.
func parseVec3(fields []string) (math.Vec3, bool) {
	if len(fields) < 3 {
		return math.Vec3{}, false
	}
	x, err1 := parseFloat(fields[0])
	y, err2 := parseFloat(fields[1])
	z, err3 := parseFloat(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return math.Vec3{}, false
	}
	return math.Vec3{X: x, Y: y, Z: z}, true
}

// parseVec2 parses two floats from the start of fields.
func parseVec2(fields []string) (math.Vec2, bool) {
	if len(fields) < 2 {
		return math.Vec2{}, false
	}
	x, err1 := parseFloat(fields[0])
	y, err2 := parseFloat(fields[1])
	if err1 != nil || err2 != nil {
		return math.Vec2{}, false
	}
	return math.Vec2{X: x, Y: y}, true
}

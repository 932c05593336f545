package formats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// collect returns a parser that records every diagnostic.
func collect() (*Parser, *[]Diagnostic) {
	var diags []Diagnostic
	p := &Parser{
		Diag: func(d Diagnostic) {
			diags = append(diags, d)
		},
	}
	return p, &diags
}

func parseOBJString(t *testing.T, src string) (*OBJ, []Diagnostic) {
	t.Helper()
	p, diags := collect()
	doc, err := p.ParseOBJ(strings.NewReader(src), "test.obj", ".")
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	return doc, *diags
}

func TestParseOBJ_SingleTriangle(t *testing.T) {
	doc, diags := parseOBJString(t, `
# simple triangle
v 0 0 0
v 1 0 0
v 0 1 0
vt 0.5 0.5
vn 0 0 1
f 1/1/1 2/1/1 3/1/1
`)

	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
	if len(doc.Positions) != 3 {
		t.Errorf("position count = %d, want 3", len(doc.Positions))
	}
	if len(doc.TexCoords) != 1 {
		t.Errorf("texcoord count = %d, want 1", len(doc.TexCoords))
	}
	if len(doc.Normals) != 1 {
		t.Errorf("normal count = %d, want 1", len(doc.Normals))
	}
	if len(doc.Faces) != 1 {
		t.Fatalf("face count = %d, want 1", len(doc.Faces))
	}

	face := doc.Faces[0]
	for i, c := range face.Corners {
		if c.Position != i+1 {
			t.Errorf("corner %d position index = %d, want %d", i, c.Position, i+1)
		}
		if c.TexCoord != 1 || c.Normal != 1 {
			t.Errorf("corner %d = %+v, want texcoord 1 and normal 1", i, c)
		}
	}
	if face.Material != nil {
		t.Error("face material should be nil without usemtl")
	}
}

func TestParseOBJ_FaceEncodings(t *testing.T) {
	tests := []struct {
		name    string
		face    string
		want    [3]FaceCorner
		wantErr bool
	}{
		{
			name: "full encoding",
			face: "f 1/2/3 4/5/6 7/8/9",
			want: [3]FaceCorner{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
		},
		{
			name: "position and normal",
			face: "f 1//3 4//6 7//9",
			want: [3]FaceCorner{{1, 0, 3}, {4, 0, 6}, {7, 0, 9}},
		},
		{
			name: "position only",
			face: "f 1 2 3",
			want: [3]FaceCorner{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}},
		},
		{
			name:    "mixed encodings",
			face:    "f 1/2/3 4//6 7",
			wantErr: true,
		},
		{
			name:    "position and texcoord only",
			face:    "f 1/2 3/4 5/6",
			wantErr: true,
		},
		{
			name:    "garbage indices",
			face:    "f a/b/c d/e/f g/h/i",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, diags := parseOBJString(t, tt.face+"\n")
			if tt.wantErr {
				if len(doc.Faces) != 0 {
					t.Errorf("expected face to be dropped, got %d faces", len(doc.Faces))
				}
				if len(diags) != 1 {
					t.Errorf("expected 1 diagnostic, got %v", diags)
				}
				return
			}
			if len(doc.Faces) != 1 {
				t.Fatalf("expected 1 face, got %d (diags %v)", len(doc.Faces), diags)
			}
			if doc.Faces[0].Corners != tt.want {
				t.Errorf("corners = %v, want %v", doc.Faces[0].Corners, tt.want)
			}
		})
	}
}

func TestParseOBJ_QuadRejected(t *testing.T) {
	doc, diags := parseOBJString(t, `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`)

	if len(doc.Faces) != 0 {
		t.Errorf("expected 0 faces, got %d", len(doc.Faces))
	}
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", diags)
	}
	if !strings.Contains(diags[0].Message, "triangulated") {
		t.Errorf("diagnostic %q should mention triangulation", diags[0].Message)
	}
	if diags[0].Line != 6 {
		t.Errorf("diagnostic line = %d, want 6", diags[0].Line)
	}
}

func TestParseOBJ_MalformedAttributes(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"vertex too few floats", "v 1 2"},
		{"vertex not a number", "v a b c"},
		{"vertex comma separator", "v 1,5 2 3"},
		{"texcoord too few floats", "vt 1"},
		{"normal too few floats", "vn 1 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, diags := parseOBJString(t, tt.line+"\n")
			if len(doc.Positions)+len(doc.TexCoords)+len(doc.Normals) != 0 {
				t.Error("malformed attribute should not be appended")
			}
			if len(diags) != 1 {
				t.Errorf("expected 1 diagnostic, got %v", diags)
			}
		})
	}
}

func TestParseOBJ_IgnoredAndUnsupportedLines(t *testing.T) {
	doc, diags := parseOBJString(t, `
# a comment
g wheel
s 1
o car
v 1 2 3
`)

	if len(doc.Positions) != 1 {
		t.Errorf("position count = %d, want 1", len(doc.Positions))
	}
	// Only the object name line is unsupported; comment, group and
	// smoothing lines are silently ignored.
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", diags)
	}
	if !strings.Contains(diags[0].Message, "unsupported") {
		t.Errorf("diagnostic %q should mention unsupported declaration", diags[0].Message)
	}
}

func TestParseOBJ_UndefinedMaterial(t *testing.T) {
	doc, diags := parseOBJString(t, `
v 0 0 0
v 1 0 0
v 0 1 0
usemtl ghost
f 1 2 3
`)

	if len(diags) != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %v", diags)
	}
	if len(doc.Faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(doc.Faces))
	}

	mat := doc.Faces[0].Material
	if mat == nil {
		t.Fatal("face should carry the fallback material")
	}
	if mat.Ambient != (NewMaterial("").Ambient) {
		t.Errorf("fallback ambient = %v, want defaults", mat.Ambient)
	}
	if mat.Diffuse != (NewMaterial("").Diffuse) {
		t.Errorf("fallback diffuse = %v, want defaults", mat.Diffuse)
	}
	if mat.Shininess != 0 {
		t.Errorf("fallback shininess = %f, want 0", mat.Shininess)
	}
	if _, ok := doc.Materials["ghost"]; ok {
		t.Error("fallback material must not enter the table")
	}
}

func TestParseOBJ_MtllibAndUsemtl(t *testing.T) {
	dir := t.TempDir()

	mtl := `
newmtl shiny
Ka 0.1 0.2 0.3
Kd 0.4 0.5 0.6
Ns 32
`
	if err := os.WriteFile(filepath.Join(dir, "scene.mtl"), []byte(mtl), 0644); err != nil {
		t.Fatal(err)
	}

	obj := `
mtllib scene.mtl
v 0 0 0
v 1 0 0
v 0 1 0
usemtl shiny
f 1 2 3
`
	objPath := filepath.Join(dir, "scene.obj")
	if err := os.WriteFile(objPath, []byte(obj), 0644); err != nil {
		t.Fatal(err)
	}

	p, diags := collect()
	doc, err := p.ParseOBJFile(objPath)
	if err != nil {
		t.Fatalf("ParseOBJFile failed: %v", err)
	}
	if len(*diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", *diags)
	}

	mat, ok := doc.Materials["shiny"]
	if !ok {
		t.Fatal("material 'shiny' missing from table")
	}
	if mat.Ambient.X != 0.1 {
		t.Errorf("ambient.X = %f, want 0.1", mat.Ambient.X)
	}
	if mat.Shininess != 32 {
		t.Errorf("shininess = %f, want 32", mat.Shininess)
	}
	if doc.Material != mat {
		t.Error("document material should be the last selected one")
	}
	if doc.Faces[0].Material != mat {
		t.Error("face should reference the selected material")
	}
}

func TestParseOBJ_MissingMtllibIsFatal(t *testing.T) {
	p, _ := collect()
	_, err := p.ParseOBJ(strings.NewReader("mtllib nope.mtl\n"), "test.obj", t.TempDir())
	if err == nil {
		t.Fatal("expected error for unopenable material library")
	}
}

func TestParseOBJFile_MissingFile(t *testing.T) {
	p, _ := collect()
	_, err := p.ParseOBJFile(filepath.Join(t.TempDir(), "missing.obj"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseOBJ_LastMaterialWins(t *testing.T) {
	dir := t.TempDir()

	mtl := `
newmtl first
newmtl second
`
	if err := os.WriteFile(filepath.Join(dir, "m.mtl"), []byte(mtl), 0644); err != nil {
		t.Fatal(err)
	}

	obj := `
mtllib m.mtl
v 0 0 0
v 1 0 0
v 0 1 0
usemtl first
f 1 2 3
usemtl second
f 1 2 3
`
	objPath := filepath.Join(dir, "multi.obj")
	if err := os.WriteFile(objPath, []byte(obj), 0644); err != nil {
		t.Fatal(err)
	}

	p, _ := collect()
	doc, err := p.ParseOBJFile(objPath)
	if err != nil {
		t.Fatalf("ParseOBJFile failed: %v", err)
	}

	if doc.Material == nil || doc.Material.Name != "second" {
		t.Errorf("document material = %v, want 'second'", doc.Material)
	}
	if doc.Faces[0].Material.Name != "first" {
		t.Errorf("first face material = %s, want 'first'", doc.Faces[0].Material.Name)
	}
}

func TestParseOBJ_LongLineTruncated(t *testing.T) {
	// A vertex line padded far past the limit still parses: the floats sit
	// within the first 254 bytes.
	line := "v 1 2 3" + strings.Repeat(" ", 400) + "\nv 4 5 6\n"
	doc, _ := parseOBJString(t, line)
	if len(doc.Positions) != 2 {
		t.Errorf("position count = %d, want 2", len(doc.Positions))
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{File: "a.obj", Line: 12, Message: "invalid vertex"}
	want := "a.obj line[12] invalid vertex"
	if d.String() != want {
		t.Errorf("String() = %q, want %q", d.String(), want)
	}
}

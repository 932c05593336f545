package resource

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeModel(t *testing.T, dir string) string {
	t.Helper()

	mtl := `
newmtl brick
Kd 0.6 0.3 0.1
map_Kd brick.tga
`
	if err := os.WriteFile(filepath.Join(dir, "wall.mtl"), []byte(mtl), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "brick.tga"), []byte("not a real texture"), 0644); err != nil {
		t.Fatal(err)
	}

	obj := `
mtllib wall.mtl
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
usemtl brick
f 1/1/1 2/2/1 3/3/1
`
	path := filepath.Join(dir, "wall.obj")
	if err := os.WriteFile(path, []byte(obj), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOBJPluginExtensions(t *testing.T) {
	p := NewOBJPlugin(NewManager())
	got := p.Extensions()
	if len(got) != 1 || got[0] != "obj" {
		t.Errorf("Extensions() = %v, want [obj]", got)
	}
}

func TestOBJResourceLoad(t *testing.T) {
	path := writeModel(t, t.TempDir())

	mgr := NewManager()
	mgr.Register(NewOBJPlugin(mgr))

	res, err := mgr.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	mesh := res.Mesh()
	if mesh == nil {
		t.Fatal("Mesh() = nil after load")
	}
	if mesh.FaceCount() != 1 {
		t.Errorf("face count = %d, want 1", mesh.FaceCount())
	}
	if mesh.Material == nil || mesh.Material.Name != "brick" {
		t.Errorf("material = %v, want 'brick'", mesh.Material)
	}
	if mesh.Material.Texture == nil || mesh.Material.Texture.Name != "brick.tga" {
		t.Errorf("texture = %v", mesh.Material.Texture)
	}
}

func TestOBJResourceLoad_MissingFile(t *testing.T) {
	mgr := NewManager()
	mgr.Register(NewOBJPlugin(mgr))

	if _, err := mgr.Load(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOBJResourceLoad_Idempotent(t *testing.T) {
	path := writeModel(t, t.TempDir())

	mgr := NewManager()
	mgr.Register(NewOBJPlugin(mgr))

	res, err := mgr.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	mesh := res.Mesh()

	// A second Load on a loaded session must not re-parse.
	if err := res.Load(); err != nil {
		t.Fatal(err)
	}
	if res.Mesh() != mesh {
		t.Error("second Load must keep the existing mesh")
	}
}

func TestOBJResourceUnloadReload(t *testing.T) {
	path := writeModel(t, t.TempDir())

	mgr := NewManager()
	mgr.Register(NewOBJPlugin(mgr))

	res, err := mgr.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	first := res.Mesh()

	res.Unload()
	if res.Mesh() != nil {
		t.Fatal("Mesh() must be nil after Unload")
	}
	res.Unload() // idempotent

	if err := res.Load(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	second := res.Mesh()
	if second == first {
		t.Error("reload should produce a new mesh")
	}
	if !reflect.DeepEqual(first.Positions, second.Positions) {
		t.Error("reloaded mesh differs from the original")
	}
	if !reflect.DeepEqual(first.Indices, second.Indices) {
		t.Error("reloaded index buffer differs from the original")
	}
}

func TestOBJResourceLoad_TextureResolvedViaModelDir(t *testing.T) {
	dir := t.TempDir()
	path := writeModel(t, dir)

	mgr := NewManager()
	mgr.Register(NewOBJPlugin(mgr))

	var got string
	mgr.SetTextureCreator(func(p string) (uint32, error) {
		got = p
		return 3, nil
	})

	res, err := mgr.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(dir, "brick.tga")
	if got != want {
		t.Errorf("creator received %q, want %q", got, want)
	}
	if res.Mesh().Material.Texture.ID != 3 {
		t.Errorf("texture ID = %d, want 3", res.Mesh().Material.Texture.ID)
	}

	// The model directory was pushed only for the duration of the load.
	if mgr.ContainsPath(dir) {
		t.Error("model directory must be popped after load")
	}
}

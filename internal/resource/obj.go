package resource

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/wavefront/pkg/formats"
	"github.com/Faultbox/wavefront/pkg/model"
)

// OBJPlugin creates model resources for Wavefront OBJ files.
type OBJPlugin struct {
	mgr *Manager
}

// NewOBJPlugin creates the OBJ plugin bound to a manager.
func NewOBJPlugin(m *Manager) *OBJPlugin {
	return &OBJPlugin{mgr: m}
}

// Extensions returns the file extensions handled by this plugin.
func (p *OBJPlugin) Extensions() []string {
	return []string{"obj"}
}

// Create creates an unloaded OBJ model resource session.
func (p *OBJPlugin) Create(path string) ModelResource {
	return &OBJResource{path: path, mgr: p.mgr}
}

// OBJResource is one OBJ parse session. It owns its raw arrays and material
// table exclusively; no concurrent access is supported.
type OBJResource struct {
	path string
	mgr  *Manager
	mesh *model.Mesh
}

// Load parses the OBJ file and builds the mesh. Calling Load on an already
// loaded session is a no-op. Only a file open or read failure is returned;
// all other problems are logged and absorbed.
func (r *OBJResource) Load() error {
	if r.mesh != nil {
		return nil
	}

	dir := filepath.Dir(r.path)
	parser := &formats.Parser{
		Diag:        r.diag,
		LoadTexture: r.subResource(dir, r.mgr.createTexture),
		LoadShader:  r.subResource(dir, r.mgr.createShader),
	}

	doc, err := parser.ParseOBJFile(r.path)
	if err != nil {
		return err
	}

	r.mesh = model.Build(doc, r.diag)
	r.mgr.log.Debug("model loaded",
		zap.String("file", r.path),
		zap.Int("faces", r.mesh.FaceCount()),
	)
	return nil
}

// Unload releases the session's mesh. Externally owned textures and shaders
// are left alone. Unload is idempotent.
func (r *OBJResource) Unload() {
	r.mesh = nil
}

// Mesh returns the loaded mesh, or nil before Load / after Unload.
func (r *OBJResource) Mesh() *model.Mesh {
	return r.mesh
}

// subResource wraps a sub-resource creator with a search-path push/pop so
// texture and shader names relative to the OBJ's directory resolve.
func (r *OBJResource) subResource(dir string, create func(string) (formats.ResourceRef, error)) formats.LoaderFunc {
	return func(name string) (formats.ResourceRef, error) {
		if !r.mgr.ContainsPath(dir) {
			r.mgr.PushPath(dir)
			defer r.mgr.PopPath()
		}
		return create(name)
	}
}

func (r *OBJResource) diag(d formats.Diagnostic) {
	r.mgr.log.Warn(d.Message,
		zap.String("file", d.File),
		zap.Int("line", d.Line),
	)
}

// Package resource manages model resources: it dispatches files to format
// plugins by extension, caches loaded sessions, and resolves texture and
// shader names through a search-path stack before delegating their creation
// to externally registered creators.
package resource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/wavefront/pkg/formats"
	"github.com/Faultbox/wavefront/pkg/model"
)

// ModelResource is one loadable model session. Load on an already loaded
// session is a no-op; Unload is idempotent and releases only the session's
// own mesh, never externally owned textures or shaders.
type ModelResource interface {
	Load() error
	Unload()
	Mesh() *model.Mesh
}

// Plugin creates model resources for the file extensions it supports.
// Extensions are reported lower-case without the leading dot.
type Plugin interface {
	Extensions() []string
	Create(path string) ModelResource
}

// CreatorFunc creates an externally owned sub-resource (a texture or a
// shader) from a resolved file path and returns its handle.
type CreatorFunc func(path string) (uint32, error)

// Manager owns the plugin registry, the search-path stack, and the session
// cache.
type Manager struct {
	mu       sync.RWMutex
	plugins  map[string]Plugin
	paths    []string
	sessions map[string]ModelResource
	textures CreatorFunc
	shaders  CreatorFunc
	log      *zap.Logger
}

// NewManager creates an empty manager. Diagnostics are dropped until
// SetLogger is called.
func NewManager() *Manager {
	return &Manager{
		plugins:  make(map[string]Plugin),
		sessions: make(map[string]ModelResource),
		log:      zap.NewNop(),
	}
}

// SetLogger routes parse diagnostics and manager events to l.
func (m *Manager) SetLogger(l *zap.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l != nil {
		m.log = l
	}
}

// Register adds a plugin for every extension it reports. A later
// registration for the same extension wins.
func (m *Manager) Register(p Plugin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ext := range p.Extensions() {
		m.plugins[strings.ToLower(ext)] = p
	}
}

// SetTextureCreator registers the external texture creator.
func (m *Manager) SetTextureCreator(fn CreatorFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textures = fn
}

// SetShaderCreator registers the external shader creator.
func (m *Manager) SetShaderCreator(fn CreatorFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shaders = fn
}

// PushPath pushes a directory onto the search-path stack.
func (m *Manager) PushPath(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, dir)
}

// PopPath removes the most recently pushed directory.
func (m *Manager) PopPath() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.paths) > 0 {
		m.paths = m.paths[:len(m.paths)-1]
	}
}

// ContainsPath reports whether dir is already on the search-path stack.
func (m *Manager) ContainsPath(dir string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.paths {
		if p == dir {
			return true
		}
	}
	return false
}

// Resolve searches the path stack, most recently pushed first, for an
// existing file with the given name.
func (m *Manager) Resolve(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.paths) - 1; i >= 0; i-- {
		candidate := filepath.Join(m.paths[i], name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// Load creates (or returns the cached) model resource for path and ensures
// it is loaded. The plugin is picked by file extension.
func (m *Manager) Load(path string) (ModelResource, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	m.mu.Lock()
	plugin, ok := m.plugins[ext]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("no model plugin registered for extension %q", ext)
	}
	res, cached := m.sessions[path]
	if !cached {
		res = plugin.Create(path)
		m.sessions[path] = res
	}
	m.mu.Unlock()

	if err := res.Load(); err != nil {
		return nil, err
	}
	return res, nil
}

// createTexture resolves name against the search paths and delegates to the
// registered texture creator. With no creator registered, only the name is
// recorded in the reference.
func (m *Manager) createTexture(name string) (formats.ResourceRef, error) {
	return m.createSubResource(name, m.creator(&m.textures))
}

// createShader is the shader counterpart of createTexture.
func (m *Manager) createShader(name string) (formats.ResourceRef, error) {
	return m.createSubResource(name, m.creator(&m.shaders))
}

func (m *Manager) creator(fn *CreatorFunc) CreatorFunc {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *fn
}

func (m *Manager) createSubResource(name string, create CreatorFunc) (formats.ResourceRef, error) {
	if create == nil {
		return formats.ResourceRef{Name: name}, nil
	}
	path, ok := m.Resolve(name)
	if !ok {
		path = name
	}
	id, err := create(path)
	if err != nil {
		return formats.ResourceRef{}, err
	}
	return formats.ResourceRef{Name: name, ID: id}, nil
}

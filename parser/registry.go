package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Registry dispatches to the first registered Port that Supports a file's
// language, generalizing the teacher's inspector.Factory.GetInspector
// (which switches on file extension to pick golang/java/javascript
// inspectors) into an ordered, extensible port list.
type Registry struct {
	ports []Port
}

// NewRegistry creates a Registry with the given ports, tried in order.
func NewRegistry(ports ...Port) *Registry {
	return &Registry{ports: ports}
}

// LanguageForExt maps a file extension (including the leading dot, as
// returned by filepath.Ext) to a language tag.
func LanguageForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".go":
		return "go"
	case ".java":
		return "java"
	case ".js", ".jsx":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".py":
		return "python"
	default:
		return ""
	}
}

// LanguageForPath derives a language tag from a file path's extension.
func LanguageForPath(path string) string {
	return LanguageForExt(filepath.Ext(path))
}

// PortFor returns the first registered Port supporting the language.
func (r *Registry) PortFor(language string) (Port, error) {
	for _, p := range r.ports {
		if p.Supports(language) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("parser: unsupported language %q", language)
}

// Parse resolves a port by src.Language (deriving it from the path when
// unset) and parses src.
func (r *Registry) Parse(ctx context.Context, src SourceFile) (*Tree, error) {
	if src.Language == "" {
		src.Language = LanguageForPath(src.Path)
	}
	port, err := r.PortFor(src.Language)
	if err != nil {
		return nil, err
	}
	return port.Parse(ctx, src)
}

// ParseIncremental resolves a port by src.Language and reparses
// incrementally against prev.
func (r *Registry) ParseIncremental(ctx context.Context, src SourceFile, prev *Tree, edits []Edit) (*Tree, error) {
	if src.Language == "" {
		src.Language = LanguageForPath(src.Path)
	}
	port, err := r.PortFor(src.Language)
	if err != nil {
		return nil, err
	}
	return port.ParseIncremental(ctx, src, prev, edits)
}

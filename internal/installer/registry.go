package installer

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var ErrRegistryFile = errors.New("invalid loaded-module file")

// Module is a module already imported by the host interpreter
type Module struct {
	Name string `yaml:"name"`
	Path string `yaml:"path,omitempty"`
}

// Registry reports the modules currently loaded in the host process
type Registry interface {
	Loaded() (map[string]Module, error)
}

// RegistryFunc adapts a function to the Registry interface
type RegistryFunc func() (map[string]Module, error)

// Loaded calls f
func (f RegistryFunc) Loaded() (map[string]Module, error) {
	return f()
}

// StaticRegistry is a fixed set of loaded modules
type StaticRegistry struct {
	modules map[string]Module
}

// NewStaticRegistry creates a registry holding modules. Later entries with
// the same name replace earlier ones.
func NewStaticRegistry(modules ...Module) *StaticRegistry {
	r := &StaticRegistry{modules: make(map[string]Module, len(modules))}
	for _, m := range modules {
		r.modules[m.Name] = m
	}
	return r
}

// ModuleNames creates a registry from bare module names with unknown paths
func ModuleNames(names ...string) *StaticRegistry {
	modules := make([]Module, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		modules = append(modules, Module{Name: name})
	}
	return NewStaticRegistry(modules...)
}

// Loaded returns a copy of the registry contents
func (r *StaticRegistry) Loaded() (map[string]Module, error) {
	out := make(map[string]Module, len(r.modules))
	for name, m := range r.modules {
		out[name] = m
	}
	return out, nil
}

// Names returns the registered module names, sorted
func (r *StaticRegistry) Names() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadRegistryFile reads a loaded-module snapshot written by the host.
// The file is YAML (JSON is accepted too) and holds either a list of names,
// a list of {name, path} entries, or a mapping of name to path.
func LoadRegistryFile(path string) (*StaticRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read loaded-module file: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes the document format read by LoadRegistryFile
func ParseRegistry(data []byte) (*StaticRegistry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrRegistryFile, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewStaticRegistry(), nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		return parseRegistryList(root)
	case yaml.MappingNode:
		var byName map[string]string
		if err := root.Decode(&byName); err != nil {
			return nil, errors.Join(ErrRegistryFile, err)
		}
		modules := make([]Module, 0, len(byName))
		for name, location := range byName {
			modules = append(modules, Module{Name: name, Path: location})
		}
		return NewStaticRegistry(modules...), nil
	default:
		return nil, fmt.Errorf("%w: line %d: expected a list or a mapping", ErrRegistryFile, root.Line)
	}
}

func parseRegistryList(list *yaml.Node) (*StaticRegistry, error) {
	modules := make([]Module, 0, len(list.Content))
	for _, item := range list.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			modules = append(modules, Module{Name: item.Value})
		case yaml.MappingNode:
			var m Module
			if err := item.Decode(&m); err != nil {
				return nil, errors.Join(ErrRegistryFile, err)
			}
			if m.Name == "" {
				return nil, fmt.Errorf("%w: line %d: entry has no name", ErrRegistryFile, item.Line)
			}
			modules = append(modules, m)
		default:
			return nil, fmt.Errorf("%w: line %d: unexpected entry", ErrRegistryFile, item.Line)
		}
	}
	return NewStaticRegistry(modules...), nil
}

var (
	_ Registry = (*StaticRegistry)(nil)
	_ Registry = RegistryFunc(nil)
)

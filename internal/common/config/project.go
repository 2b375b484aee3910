package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/obentoo/pipinside/internal/pipcmd"
)

// ProjectFile is the project file holding the [tool.pipin] table
const ProjectFile = "pyproject.toml"

// Project is the [tool.pipin] table of a pyproject.toml
type Project struct {
	Path     string
	Python   string
	Defaults *pipcmd.Options
}

type pyproject struct {
	Tool struct {
		Pipin struct {
			Python   string                    `toml:"python"`
			Defaults map[string]toml.Primitive `toml:"defaults"`
		} `toml:"pipin"`
	} `toml:"tool"`
}

// FindProject returns the nearest pyproject.toml at or above dir,
// or "" when there is none
func FindProject(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(current, ProjectFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", nil
		}
		current = parent
	}
}

// LoadProject finds and reads the project settings for dir.
// It returns an empty Project when no pyproject.toml exists.
func LoadProject(dir string) (*Project, error) {
	path, err := FindProject(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return &Project{Defaults: pipcmd.NewOptions()}, nil
	}
	return LoadProjectFrom(path)
}

// LoadProjectFrom reads [tool.pipin] from a pyproject.toml.
// Defaults keep the order they have in the file.
func LoadProjectFrom(path string) (*Project, error) {
	var doc pyproject
	meta, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, errors.Join(ErrInvalidConfig, err))
	}

	project := &Project{
		Path:     path,
		Python:   doc.Tool.Pipin.Python,
		Defaults: pipcmd.NewOptions(),
	}

	for _, key := range meta.Keys() {
		if len(key) != 4 || key[0] != "tool" || key[1] != "pipin" || key[2] != "defaults" {
			continue
		}
		name := key[3]
		value, err := primitiveValue(meta, doc.Tool.Pipin.Defaults[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w: tool.pipin.defaults.%s: %v", path, ErrInvalidConfig, name, err)
		}
		project.Defaults.Set(name, value)
	}

	return project, nil
}

// primitiveValue converts a TOML value into an option value.
// Booleans become flags; strings and numbers are kept as text.
func primitiveValue(meta toml.MetaData, prim toml.Primitive) (pipcmd.Value, error) {
	var raw interface{}
	if err := meta.PrimitiveDecode(prim, &raw); err != nil {
		return pipcmd.Value{}, err
	}

	switch v := raw.(type) {
	case bool:
		return pipcmd.Flag(v), nil
	case string:
		return pipcmd.String(v), nil
	case int64, float64:
		return pipcmd.String(fmt.Sprint(v)), nil
	default:
		return pipcmd.Value{}, fmt.Errorf("must be a string, number or boolean, got %s", strings.ToLower(fmt.Sprintf("%T", raw)))
	}
}

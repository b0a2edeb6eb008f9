package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// Scene loading errors.
var (
	ErrUnsupportedSceneVersion = errors.New("unsupported scene version")
	ErrUnknownSceneFormat      = errors.New("unknown scene file format")
	ErrInvalidScene            = errors.New("invalid scene")
)

// Format is a scene dump encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks a format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownSceneFormat, path)
	}
}

// Load reads and validates a scene dump. BaseDir defaults to the file's
// directory.
func Load(path string) (*Scene, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if s.BaseDir == "" {
		s.BaseDir = filepath.Dir(path)
	} else if !filepath.IsAbs(s.BaseDir) {
		s.BaseDir = filepath.Join(filepath.Dir(path), s.BaseDir)
	}
	return s, nil
}

// Parse decodes and validates a scene dump. Input may start with a byte
// order mark; UTF-16 dumps with one are transcoded.
func Parse(data []byte, format Format) (*Scene, error) {
	data, err := toUTF8(data)
	if err != nil {
		return nil, err
	}
	s := &Scene{}
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(s); err != nil {
			return nil, err
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(s); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSceneFormat, format)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks structural consistency: version, index ranges and layer
// sizes. Semantic checks (UV presence, texture slots) belong to the exporter.
func (s *Scene) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedSceneVersion, s.Version)
	}
	for _, obj := range s.Objects {
		if obj.Name == "" {
			return fmt.Errorf("%w: object without name", ErrInvalidScene)
		}
		if obj.Type == ObjectMesh && obj.Mesh == nil {
			return fmt.Errorf("%w: mesh object %q has no mesh data", ErrInvalidScene, obj.Name)
		}
		if obj.Mesh != nil {
			if err := obj.Mesh.validate(); err != nil {
				return fmt.Errorf("%w: object %q: %v", ErrInvalidScene, obj.Name, err)
			}
		}
	}
	for _, arm := range s.Armatures {
		for _, b := range arm.Bones {
			if b.Name == "" {
				return fmt.Errorf("%w: armature %q has a bone without name", ErrInvalidScene, arm.Name)
			}
		}
	}
	return nil
}

func (m *Mesh) validate() error {
	for fi, f := range m.Faces {
		if len(f.Corners) < 3 {
			return fmt.Errorf("face %d has %d corners", fi, len(f.Corners))
		}
		for _, c := range f.Corners {
			if c.Vertex < 0 || c.Vertex >= len(m.Vertices) {
				return fmt.Errorf("face %d references vertex %d of %d", fi, c.Vertex, len(m.Vertices))
			}
		}
	}
	for _, l := range m.DeformLayers {
		if len(l.Weights) != 0 && len(l.Weights) != len(m.Vertices) {
			return fmt.Errorf("deform layer %q has %d entries for %d vertices", l.Name, len(l.Weights), len(m.Vertices))
		}
	}
	return nil
}

func toUTF8(data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("decoding text: %w", err)
	}
	return out, nil
}

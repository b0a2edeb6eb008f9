package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/Faultbox/zmdl/pkg/scene"
	"github.com/Faultbox/zmdl/pkg/zmdl"
)

// Texture slot keys every material must bind.
const (
	SlotDiffuse  = "diffuse"
	SlotNormal   = "normal"
	SlotMaterial = "material"
)

// resolveUVLayer picks the UV layer named in opts or the active one, and
// checks that every face corner carries a coordinate in it.
func resolveUVLayer(mesh *scene.Mesh, selected string) (string, error) {
	layer := selected
	if layer == "" {
		active, ok := mesh.ActiveUVLayer()
		if !ok {
			return "", fmt.Errorf("%w: mesh %q has no active UV layer", ErrMissingUVLayer, mesh.Name)
		}
		layer = active
	}
	for fi, face := range mesh.Faces {
		for _, c := range face.Corners {
			if _, ok := c.UV[layer]; !ok {
				return "", fmt.Errorf("%w: mesh %q face %d has no coordinates in layer %q",
					ErrMissingUVLayer, mesh.Name, fi, layer)
			}
		}
	}
	return layer, nil
}

// resolveTextures finds the diffuse, normal and material slots of mat. A
// slot matches when its name contains the slot key, first match wins.
func resolveTextures(mat *scene.Material, baseDir string) (zmdl.Textures, error) {
	var tex zmdl.Textures
	for _, slot := range []struct {
		key string
		dst *string
	}{
		{SlotDiffuse, &tex.Diffuse},
		{SlotNormal, &tex.Normal},
		{SlotMaterial, &tex.Material},
	} {
		path, ok := findSlot(mat, slot.key)
		if !ok {
			return zmdl.Textures{}, fmt.Errorf("%w: material %q has no %s texture",
				ErrMissingTextureSlot, mat.Name, slot.key)
		}
		abs, err := resolveTexturePath(path, baseDir)
		if err != nil {
			return zmdl.Textures{}, fmt.Errorf("material %q %s texture: %w", mat.Name, slot.key, err)
		}
		*slot.dst = abs
	}
	return tex, nil
}

func findSlot(mat *scene.Material, key string) (string, bool) {
	for _, s := range mat.Textures {
		if strings.Contains(strings.ToLower(s.Name), key) && s.Path != "" {
			return s.Path, true
		}
	}
	return "", false
}

// resolveTexturePath makes a texture path absolute. "~" expands to the home
// directory; "//" and plain relative paths are relative to baseDir.
func resolveTexturePath(path, baseDir string) (string, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	switch {
	case strings.HasPrefix(path, "//"):
		path = filepath.Join(baseDir, filepath.FromSlash(path[2:]))
	case !filepath.IsAbs(path):
		path = filepath.Join(baseDir, filepath.FromSlash(path))
	}
	return filepath.Abs(path)
}

// submeshSet routes triangles to material submeshes in first-seen order.
type submeshSet struct {
	scene     *scene.Scene
	submeshes *zmdl.OrderedMap[*zmdl.Submesh]
}

func newSubmeshSet(s *scene.Scene) *submeshSet {
	return &submeshSet{scene: s, submeshes: zmdl.NewOrderedMap[*zmdl.Submesh]()}
}

// forMaterial returns the submesh of a material, validating its textures on
// first use.
func (ss *submeshSet) forMaterial(name string) (*zmdl.Submesh, error) {
	if sm, ok := ss.submeshes.Get(name); ok {
		return sm, nil
	}
	mat, ok := ss.scene.Material(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	tex, err := resolveTextures(mat, ss.scene.BaseDir)
	if err != nil {
		return nil, err
	}
	sm := &zmdl.Submesh{Indices: []zmdl.Triangle{}, Textures: tex}
	ss.submeshes.Set(name, sm)
	return sm, nil
}

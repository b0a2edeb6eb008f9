package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/zmdl/pkg/scene"
	"github.com/Faultbox/zmdl/pkg/zmdl"
)

func TestSubmeshesByMaterial(t *testing.T) {
	s := quadScene()
	s.Materials = append(s.Materials, stoneMaterial("moss"))
	mesh := s.Objects[0].Mesh
	mesh.Materials = []string{"moss", "stone"}
	mesh.Faces[0].Material = 1
	mesh.Faces[1].Material = 0

	res, err := buildMesh(s, mesh, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"stone", "moss"}, res.submeshes.Keys(), "submeshes follow first encounter")
	stone, _ := res.submeshes.Get("stone")
	moss, _ := res.submeshes.Get("moss")
	assert.Equal(t, []zmdl.Triangle{{0, 1, 2}}, stone.Indices)
	assert.Equal(t, []zmdl.Triangle{{0, 2, 3}}, moss.Indices)
	assert.Equal(t, zmdl.Textures{
		Diffuse:  "/textures/moss_d.png",
		Normal:   "/textures/moss_n.png",
		Material: "/textures/moss_m.png",
	}, moss.Textures)
}

func TestPolygonIsFanTriangulated(t *testing.T) {
	s := quadScene()
	mesh := s.Objects[0].Mesh
	mesh.Faces = []scene.Face{{
		Normal: [3]float32{0, 0, 1},
		Corners: []scene.Corner{
			{Vertex: 0, UV: uv(0, 0)}, {Vertex: 1, UV: uv(1, 0)},
			{Vertex: 2, UV: uv(1, 1)}, {Vertex: 3, UV: uv(0, 1)},
		},
	}}

	res, err := buildMesh(s, mesh, nil, Options{})
	require.NoError(t, err)
	sm, _ := res.submeshes.Get("stone")
	assert.Equal(t, []zmdl.Triangle{{0, 1, 2}, {0, 2, 3}}, sm.Indices)
}

func TestMissingTextureSlot(t *testing.T) {
	tests := []struct {
		name    string
		missing string
	}{
		{"no diffuse", "diffuse_map"},
		{"no normal", "normal_map"},
		{"no material", "material_map"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := quadScene()
			mat := &s.Materials[0]
			var kept []scene.TextureSlot
			for _, slot := range mat.Textures {
				if slot.Name != tt.missing {
					kept = append(kept, slot)
				}
			}
			mat.Textures = kept

			_, err := buildMesh(s, s.Objects[0].Mesh, nil, Options{})
			require.ErrorIs(t, err, ErrMissingTextureSlot)
			assert.Contains(t, err.Error(), `material "stone"`)
		})
	}
}

func TestEmptyTexturePathIsMissing(t *testing.T) {
	s := quadScene()
	s.Materials[0].Textures[1].Path = ""

	_, err := buildMesh(s, s.Objects[0].Mesh, nil, Options{})
	assert.ErrorIs(t, err, ErrMissingTextureSlot)
}

func TestTextureSlotMatchesSubstring(t *testing.T) {
	mat := &scene.Material{
		Name: "m",
		Textures: []scene.TextureSlot{
			{Name: "Material.Diffuse", Path: "/a.png"},
			{Name: "diffuse_alt", Path: "/b.png"},
			{Name: "NormalMap", Path: "/c.png"},
			{Name: "roughness_material", Path: "/d.png"},
		},
	}
	tex, err := resolveTextures(mat, "/base")
	require.NoError(t, err)
	// "Material.Diffuse" also contains "material" and comes first.
	assert.Equal(t, zmdl.Textures{Diffuse: "/a.png", Normal: "/c.png", Material: "/a.png"}, tex)
}

func TestResolveTexturePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"absolute", "/tex/a.png", "/tex/a.png"},
		{"blend relative", "//textures/a.png", "/project/textures/a.png"},
		{"plain relative", "textures/../a.png", "/project/a.png"},
		{"home", "~/tex/a.png", filepath.Join(home, "tex", "a.png")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveTexturePath(tt.path, "/project")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMissingUVLayer(t *testing.T) {
	t.Run("no active layer", func(t *testing.T) {
		s := quadScene()
		s.Objects[0].Mesh.UVLayers[0].Active = false

		_, err := buildMesh(s, s.Objects[0].Mesh, nil, Options{})
		require.ErrorIs(t, err, ErrMissingUVLayer)
		assert.Contains(t, err.Error(), `"Quad"`)
	})

	t.Run("corner without coordinates", func(t *testing.T) {
		s := quadScene()
		s.Objects[0].Mesh.Faces[1].Corners[2].UV = nil

		_, err := buildMesh(s, s.Objects[0].Mesh, nil, Options{})
		require.ErrorIs(t, err, ErrMissingUVLayer)
	})

	t.Run("checked before materials", func(t *testing.T) {
		s := quadScene()
		s.Materials = nil
		s.Objects[0].Mesh.UVLayers = nil

		_, err := buildMesh(s, s.Objects[0].Mesh, nil, Options{})
		require.ErrorIs(t, err, ErrMissingUVLayer)
		assert.NotErrorIs(t, err, ErrUnknownMaterial)
	})
}

func TestExplicitUVLayer(t *testing.T) {
	s := quadScene()
	mesh := s.Objects[0].Mesh
	mesh.UVLayers = append(mesh.UVLayers, scene.Layer{Name: "Lightmap"})
	for fi := range mesh.Faces {
		for ci := range mesh.Faces[fi].Corners {
			mesh.Faces[fi].Corners[ci].UV["Lightmap"] = [2]float32{0.5, 0.5}
		}
	}

	res, err := buildMesh(s, mesh, nil, Options{UVLayer: "Lightmap"})
	require.NoError(t, err)
	for _, v := range res.vertices {
		assert.Equal(t, [2]float32{0.5, 0.5}, v.TexCoord)
	}

	_, err = buildMesh(s, mesh, nil, Options{UVLayer: "Missing"})
	assert.ErrorIs(t, err, ErrMissingUVLayer)
}

func TestUnknownMaterial(t *testing.T) {
	t.Run("slot out of range", func(t *testing.T) {
		s := quadScene()
		s.Objects[0].Mesh.Faces[1].Material = 3

		_, err := buildMesh(s, s.Objects[0].Mesh, nil, Options{})
		assert.ErrorIs(t, err, ErrUnknownMaterial)
	})

	t.Run("name not in scene", func(t *testing.T) {
		s := quadScene()
		s.Objects[0].Mesh.Materials = []string{"glass"}

		_, err := buildMesh(s, s.Objects[0].Mesh, nil, Options{})
		require.ErrorIs(t, err, ErrUnknownMaterial)
		assert.Contains(t, err.Error(), `"glass"`)
	})
}

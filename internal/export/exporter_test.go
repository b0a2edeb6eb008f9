package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/zmdl/pkg/scene"
	"github.com/Faultbox/zmdl/pkg/zmdl"
)

func TestExportSkipsUnusedAndNonMesh(t *testing.T) {
	s := quadScene()
	unused := quadMesh()
	s.Objects = append(s.Objects,
		scene.Object{Name: "Orphan", Type: scene.ObjectMesh, Users: 0, Mesh: unused},
		scene.Object{Name: "Rig", Type: scene.ObjectArmature, Users: 1},
		scene.Object{Name: "Target", Type: scene.ObjectEmpty, Users: 2},
	)

	doc, err := New(Options{}).Export(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"Quad"}, doc.Keys())
}

func TestExportPlainModel(t *testing.T) {
	doc, err := New(Options{}).Export(quadScene())
	require.NoError(t, err)

	quad, ok := doc.Get("Quad")
	require.True(t, ok)
	assert.Len(t, quad.Vertices, 4)
	assert.Equal(t, 2, quad.TriangleCount())
	assert.False(t, quad.Skinned())
	assert.Nil(t, quad.Skeleton)
	assert.Nil(t, quad.Animations)
}

func TestExportSkinnedModel(t *testing.T) {
	doc, err := New(Options{}).Export(skinnedScene())
	require.NoError(t, err)

	quad, _ := doc.Get("Quad")
	require.True(t, quad.Skinned())
	assert.Equal(t, 5, quad.Skeleton.Len())
	assert.Len(t, quad.BoneHierarchy, 5)
	require.NotNil(t, quad.Animations)
	assert.Equal(t, []string{"Wave"}, quad.Animations.Keys())
	for _, v := range quad.Vertices {
		assert.NotEmpty(t, v.SkinIndices)
		assert.Len(t, v.SkinWeights, len(v.SkinIndices))
	}
}

func TestModelsDoNotShareSkeletons(t *testing.T) {
	s := skinnedScene()
	second := s.Objects[0]
	second.Name = "Quad2"
	second.Mesh = quadMesh()
	second.Mesh.DeformLayers = s.Objects[0].Mesh.DeformLayers
	s.Objects = append(s.Objects, second)

	doc, err := New(Options{}).Export(s)
	require.NoError(t, err)

	a, _ := doc.Get("Quad")
	b, _ := doc.Get("Quad2")
	assert.NotSame(t, a.Skeleton, b.Skeleton)
	assert.Equal(t, a.Skeleton.Keys(), b.Skeleton.Keys())
}

func TestExportIsDeterministic(t *testing.T) {
	var outputs [][]byte
	for i := 0; i < 3; i++ {
		doc, err := New(Options{YUp: true, FlipV: true}).Export(skinnedScene())
		require.NoError(t, err)
		data, err := zmdl.Marshal(doc)
		require.NoError(t, err)
		outputs = append(outputs, data)
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[0], outputs[2])
}

func TestExportFailsFast(t *testing.T) {
	s := quadScene()
	broken := quadMesh()
	broken.Name = "Broken"
	broken.Materials = []string{"bare"}
	s.Materials = append(s.Materials, scene.Material{
		Name:     "bare",
		Textures: []scene.TextureSlot{{Name: "diffuse", Path: "//d.png"}, {Name: "material", Path: "//m.png"}},
	})
	s.Objects = append(s.Objects, scene.Object{Name: "Broken", Type: scene.ObjectMesh, Users: 1, Mesh: broken})

	out := filepath.Join(t.TempDir(), "out.zmdl")
	doc, err := New(Options{}).Export(s)
	if err == nil {
		require.NoError(t, zmdl.WriteFile(out, doc))
	}

	require.ErrorIs(t, err, ErrMissingTextureSlot)
	assert.Nil(t, doc)
	assert.Contains(t, err.Error(), `object "Broken"`)
	assert.Contains(t, err.Error(), `material "bare"`)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no file may be written after a failed export")
}

func TestDuplicateObject(t *testing.T) {
	s := quadScene()
	s.Objects = append(s.Objects, s.Objects[0])

	_, err := New(Options{}).Export(s)
	assert.ErrorIs(t, err, ErrDuplicateObject)
}

func TestExportValidatesScene(t *testing.T) {
	s := quadScene()
	s.Objects[0].Mesh.Faces[0].Corners[0].Vertex = 9

	doc, err := New(Options{}).Export(s)
	require.ErrorIs(t, err, scene.ErrInvalidScene)
	assert.Nil(t, doc)
	assert.Contains(t, err.Error(), "references vertex 9 of 4")
}

func TestUnknownArmature(t *testing.T) {
	s := skinnedScene()
	s.Objects[0].Armature = "Ghost"

	_, err := New(Options{}).Export(s)
	require.ErrorIs(t, err, ErrUnknownArmature)
	assert.Contains(t, err.Error(), `"Ghost"`)
}

func TestExportLogsPerObject(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	_, err := New(Options{Logger: zap.New(core)}).Export(skinnedScene())
	require.NoError(t, err)

	entries := logs.FilterMessage("exported object").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Quad", fields["object"])
	assert.Equal(t, int64(4), fields["vertices"])
	assert.Equal(t, true, fields["skinned"])

	// The phantom wrist bone is reported once.
	assert.Equal(t, 1, logs.FilterMessage("bone referenced as parent but never defined, using identity").Len())
}

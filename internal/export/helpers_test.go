package export

import (
	"github.com/Faultbox/zmdl/pkg/scene"
)

const uvMap = "UVMap"

func uv(u, v float32) map[string][2]float32 {
	return map[string][2]float32{uvMap: {u, v}}
}

func stoneMaterial(name string) scene.Material {
	return scene.Material{
		Name: name,
		Textures: []scene.TextureSlot{
			{Name: "diffuse_map", Path: "/textures/" + name + "_d.png"},
			{Name: "normal_map", Path: "/textures/" + name + "_n.png"},
			{Name: "material_map", Path: "/textures/" + name + "_m.png"},
		},
	}
}

// quadMesh is a unit quad split into two triangles sharing the edge 0-2.
func quadMesh() *scene.Mesh {
	return &scene.Mesh{
		Name: "Quad",
		Vertices: []scene.MeshVertex{
			{Position: [3]float32{0, 0, 0}, Normal: [3]float32{0, 0, 1}},
			{Position: [3]float32{1, 0, 0}, Normal: [3]float32{0, 0, 1}},
			{Position: [3]float32{1, 1, 0}, Normal: [3]float32{0, 0, 1}},
			{Position: [3]float32{0, 1, 0}, Normal: [3]float32{0, 0, 1}},
		},
		Faces: []scene.Face{
			{Normal: [3]float32{0, 0, 1}, Corners: []scene.Corner{
				{Vertex: 0, UV: uv(0, 0)}, {Vertex: 1, UV: uv(1, 0)}, {Vertex: 2, UV: uv(1, 1)},
			}},
			{Normal: [3]float32{0, 0, 1}, Corners: []scene.Corner{
				{Vertex: 0, UV: uv(0, 0)}, {Vertex: 2, UV: uv(1, 1)}, {Vertex: 3, UV: uv(0, 1)},
			}},
		},
		Materials: []string{"stone"},
		UVLayers:  []scene.Layer{{Name: uvMap, Active: true}},
	}
}

func quadScene() *scene.Scene {
	return &scene.Scene{
		Version:   scene.CurrentVersion,
		BaseDir:   "/project",
		Objects:   []scene.Object{{Name: "Quad", Type: scene.ObjectMesh, Users: 1, Mesh: quadMesh()}},
		Materials: []scene.Material{stoneMaterial("stone")},
	}
}

func trs(t [3]float32, r [4]float32, s [3]float32) scene.Transform {
	return scene.Transform{Translation: t, Rotation: r, Scale: &s}
}

// armArmature has a root, an upper and a lower arm, plus a hand whose parent
// "wrist" is never defined.
func armArmature() scene.Armature {
	id := [4]float32{1, 0, 0, 0}
	rot90z := [4]float32{0.70710677, 0, 0, 0.70710677}
	return scene.Armature{
		Name: "Rig",
		Bones: []scene.BoneDef{
			{Name: "root", Bind: trs([3]float32{0, 0, 0}, id, [3]float32{1, 1, 1})},
			{Name: "upper", Parent: "root", Bind: trs([3]float32{0, 1, 0}, rot90z, [3]float32{1, 1, 1})},
			{Name: "lower", Parent: "upper", Bind: trs([3]float32{-1, 1, 0}, rot90z, [3]float32{2, 2, 2})},
			{Name: "hand", Parent: "wrist", Bind: trs([3]float32{3, 0, 1}, id, [3]float32{1, 1, 1})},
		},
	}
}

// skinnedScene binds the quad to the arm rig with a deform layer.
func skinnedScene() *scene.Scene {
	s := quadScene()
	mesh := s.Objects[0].Mesh
	mesh.DeformLayers = []scene.DeformLayer{{
		Name:   "Groups",
		Active: true,
		Weights: [][]scene.Influence{
			{{Bone: "upper", Weight: 0.75}, {Bone: "lower", Weight: 0.25}},
			{{Bone: "lower", Weight: 1}},
			{},
			{{Bone: "root", Weight: 1}},
		},
	}}
	s.Objects[0].Armature = "Rig"
	s.Armatures = []scene.Armature{armArmature()}
	s.Actions = []scene.Action{{
		Name:       "Wave",
		FrameStart: 1,
		FrameEnd:   25,
		Curves: []scene.Curve{
			{DataPath: `pose.bones["upper"].rotation_quaternion`, Index: 0, Keyframes: []scene.KeyPoint{{Frame: 1, Value: 1}}},
			{DataPath: `pose.bones["upper"].rotation_quaternion`, Index: 1, Keyframes: []scene.KeyPoint{{Frame: 1, Value: 0}}},
			{DataPath: `pose.bones["upper"].rotation_quaternion`, Index: 2, Keyframes: []scene.KeyPoint{{Frame: 1, Value: 0}}},
			{DataPath: `pose.bones["upper"].rotation_quaternion`, Index: 3, Keyframes: []scene.KeyPoint{{Frame: 1, Value: 0}}},
		},
	}}
	return s
}

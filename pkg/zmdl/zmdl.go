// Package zmdl defines the zmdl interchange document: per-object indexed
// meshes grouped into material submeshes, with optional skeleton, bone
// hierarchy and keyframe animations.
package zmdl

import "encoding/json"

// Vertex is one deduplicated vertex. Skin fields are present only for meshes
// bound to an armature with deformation data.
type Vertex struct {
	Position    [3]float32 `json:"position"`
	Normal      [3]float32 `json:"normal"`
	TexCoord    [2]float32 `json:"texcoord"`
	SkinIndices []uint32   `json:"skin_indices,omitempty"`
	SkinWeights []float32  `json:"skin_weights,omitempty"`
}

// Triangle holds three indices into the model's vertex list.
type Triangle [3]uint32

// Textures are the three image bindings every submesh material must supply.
type Textures struct {
	Diffuse  string `json:"diffuse"`
	Normal   string `json:"normal"`
	Material string `json:"material"`
}

// Submesh is the material-homogeneous part of a mesh.
type Submesh struct {
	Indices  []Triangle `json:"indices"`
	Textures Textures   `json:"textures"`
}

// Bone is a skeleton entry with its transform relative to the parent bone.
type Bone struct {
	ID          uint32     `json:"id"`
	Parent      *uint32    `json:"parent,omitempty"`
	Translation [3]float32 `json:"translation"`
	Rotation    [4]float32 `json:"rotation"` // w, x, y, z
	Scale       [3]float32 `json:"scale"`
}

// Keyframe is one keyed sample; Data holds one value per animated component.
type Keyframe struct {
	Frame float32   `json:"frame"`
	Data  []float32 `json:"data"`
}

// Track holds the keyframes of one bone.
type Track struct {
	ID          uint32     `json:"id"`
	Translation []Keyframe `json:"translation,omitempty"`
	Rotation    []Keyframe `json:"rotation,omitempty"`
	Scale       []Keyframe `json:"scale,omitempty"`
}

// Animation is one action, keyed by bone name.
type Animation struct {
	Length float32             `json:"length"`
	Tracks *OrderedMap[*Track] `json:"tracks"`
}

// Model is one exported object.
type Model struct {
	Vertices      []Vertex                `json:"vertices"`
	Submeshes     *OrderedMap[*Submesh]   `json:"submeshes"`
	Skeleton      *OrderedMap[*Bone]      `json:"skeleton,omitempty"`
	BoneHierarchy Hierarchy               `json:"bone_hierarchy,omitempty"`
	Animations    *OrderedMap[*Animation] `json:"animations,omitempty"`
}

// MarshalJSON emits bone_hierarchy together with skeleton, even when the
// skeleton has no bones.
func (m Model) MarshalJSON() ([]byte, error) {
	var hierarchy *Hierarchy
	if m.Skeleton != nil {
		h := m.BoneHierarchy
		if h == nil {
			h = Hierarchy{}
		}
		hierarchy = &h
	}
	return json.Marshal(struct {
		Vertices      []Vertex                `json:"vertices"`
		Submeshes     *OrderedMap[*Submesh]   `json:"submeshes"`
		Skeleton      *OrderedMap[*Bone]      `json:"skeleton,omitempty"`
		BoneHierarchy *Hierarchy              `json:"bone_hierarchy,omitempty"`
		Animations    *OrderedMap[*Animation] `json:"animations,omitempty"`
	}{m.Vertices, m.Submeshes, m.Skeleton, hierarchy, m.Animations})
}

// NewModel returns a model with empty vertex and submesh collections.
func NewModel() *Model {
	return &Model{
		Vertices:  []Vertex{},
		Submeshes: NewOrderedMap[*Submesh](),
	}
}

// Skinned reports whether the model carries skeleton data.
func (m *Model) Skinned() bool {
	return m.Skeleton != nil
}

// TriangleCount sums triangles over all submeshes.
func (m *Model) TriangleCount() int {
	n := 0
	for _, name := range m.Submeshes.Keys() {
		sm, _ := m.Submeshes.Get(name)
		n += len(sm.Indices)
	}
	return n
}

// Document maps object names to models in export order.
type Document = OrderedMap[*Model]

// NewDocument returns an empty document.
func NewDocument() *Document {
	return NewOrderedMap[*Model]()
}

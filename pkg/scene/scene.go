// Package scene defines the input contract a host adapter fills in before an
// export: objects, meshes, materials, armatures and actions, detached from any
// live host memory.
package scene

import (
	"fmt"

	"github.com/Faultbox/zmdl/pkg/math"
)

// CurrentVersion is the scene contract version this package reads.
const CurrentVersion = 1

// ObjectType tags what kind of data an object carries.
type ObjectType string

const (
	ObjectMesh     ObjectType = "mesh"
	ObjectArmature ObjectType = "armature"
	ObjectEmpty    ObjectType = "empty"
)

// Scene is one export's worth of host data.
type Scene struct {
	Version int `yaml:"version" json:"version"`
	// BaseDir anchors relative and "//"-prefixed texture paths.
	// Load fills it with the scene file's directory when empty.
	BaseDir   string     `yaml:"base_dir" json:"base_dir"`
	Objects   []Object   `yaml:"objects" json:"objects"`
	Materials []Material `yaml:"materials" json:"materials"`
	Armatures []Armature `yaml:"armatures" json:"armatures"`
	Actions   []Action   `yaml:"actions" json:"actions"`
}

// Object is an exportable scene object.
type Object struct {
	Name string     `yaml:"name" json:"name"`
	Type ObjectType `yaml:"type" json:"type"`
	// Users is the host reference count; zero means orphaned data.
	Users int   `yaml:"users" json:"users"`
	Mesh  *Mesh `yaml:"mesh,omitempty" json:"mesh,omitempty"`
	// Armature names the armature this object is skinned to, if any.
	Armature string `yaml:"armature,omitempty" json:"armature,omitempty"`
}

// Mesh is polygon geometry with per-corner attributes.
type Mesh struct {
	Name     string       `yaml:"name" json:"name"`
	Vertices []MeshVertex `yaml:"vertices" json:"vertices"`
	Faces    []Face       `yaml:"faces" json:"faces"`
	// Materials lists material names; Face.Material indexes into it.
	Materials    []string      `yaml:"materials" json:"materials"`
	UVLayers     []Layer       `yaml:"uv_layers" json:"uv_layers"`
	DeformLayers []DeformLayer `yaml:"deform_layers,omitempty" json:"deform_layers,omitempty"`
}

// MeshVertex is a shared vertex referenced by face corners.
type MeshVertex struct {
	Position [3]float32 `yaml:"position" json:"position"`
	Normal   [3]float32 `yaml:"normal" json:"normal"`
}

// Face is a polygon with three or more corners in winding order.
type Face struct {
	Material int        `yaml:"material" json:"material"`
	Smooth   bool       `yaml:"smooth" json:"smooth"`
	Normal   [3]float32 `yaml:"normal" json:"normal"`
	Corners  []Corner   `yaml:"corners" json:"corners"`
}

// Corner is one face corner. UV holds a coordinate per UV layer name.
type Corner struct {
	Vertex int                   `yaml:"vertex" json:"vertex"`
	UV     map[string][2]float32 `yaml:"uv" json:"uv"`
}

// Layer names a per-corner attribute layer.
type Layer struct {
	Name   string `yaml:"name" json:"name"`
	Active bool   `yaml:"active" json:"active"`
}

// DeformLayer carries skin influences, indexed by mesh vertex.
type DeformLayer struct {
	Name    string        `yaml:"name" json:"name"`
	Active  bool          `yaml:"active" json:"active"`
	Weights [][]Influence `yaml:"weights" json:"weights"`
}

// Influence binds a vertex to a bone with a weight.
type Influence struct {
	Bone   string  `yaml:"bone" json:"bone"`
	Weight float32 `yaml:"weight" json:"weight"`
}

// Material is a named set of texture slots.
type Material struct {
	Name     string        `yaml:"name" json:"name"`
	Textures []TextureSlot `yaml:"textures" json:"textures"`
}

// TextureSlot binds an image path to a slot key such as "diffuse_map".
type TextureSlot struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path" json:"path"`
}

// Armature is a named bone list.
type Armature struct {
	Name  string    `yaml:"name" json:"name"`
	Bones []BoneDef `yaml:"bones" json:"bones"`
}

// BoneDef is one bone with its armature-space bind transform.
type BoneDef struct {
	Name   string    `yaml:"name" json:"name"`
	Parent string    `yaml:"parent,omitempty" json:"parent,omitempty"`
	Bind   Transform `yaml:"bind" json:"bind"`
}

// Transform is either a full column-major matrix or a TRS triple.
// Matrix wins when set.
type Transform struct {
	Matrix      *[16]float32 `yaml:"matrix,omitempty" json:"matrix,omitempty"`
	Translation [3]float32   `yaml:"translation" json:"translation"`
	Rotation    [4]float32   `yaml:"rotation" json:"rotation"` // w, x, y, z
	Scale       *[3]float32  `yaml:"scale,omitempty" json:"scale,omitempty"`
}

// Mat4 returns the transform as a matrix. A zero rotation is read as
// identity and a missing scale as (1, 1, 1).
func (t Transform) Mat4() math.Mat4 {
	if t.Matrix != nil {
		return math.Mat4(*t.Matrix)
	}
	rot := math.QuatIdentity()
	if t.Rotation != [4]float32{} {
		rot = math.QuatWXYZ(t.Rotation)
	}
	scale := math.Vec3{X: 1, Y: 1, Z: 1}
	if t.Scale != nil {
		scale = math.V3(*t.Scale)
	}
	return math.Compose(math.V3(t.Translation), rot, scale)
}

// Action is a named animation clip.
type Action struct {
	Name       string  `yaml:"name" json:"name"`
	FrameStart float32 `yaml:"frame_start" json:"frame_start"`
	FrameEnd   float32 `yaml:"frame_end" json:"frame_end"`
	Curves     []Curve `yaml:"curves" json:"curves"`
}

// Curve animates one scalar channel, addressed by data path and array index,
// e.g. `pose.bones["arm"].location` index 1.
type Curve struct {
	DataPath  string     `yaml:"data_path" json:"data_path"`
	Index     int        `yaml:"index" json:"index"`
	Keyframes []KeyPoint `yaml:"keyframes" json:"keyframes"`
}

// KeyPoint is a keyed value at an absolute frame.
type KeyPoint struct {
	Frame float32 `yaml:"frame" json:"frame"`
	Value float32 `yaml:"value" json:"value"`
}

// Armature returns the armature with the given name.
func (s *Scene) Armature(name string) (*Armature, bool) {
	for i := range s.Armatures {
		if s.Armatures[i].Name == name {
			return &s.Armatures[i], true
		}
	}
	return nil, false
}

// Material returns the material with the given name.
func (s *Scene) Material(name string) (*Material, bool) {
	for i := range s.Materials {
		if s.Materials[i].Name == name {
			return &s.Materials[i], true
		}
	}
	return nil, false
}

// ActiveUVLayer returns the name of the layer flagged active.
func (m *Mesh) ActiveUVLayer() (string, bool) {
	for _, l := range m.UVLayers {
		if l.Active {
			return l.Name, true
		}
	}
	return "", false
}

// DeformLayer returns the named deform layer, or the active one when name is
// empty. A mesh with a single layer treats it as active.
func (m *Mesh) DeformLayer(name string) (*DeformLayer, bool) {
	for i := range m.DeformLayers {
		l := &m.DeformLayers[i]
		if (name != "" && l.Name == name) || (name == "" && l.Active) {
			return l, true
		}
	}
	if name == "" && len(m.DeformLayers) == 1 {
		return &m.DeformLayers[0], true
	}
	return nil, false
}

// String returns a short description for logs.
func (o Object) String() string {
	return fmt.Sprintf("%s(%s)", o.Name, o.Type)
}

package export

import (
	"go.uber.org/zap"

	"github.com/Faultbox/zmdl/pkg/math"
	"github.com/Faultbox/zmdl/pkg/scene"
	"github.com/Faultbox/zmdl/pkg/zmdl"
)

// Skeleton is a flattened armature. IDs is the bone-id authority shared with
// the mesh and animation stages, which only read it.
type Skeleton struct {
	IDs       map[string]uint32
	Names     []string // indexed by id
	Bones     *zmdl.OrderedMap[*zmdl.Bone]
	Hierarchy zmdl.Hierarchy
}

// FlattenSkeleton assigns dense ids in first-seen order (a parent referenced
// before its own definition is numbered at that point), computes each bone's
// bind transform relative to its parent and builds the child lists.
func FlattenSkeleton(arm *scene.Armature, log *zap.Logger) *Skeleton {
	if log == nil {
		log = zap.NewNop()
	}
	sk := &Skeleton{IDs: make(map[string]uint32)}
	assign := func(name string) uint32 {
		if id, ok := sk.IDs[name]; ok {
			return id
		}
		id := uint32(len(sk.Names))
		sk.IDs[name] = id
		sk.Names = append(sk.Names, name)
		return id
	}

	defs := make(map[string]*scene.BoneDef, len(arm.Bones))
	parents := make(map[string]string, len(arm.Bones))
	var order []*scene.BoneDef
	for i := range arm.Bones {
		b := &arm.Bones[i]
		if _, dup := defs[b.Name]; dup {
			log.Warn("duplicate bone definition ignored",
				zap.String("armature", arm.Name), zap.String("bone", b.Name))
			continue
		}
		parent := b.Parent
		if parent == b.Name {
			log.Warn("bone is its own parent, treating as root",
				zap.String("armature", arm.Name), zap.String("bone", b.Name))
			parent = ""
		}
		if parent != "" {
			assign(parent)
		}
		assign(b.Name)
		defs[b.Name] = b
		parents[b.Name] = parent
		order = append(order, b)
	}

	sk.Hierarchy = make(zmdl.Hierarchy, len(sk.Names))
	for id := range sk.Hierarchy {
		sk.Hierarchy[id] = []uint32{}
	}
	for _, b := range order {
		parent := parents[b.Name]
		if parent == "" {
			continue
		}
		pid := sk.IDs[parent]
		sk.Hierarchy[pid] = append(sk.Hierarchy[pid], sk.IDs[b.Name])
	}

	world := func(name string) math.Mat4 {
		if d, ok := defs[name]; ok {
			return d.Bind.Mat4()
		}
		return math.Identity()
	}

	sk.Bones = zmdl.NewOrderedMap[*zmdl.Bone]()
	for id, name := range sk.Names {
		bone := &zmdl.Bone{ID: uint32(id)}
		if _, ok := defs[name]; !ok {
			log.Warn("bone referenced as parent but never defined, using identity",
				zap.String("armature", arm.Name), zap.String("bone", name))
			bone.Rotation = math.QuatIdentity().WXYZ()
			bone.Scale = [3]float32{1, 1, 1}
			sk.Bones.Set(name, bone)
			continue
		}

		parentWorld := math.Identity()
		if parent := parents[name]; parent != "" {
			pid := sk.IDs[parent]
			bone.Parent = &pid
			parentWorld = world(parent)
		}
		relative := parentWorld.Inverse().Mul(world(name))
		t, r, s := relative.Decompose()
		bone.Translation = t.Array()
		bone.Rotation = r.WXYZ()
		bone.Scale = s.Array()
		sk.Bones.Set(name, bone)
	}

	log.Debug("skeleton flattened",
		zap.String("armature", arm.Name),
		zap.Int("bones", len(sk.Names)))
	return sk
}

package export

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/zmdl/pkg/scene"
	"github.com/Faultbox/zmdl/pkg/zmdl"
)

// Exporter runs the export pipeline over a scene.
type Exporter struct {
	opts Options
	log  *zap.Logger
}

// New returns an Exporter with the given options.
func New(opts Options) *Exporter {
	return &Exporter{opts: opts, log: opts.logger()}
}

// Export builds a document from every mesh object with at least one user.
// The scene is validated first. The first error aborts the run and no
// document is returned.
func (e *Exporter) Export(s *scene.Scene) (*zmdl.Document, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	doc := zmdl.NewDocument()
	for i := range s.Objects {
		obj := &s.Objects[i]
		if obj.Type != scene.ObjectMesh {
			e.log.Debug("skipping non-mesh object", zap.Stringer("object", obj))
			continue
		}
		if obj.Users <= 0 {
			e.log.Debug("skipping object without users", zap.String("object", obj.Name))
			continue
		}
		if doc.Has(obj.Name) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateObject, obj.Name)
		}

		model, err := e.ExportObject(s, obj)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", obj.Name, err)
		}
		doc.Set(obj.Name, model)

		e.log.Info("exported object",
			zap.String("object", obj.Name),
			zap.Int("vertices", len(model.Vertices)),
			zap.Int("triangles", model.TriangleCount()),
			zap.Bool("skinned", model.Skinned()))
	}
	return doc, nil
}

// ExportObject builds the model of a single mesh object. When the object is
// bound to an armature the skeleton is flattened first so the mesh can map
// skin weights to bone ids.
func (e *Exporter) ExportObject(s *scene.Scene, obj *scene.Object) (*zmdl.Model, error) {
	if obj.Mesh == nil {
		return nil, fmt.Errorf("object %q carries no mesh", obj.Name)
	}

	var sk *Skeleton
	if obj.Armature != "" {
		arm, ok := s.Armature(obj.Armature)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownArmature, obj.Armature)
		}
		sk = FlattenSkeleton(arm, e.log)
	}

	var bones map[string]uint32
	if sk != nil {
		bones = sk.IDs
	}
	mesh, err := buildMesh(s, obj.Mesh, bones, e.opts)
	if err != nil {
		return nil, err
	}

	model := zmdl.NewModel()
	model.Vertices = mesh.vertices
	model.Submeshes = mesh.submeshes
	if sk == nil {
		return model, nil
	}

	anims, err := BuildAnimations(s.Actions, sk, e.opts.Keyframes, e.log)
	if err != nil {
		return nil, err
	}
	model.Skeleton = sk.Bones
	model.BoneHierarchy = sk.Hierarchy
	model.Animations = anims
	return model, nil
}

package export

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/zmdl/pkg/math"
	"github.com/Faultbox/zmdl/pkg/scene"
	"github.com/Faultbox/zmdl/pkg/zmdl"
)

// triangle is one triangle of the per-mesh working copy.
type triangle struct {
	face    *scene.Face
	corners [3]*scene.Corner
}

// triangulate fans every face into triangles, keeping winding order.
func triangulate(mesh *scene.Mesh) []triangle {
	var tris []triangle
	for fi := range mesh.Faces {
		face := &mesh.Faces[fi]
		for i := 1; i+1 < len(face.Corners); i++ {
			tris = append(tris, triangle{
				face:    face,
				corners: [3]*scene.Corner{&face.Corners[0], &face.Corners[i], &face.Corners[i+1]},
			})
		}
	}
	return tris
}

// meshResult is the geometry half of a model.
type meshResult struct {
	vertices  []zmdl.Vertex
	submeshes *zmdl.OrderedMap[*zmdl.Submesh]
}

// buildMesh deduplicates the corners of mesh into an indexed vertex list and
// routes its triangles into material submeshes. bones is nil for meshes not
// bound to an armature; it is only read.
func buildMesh(s *scene.Scene, mesh *scene.Mesh, bones map[string]uint32, opts Options) (*meshResult, error) {
	log := opts.logger()

	uvLayer, err := resolveUVLayer(mesh, opts.UVLayer)
	if err != nil {
		return nil, err
	}

	var skin *skinBinding
	if bones != nil {
		if layer, ok := mesh.DeformLayer(opts.DeformLayer); ok {
			skin = &skinBinding{layer: layer, ids: bones}
		} else {
			log.Debug("mesh has no deform layer, exporting without skin",
				zap.String("mesh", mesh.Name))
		}
	}

	index := newVertexIndex(opts.MergeEpsilon)
	submeshes := newSubmeshSet(s)

	tris := triangulate(mesh)
	for _, tri := range tris {
		if tri.face.Material < 0 || tri.face.Material >= len(mesh.Materials) {
			return nil, fmt.Errorf("%w: mesh %q face uses material slot %d of %d",
				ErrUnknownMaterial, mesh.Name, tri.face.Material, len(mesh.Materials))
		}
		sm, err := submeshes.forMaterial(mesh.Materials[tri.face.Material])
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", mesh.Name, err)
		}

		var t zmdl.Triangle
		for i, c := range tri.corners {
			v, err := cornerVertex(mesh, tri.face, c, uvLayer, skin, opts)
			if err != nil {
				return nil, fmt.Errorf("mesh %q: %w", mesh.Name, err)
			}
			t[i] = index.add(v)
		}
		sm.Indices = append(sm.Indices, t)
	}

	log.Debug("mesh built",
		zap.String("mesh", mesh.Name),
		zap.Int("corners", len(tris)*3),
		zap.Int("vertices", len(index.vertices)),
		zap.Int("submeshes", submeshes.submeshes.Len()),
		zap.Bool("skinned", skin != nil))

	return &meshResult{vertices: index.vertices, submeshes: submeshes.submeshes}, nil
}

// faceNormal returns the stored normal of face, or the geometric normal of
// its first three corners when none is stored.
func faceNormal(mesh *scene.Mesh, face *scene.Face) math.Vec3 {
	if face.Normal != [3]float32{} {
		return math.V3(face.Normal)
	}
	p0 := math.V3(mesh.Vertices[face.Corners[0].Vertex].Position)
	p1 := math.V3(mesh.Vertices[face.Corners[1].Vertex].Position)
	p2 := math.V3(mesh.Vertices[face.Corners[2].Vertex].Position)
	return p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
}

// cornerVertex gathers the attributes of one face corner.
func cornerVertex(mesh *scene.Mesh, face *scene.Face, c *scene.Corner, uvLayer string, skin *skinBinding, opts Options) (zmdl.Vertex, error) {
	mv := mesh.Vertices[c.Vertex]

	pos := math.V3(mv.Position)
	nrm := faceNormal(mesh, face)
	if face.Smooth {
		nrm = math.V3(mv.Normal)
	}
	uv := math.V2(c.UV[uvLayer])

	if opts.YUp {
		pos = pos.YUp()
		nrm = nrm.YUp()
	}
	if opts.FlipV {
		uv = uv.FlipV()
	}

	v := zmdl.Vertex{
		Position: pos.Array(),
		Normal:   nrm.Array(),
		TexCoord: uv.Array(),
	}
	if skin != nil {
		indices, weights, err := skin.influences(c.Vertex)
		if err != nil {
			return zmdl.Vertex{}, err
		}
		v.SkinIndices = indices
		v.SkinWeights = weights
	}
	return v, nil
}

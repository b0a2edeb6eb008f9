package export

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/zmdl/pkg/math"
	"github.com/Faultbox/zmdl/pkg/scene"
	"github.com/Faultbox/zmdl/pkg/zmdl"
)

// vertexKey is the comparable form of a zmdl.Vertex.
type vertexKey struct {
	position [3]float32
	normal   [3]float32
	texCoord [2]float32
	skinLen  int
	indices  [MaxInfluences]uint32
	weights  [MaxInfluences]float32
}

func keyOf(v zmdl.Vertex) vertexKey {
	k := vertexKey{
		position: v.Position,
		normal:   v.Normal,
		texCoord: v.TexCoord,
		skinLen:  len(v.SkinIndices),
	}
	copy(k.indices[:], v.SkinIndices)
	copy(k.weights[:], v.SkinWeights)
	return k
}

// vertexIndex deduplicates vertices and hands out stable indices in
// first-seen order.
type vertexIndex struct {
	vertices []zmdl.Vertex
	exact    map[vertexKey]uint32
	epsilon  float32
}

// newVertexIndex returns an empty index. A non-positive epsilon compares
// vertices exactly.
func newVertexIndex(epsilon float32) *vertexIndex {
	if epsilon < 0 {
		epsilon = 0
	}
	return &vertexIndex{
		vertices: []zmdl.Vertex{},
		exact:    make(map[vertexKey]uint32),
		epsilon:  epsilon,
	}
}

// add returns the index of v, appending it if no equal vertex exists.
func (x *vertexIndex) add(v zmdl.Vertex) uint32 {
	if x.epsilon > 0 {
		for i := range x.vertices {
			if approxEqual(x.vertices[i], v, x.epsilon) {
				return uint32(i)
			}
		}
	} else if i, ok := x.exact[keyOf(v)]; ok {
		return i
	}

	i := uint32(len(x.vertices))
	x.vertices = append(x.vertices, v)
	if x.epsilon == 0 {
		x.exact[keyOf(v)] = i
	}
	return i
}

func approxEqual(a, b zmdl.Vertex, eps float32) bool {
	if !math.V3(a.Position).ApproxEqual(math.V3(b.Position), eps) ||
		!math.V3(a.Normal).ApproxEqual(math.V3(b.Normal), eps) ||
		!math.V2(a.TexCoord).ApproxEqual(math.V2(b.TexCoord), eps) {
		return false
	}
	if len(a.SkinIndices) != len(b.SkinIndices) {
		return false
	}
	for i := range a.SkinIndices {
		if a.SkinIndices[i] != b.SkinIndices[i] || math32.Abs(a.SkinWeights[i]-b.SkinWeights[i]) > eps {
			return false
		}
	}
	return true
}

// skinBinding maps a mesh's deform layer onto skeleton bone ids.
type skinBinding struct {
	layer *scene.DeformLayer
	ids   map[string]uint32
}

// influences resolves the skin fields of mesh vertex vi. A vertex without
// entries is bound fully to bone 0.
func (s *skinBinding) influences(vi int) ([]uint32, []float32, error) {
	var entries []scene.Influence
	if vi < len(s.layer.Weights) {
		entries = s.layer.Weights[vi]
	}
	if len(entries) == 0 {
		return []uint32{0}, []float32{1.0}, nil
	}
	if len(entries) > MaxInfluences {
		return nil, nil, fmt.Errorf("%w: vertex %d has %d influences, at most %d allowed",
			ErrTooManyInfluences, vi, len(entries), MaxInfluences)
	}

	indices := make([]uint32, len(entries))
	weights := make([]float32, len(entries))
	for i, e := range entries {
		id, ok := s.ids[e.Bone]
		if !ok {
			return nil, nil, fmt.Errorf("%w: vertex %d is weighted to %q", ErrUnknownBone, vi, e.Bone)
		}
		indices[i] = id
		weights[i] = e.Weight
	}
	return indices, weights, nil
}

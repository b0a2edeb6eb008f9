// Package export turns a scene description into a zmdl document: vertex
// deduplication, material submeshes, skeleton flattening and keyframe track
// consolidation.
package export

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// MaxInfluences is the number of bone influences a vertex may carry.
const MaxInfluences = 4

// KeyframePolicy decides how component curves of one property are merged
// when their keyframes do not line up.
type KeyframePolicy int

const (
	// KeyframesStrict requires equal counts and frames across components.
	KeyframesStrict KeyframePolicy = iota
	// KeyframesResample samples every component on the union of frames.
	KeyframesResample
)

// String returns the policy name used in config files and flags.
func (p KeyframePolicy) String() string {
	switch p {
	case KeyframesStrict:
		return "strict"
	case KeyframesResample:
		return "resample"
	default:
		return fmt.Sprintf("KeyframePolicy(%d)", int(p))
	}
}

// ParseKeyframePolicy parses "strict" or "resample". Empty means strict.
func ParseKeyframePolicy(s string) (KeyframePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return KeyframesStrict, nil
	case "resample":
		return KeyframesResample, nil
	default:
		return 0, fmt.Errorf("unknown keyframe policy %q", s)
	}
}

// Options configures an Exporter. The zero value exports with exact vertex
// equality, strict keyframe alignment, active layers and no axis conversion.
type Options struct {
	// UVLayer selects the UV layer by name; empty picks the active one.
	UVLayer string
	// DeformLayer selects the skin weight layer by name; empty picks the
	// active one.
	DeformLayer string
	// MergeEpsilon merges vertices whose attributes differ by at most this
	// much. Zero means exact equality.
	MergeEpsilon float32
	Keyframes    KeyframePolicy
	// YUp converts positions and normals from Z-up to Y-up.
	YUp bool
	// FlipV negates the V texture coordinate.
	FlipV bool

	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

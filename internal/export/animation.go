package export

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/zmdl/pkg/scene"
	"github.com/Faultbox/zmdl/pkg/zmdl"
)

// Property is an animatable bone transform component.
type Property int

const (
	PropTranslation Property = iota
	PropRotation
	PropScale
)

func (p Property) String() string {
	switch p {
	case PropTranslation:
		return "translation"
	case PropRotation:
		return "rotation"
	case PropScale:
		return "scale"
	default:
		return fmt.Sprintf("Property(%d)", int(p))
	}
}

var propertyNames = map[string]Property{
	"location":            PropTranslation,
	"translation":         PropTranslation,
	"rotation_quaternion": PropRotation,
	"rotation":            PropRotation,
	"scale":               PropScale,
}

var channelPath = regexp.MustCompile(`^pose\.bones\[(?:"((?:[^"\\]|\\.)+)"|'((?:[^'\\]|\\.)+)')\]\.([a-z_]+)$`)

var unescapeBone = strings.NewReplacer(`\"`, `"`, `\'`, `'`, `\\`, `\`)

// ParseChannel splits a curve data path such as `pose.bones["arm"].location`
// into bone name and property. Quotes and backslashes inside the name are
// backslash-escaped.
func ParseChannel(path string) (bone string, prop Property, ok bool) {
	m := channelPath.FindStringSubmatch(path)
	if m == nil {
		return "", 0, false
	}
	bone = m[1]
	if bone == "" {
		bone = m[2]
	}
	bone = unescapeBone.Replace(bone)
	prop, ok = propertyNames[m[3]]
	return bone, prop, ok
}

// boneCurves collects the curves of one bone per property, in encounter
// order.
type boneCurves struct {
	name  string
	props [3][]*scene.Curve
}

// BuildAnimations consolidates the curves of every action into per-bone
// keyframe tracks for the bones of sk. Curves aimed at other bones or at
// unsupported properties are skipped.
func BuildAnimations(actions []scene.Action, sk *Skeleton, policy KeyframePolicy, log *zap.Logger) (*zmdl.OrderedMap[*zmdl.Animation], error) {
	if log == nil {
		log = zap.NewNop()
	}
	out := zmdl.NewOrderedMap[*zmdl.Animation]()
	for ai := range actions {
		action := &actions[ai]
		anim, err := buildAnimation(action, sk, policy, log)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", action.Name, err)
		}
		out.Set(action.Name, anim)
	}
	return out, nil
}

func buildAnimation(action *scene.Action, sk *Skeleton, policy KeyframePolicy, log *zap.Logger) (*zmdl.Animation, error) {
	var bones []*boneCurves
	byName := make(map[string]*boneCurves)
	for ci := range action.Curves {
		c := &action.Curves[ci]
		bone, prop, ok := ParseChannel(c.DataPath)
		if !ok {
			log.Debug("skipping unsupported channel",
				zap.String("action", action.Name), zap.String("path", c.DataPath))
			continue
		}
		if _, known := sk.IDs[bone]; !known {
			log.Debug("skipping channel of foreign bone",
				zap.String("action", action.Name), zap.String("bone", bone))
			continue
		}
		bc, ok := byName[bone]
		if !ok {
			bc = &boneCurves{name: bone}
			byName[bone] = bc
			bones = append(bones, bc)
		}
		bc.props[prop] = append(bc.props[prop], c)
	}

	anim := &zmdl.Animation{
		Length: action.FrameEnd - action.FrameStart,
		Tracks: zmdl.NewOrderedMap[*zmdl.Track](),
	}
	for _, bc := range bones {
		track := &zmdl.Track{ID: sk.IDs[bc.name]}
		for p, curves := range bc.props {
			if len(curves) == 0 {
				continue
			}
			var keys []zmdl.Keyframe
			var err error
			if policy == KeyframesResample {
				keys, err = mergeResampled(curves, action.FrameStart)
			} else {
				keys, err = mergeStrict(curves, action.FrameStart)
			}
			if err != nil {
				return nil, fmt.Errorf("bone %q %s: %w", bc.name, Property(p), err)
			}
			switch Property(p) {
			case PropTranslation:
				track.Translation = keys
			case PropRotation:
				track.Rotation = keys
			case PropScale:
				track.Scale = keys
			}
		}
		anim.Tracks.Set(bc.name, track)
	}
	return anim, nil
}

// mergeStrict zips component curves positionally. The first curve defines
// the keyframe times; every other curve must match them exactly.
func mergeStrict(curves []*scene.Curve, start float32) ([]zmdl.Keyframe, error) {
	first := curves[0]
	keys := make([]zmdl.Keyframe, len(first.Keyframes))
	for i, k := range first.Keyframes {
		keys[i] = zmdl.Keyframe{
			Frame: k.Frame - start,
			Data:  make([]float32, 1, len(curves)),
		}
		keys[i].Data[0] = k.Value
	}
	for _, c := range curves[1:] {
		if len(c.Keyframes) != len(keys) {
			return nil, fmt.Errorf("%w: component %d has %d keyframes, component %d has %d",
				ErrMisalignedKeyframes, c.Index, len(c.Keyframes), first.Index, len(keys))
		}
		for i, k := range c.Keyframes {
			if k.Frame-start != keys[i].Frame {
				return nil, fmt.Errorf("%w: component %d keyframe %d at frame %g, expected %g",
					ErrMisalignedKeyframes, c.Index, i, k.Frame, keys[i].Frame+start)
			}
			keys[i].Data = append(keys[i].Data, k.Value)
		}
	}
	return keys, nil
}

// mergeResampled samples every component curve at the union of all keyed
// frames, interpolating linearly and holding the end values outside a
// curve's range.
func mergeResampled(curves []*scene.Curve, start float32) ([]zmdl.Keyframe, error) {
	var frames []float32
	sorted := make([][]scene.KeyPoint, len(curves))
	for i, c := range curves {
		if len(c.Keyframes) == 0 {
			return nil, fmt.Errorf("%w: component %d has no keyframes", ErrMisalignedKeyframes, c.Index)
		}
		pts := slices.Clone(c.Keyframes)
		slices.SortStableFunc(pts, func(a, b scene.KeyPoint) int {
			switch {
			case a.Frame < b.Frame:
				return -1
			case a.Frame > b.Frame:
				return 1
			}
			return 0
		})
		sorted[i] = pts
		for _, k := range pts {
			frames = append(frames, k.Frame)
		}
	}
	slices.Sort(frames)
	frames = slices.Compact(frames)

	keys := make([]zmdl.Keyframe, len(frames))
	for i, f := range frames {
		data := make([]float32, len(sorted))
		for ci, pts := range sorted {
			data[ci] = sample(pts, f)
		}
		keys[i] = zmdl.Keyframe{Frame: f - start, Data: data}
	}
	return keys, nil
}

// sample evaluates sorted keyframes at frame f.
func sample(pts []scene.KeyPoint, f float32) float32 {
	if f <= pts[0].Frame {
		return pts[0].Value
	}
	last := pts[len(pts)-1]
	if f >= last.Frame {
		return last.Value
	}
	for i := 1; i < len(pts); i++ {
		k0, k1 := pts[i-1], pts[i]
		if f > k1.Frame {
			continue
		}
		if k1.Frame == k0.Frame {
			return k1.Value
		}
		t := (f - k0.Frame) / (k1.Frame - k0.Frame)
		return k0.Value + t*(k1.Value-k0.Value)
	}
	return last.Value
}

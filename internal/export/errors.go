package export

import "errors"

// Export errors. All of them abort the whole export run; callers match them
// with errors.Is and read the wrapped message for the object, mesh or
// material name.
var (
	ErrMissingUVLayer      = errors.New("missing UV layer")
	ErrMissingTextureSlot  = errors.New("missing texture slot")
	ErrTooManyInfluences   = errors.New("too many skin influences")
	ErrMisalignedKeyframes = errors.New("misaligned keyframes")
	ErrUnknownMaterial     = errors.New("unknown material")
	ErrUnknownBone         = errors.New("unknown bone")
	ErrUnknownArmature     = errors.New("unknown armature")
	ErrDuplicateObject     = errors.New("duplicate object name")
)

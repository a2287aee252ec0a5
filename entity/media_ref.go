package entity

import "fmt"

// MediaType is the kind of media a reference points to
type MediaType int8

const (
	MediaUnknown MediaType = iota
	MediaImage
	MediaVideo
)

func (t MediaType) String() string {
	switch t {
	case MediaImage:
		return "image"
	case MediaVideo:
		return "video"
	default:
		return "unknown"
	}
}

// MediaRef is an opaque reference to one selected media item.
// Locator is interpreted only by the media source that produced it.
type MediaRef struct {
	Locator       string
	Type          MediaType
	HighFrameRate bool // meaningful only for videos
}

func (r MediaRef) String() string {
	if r.HighFrameRate {
		return fmt.Sprintf("%s (%v, high frame rate)", r.Locator, r.Type)
	}
	return fmt.Sprintf("%s (%v)", r.Locator, r.Type)
}

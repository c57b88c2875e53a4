package pageimage

import (
	"fmt"
	"os"

	"snc/common"
	"snc/note"
)

// FileSource yields one frame per image file, in the order given. SVG
// templates are rasterized, everything else goes through the raster
// path.
type FileSource struct {
	Paths []string
	Spec  note.DeviceSpec
	Mode  common.ImageResizeMode
}

// Frames implements Source.
func (s *FileSource) Frames() ([]Frame, error) {
	if len(s.Paths) == 0 {
		return nil, fmt.Errorf("no input images")
	}
	frames := make([]Frame, 0, len(s.Paths))
	for _, path := range s.Paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		frame, err := FromBytes(data, s.Spec, s.Mode)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// FromBytes dispatches between the SVG and raster paths.
func FromBytes(data []byte, spec note.DeviceSpec, mode common.ImageResizeMode) (Frame, error) {
	if IsSVG(data) {
		return FromSVG(data, spec)
	}
	return FromImage(data, spec, mode)
}

// Package util - Helpers for loading recorded frame sequences, used by the
// offline detection mode and the benchmarks.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FrameFile is one still image belonging to a recorded sequence.
type FrameFile struct {
	// Path is the location the frame was read from.
	Path string
	// Data is the raw encoded bytes of the image file.
	Data []byte
	// Index is the frame's position in the sequence.
	Index int
}

// LoadFrameSequence reads every image file from a directory and returns the
// frames in sequence order.
//
// Files named like "frame-17.jpg" are ordered by the embedded number;
// anything else falls back to lexicographic order. Supported extensions:
// .jpg, .jpeg, .png, .bmp. Subdirectories and other files are skipped.
func LoadFrameSequence(dir string) ([]FrameFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read frame directory %s", dir)
	}

	var frames []FrameFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".bmp":
		default:
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read frame %s", path)
		}

		frames = append(frames, FrameFile{
			Path:  path,
			Data:  data,
			Index: frameIndex(entry.Name(), ext),
		})
	}

	sort.Slice(frames, func(i, j int) bool {
		if frames[i].Index != frames[j].Index {
			return frames[i].Index < frames[j].Index
		}
		return frames[i].Path < frames[j].Path
	})

	return frames, nil
}

// frameIndex extracts a numeric index from names like "frame-17.jpg".
// Returns -1 when the name carries no number, which sorts those frames
// first in lexicographic order.
func frameIndex(name, ext string) int {
	base := strings.TrimSuffix(name, ext)
	base = strings.TrimPrefix(base, "frame-")
	base = strings.TrimPrefix(base, "frame_")
	if n, err := strconv.Atoi(base); err == nil {
		return n
	}
	return -1
}

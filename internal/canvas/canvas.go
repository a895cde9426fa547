// Package canvas locates stimulus images and reads their pixel dimensions.
package canvas

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"gazemap/internal/model"
)

// ErrCanvasMissing is returned when no image exists for a stimulus.
var ErrCanvasMissing = errors.New("stimulus image missing")

var namePattern = regexp.MustCompile(`(?i)^question(\d+)\.(png|jpe?g|gif|bmp|tiff?|webp)$`)

// StimulusID extracts N from a file name such as "Question3.PNG".
func StimulusID(name string) (int, bool) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// DecodeSize reads only the image header at path.
func DecodeSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Load decodes the full image behind c.
func Load(c model.Canvas) (image.Image, error) {
	if c.Source == "" {
		return nil, fmt.Errorf("question %d: %w", c.StimulusID, ErrCanvasMissing)
	}
	f, err := os.Open(c.Source)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", c.Source, err)
	}
	return img, nil
}

// ScanResult contains the canvases found under a directory and non-fatal
// warnings.
type ScanResult struct {
	Canvases map[int]model.Canvas
	Warnings []error
}

// IDs returns the stimulus ids found, ascending.
func (r ScanResult) IDs() []int {
	ids := make([]int, 0, len(r.Canvases))
	for id := range r.Canvases {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Scan walks root for stimulus images. When two files name the same
// stimulus, the lexically first path wins and the other is reported.
func Scan(root string) (ScanResult, error) {
	if root == "" {
		return ScanResult{}, errors.New("stimuli directory is required")
	}
	if info, err := os.Stat(root); err != nil {
		return ScanResult{}, fmt.Errorf("stat stimuli directory: %w", err)
	} else if !info.IsDir() {
		return ScanResult{}, fmt.Errorf("stimuli path %s is not a directory", root)
	}

	result := ScanResult{Canvases: make(map[int]model.Canvas)}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("walk %s: %w", path, walkErr))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		id, ok := StimulusID(d.Name())
		if !ok {
			return nil
		}
		if prev, dup := result.Canvases[id]; dup {
			result.Warnings = append(result.Warnings, fmt.Errorf("question %d: ignoring %s, already using %s", id, path, prev.Source))
			return nil
		}

		w, h, err := DecodeSize(path)
		if err != nil {
			result.Warnings = append(result.Warnings, err)
			return nil
		}
		result.Canvases[id] = model.Canvas{StimulusID: id, Width: w, Height: h, Source: path}
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

// Resolver serves canvases from a fixed map.
type Resolver map[int]model.Canvas

// Resolve implements model.CanvasResolver.
func (r Resolver) Resolve(stimulusID int) (model.Canvas, error) {
	c, ok := r[stimulusID]
	if !ok {
		return model.Canvas{}, fmt.Errorf("question %d: %w", stimulusID, ErrCanvasMissing)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return model.Canvas{}, fmt.Errorf("question %d: invalid size %dx%d", stimulusID, c.Width, c.Height)
	}
	c.StimulusID = stimulusID
	return c, nil
}

// DirResolver looks up stimulus images lazily inside Dir.
type DirResolver struct {
	Dir        string
	Extensions []string
}

// DefaultExtensions lists the suffixes tried by DirResolver, in order.
var DefaultExtensions = []string{".png", ".PNG", ".jpg", ".jpeg", ".JPG", ".bmp", ".tiff", ".webp"}

// Resolve implements model.CanvasResolver.
func (r DirResolver) Resolve(stimulusID int) (model.Canvas, error) {
	exts := r.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	for _, ext := range exts {
		path := filepath.Join(r.Dir, fmt.Sprintf("Question%d%s", stimulusID, ext))
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		w, h, err := DecodeSize(path)
		if err != nil {
			return model.Canvas{}, err
		}
		return model.Canvas{StimulusID: stimulusID, Width: w, Height: h, Source: path}, nil
	}
	return model.Canvas{}, fmt.Errorf("question %d under %s: %w", stimulusID, r.Dir, ErrCanvasMissing)
}

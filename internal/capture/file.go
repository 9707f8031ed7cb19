package capture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	"gocv.io/x/gocv"

	// Capture cards and screenshot tools save in more than the stdlib
	// formats.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// FileSource replays saved screenshots as a frame stream, in filename order.
// Used by the classifier diagnostic command and by offline reprocessing of a
// recorded session.
type FileSource struct {
	paths []string
	next  int
}

// OpenFiles creates a source over a directory of image files, or over a
// single file.
func OpenFiles(path string) (*FileSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	if !info.IsDir() {
		return &FileSource{paths: []string{path}}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
			paths = append(paths, filepath.Join(path, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no image files in %s", path)
	}
	sort.Strings(paths)
	return &FileSource{paths: paths}, nil
}

// ReadFrame implements Source. The stream ends with ErrSourceClosed once
// every file has been served.
func (f *FileSource) ReadFrame() (gocv.Mat, error) {
	if f.next >= len(f.paths) {
		return gocv.Mat{}, ErrSourceClosed
	}
	path := f.paths[f.next]
	f.next++

	file, err := os.Open(path)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to open frame %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to decode frame %s: %w", path, err)
	}

	rgb, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to convert frame %s: %w", path, err)
	}
	defer rgb.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgb, &bgr, gocv.ColorBGRToRGB)
	return bgr, nil
}

// Close implements Source.
func (f *FileSource) Close() error {
	f.next = len(f.paths)
	return nil
}

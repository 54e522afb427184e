// Package screenshot saves framebuffer contents as PNG files.
package screenshot

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Capture writes numbered PNG screenshots into Dir.
type Capture struct {
	Dir    string
	Prefix string

	now func() time.Time
}

// New returns a capture writing to dir with file names starting with prefix.
func New(dir, prefix string) *Capture {
	return &Capture{Dir: dir, Prefix: prefix, now: time.Now}
}

// Filename returns the path the next screenshot would be written to.
func (c *Capture) Filename() string {
	name := fmt.Sprintf("%s_%s.png", c.Prefix, c.now().Format("2006-01-02_15-04-05.000"))
	if c.Dir == "" {
		return name
	}
	return filepath.Join(c.Dir, name)
}

// SavePixels writes bottom-up RGBA rows, as returned by glReadPixels, as a
// top-down PNG and returns its path.
func (c *Capture) SavePixels(pixels []byte, width, height int) (string, error) {
	img, err := FromGL(pixels, width, height)
	if err != nil {
		return "", err
	}
	return c.Save(img)
}

// Save writes img and returns its path.
func (c *Capture) Save(img image.Image) (string, error) {
	if c.Dir != "" {
		if err := os.MkdirAll(c.Dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	path := c.Filename()
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// FromGL converts bottom-up RGBA rows to an image.
func FromGL(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: %dx%d needs %d bytes, got %d",
			width, height, width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img, nil
}

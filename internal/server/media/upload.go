package media

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

var ErrInvalidImage = errors.New("invalid image")

// ValidateUpload checks that the file name carries an extension the
// processor can write and that the content decodes as an image. r is
// rewound afterwards.
func ValidateUpload(filename string, r io.ReadSeeker) error {
	if _, err := imaging.FormatFromFilename(filename); err != nil {
		return fmt.Errorf("%w: unsupported extension of %q", ErrInvalidImage, filename)
	}
	if _, _, err := image.DecodeConfig(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind upload: %w", err)
	}
	return nil
}

package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/filestore"
)

const (
	DefaultSize    = 150
	DefaultQuality = 2
)

// Processor shrinks a stored image to a fixed thumbnail in place.
type Processor struct {
	Storage filestore.Storage
	Size    image.Point
	Quality int
}

func NewProcessor(storage filestore.Storage, width, height, quality int) *Processor {
	if width <= 0 {
		width = DefaultSize
	}
	if height <= 0 {
		height = DefaultSize
	}
	if quality <= 0 {
		quality = DefaultQuality
	}
	return &Processor{Storage: storage, Size: image.Pt(width, height), Quality: quality}
}

// Process crops the top-left Size rectangle of the image stored at name,
// fits it into Size with the Lanczos filter and writes it back to the same
// path in the format implied by the extension.
func (p *Processor) Process(ctx context.Context, name string) error {
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrStorage, name, err)
	}

	rc, err := p.Storage.Open(ctx, name)
	if err != nil {
		return err
	}
	src, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	_ = rc.Close()
	if err != nil {
		return fmt.Errorf("%w: decode %s: %w", common.ErrStorage, name, err)
	}

	thumb := p.thumbnail(src)

	var buf bytes.Buffer
	err = imaging.Encode(&buf, thumb, format,
		imaging.JPEGQuality(p.Quality),
		imaging.PNGCompressionLevel(png.BestCompression))
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", common.ErrStorage, name, err)
	}

	return p.Storage.Save(ctx, name, &buf)
}

func (p *Processor) thumbnail(src image.Image) image.Image {
	cropped := imaging.Crop(src, image.Rect(0, 0, p.Size.X, p.Size.Y))
	return imaging.Fit(cropped, p.Size.X, p.Size.Y, imaging.Lanczos)
}

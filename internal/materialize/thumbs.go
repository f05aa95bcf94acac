package materialize

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"path/filepath"

	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"golang.org/x/image/draw"
)

// thumbnailSize is the square edge of generated thumbnails
const thumbnailSize = 100

// thumbnailPath returns the fixed location of a member's thumbnail:
// <collection root>/thumbnails/<archive file name>.png, a sibling of
// the file-type directories. Keying by archive name makes the
// thumbnail shared across every set referencing the content.
func thumbnailPath(c *Context, m catalog.FileSetFile) string {
	return filepath.Join(c.Content.Root(), "thumbnails", m.ArchiveFileName+".png")
}

// ensureThumbnail lazily renders a 100x100 PNG thumbnail for one
// image-typed member. A thumbnail from an earlier run is reused.
func ensureThumbnail(c *Context, m catalog.FileSetFile) error {
	thumbPath := thumbnailPath(c, m)

	exists, err := c.FS.Exists(thumbPath)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	src, err := c.Content.Open(m.FileType, m.ArchiveFileName)
	if err != nil {
		return err
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", m.FileName, err)
	}

	thumb := image.NewRGBA(image.Rect(0, 0, thumbnailSize, thumbnailSize))
	draw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), img, img.Bounds(), draw.Src, nil)

	out, err := c.FS.Create(thumbPath)
	if err != nil {
		return err
	}
	err = png.Encode(out, thumb)
	if err2 := out.Close(); err == nil {
		err = err2
	}
	if err != nil {
		c.FS.RemoveFile(thumbPath)
		return fmt.Errorf("failed to write thumbnail for %s: %w", m.FileName, err)
	}
	return nil
}

package export

import (
	"fmt"
	"io"
	"math"

	"github.com/gogpu/gg"

	"github.com/inkboard/inkboard/internal/document"
	"github.com/inkboard/inkboard/internal/geometry"
	"github.com/inkboard/inkboard/internal/render"
)

// PNG rasterizes the scene at PixelRatio over its padded bounds, on a
// white background.
func PNG(w io.Writer, sc document.Scene, raster *render.Raster) error {
	l := NewLayout(sc)
	width := int(math.Ceil(l.Width * PixelRatio))
	height := int(math.Ceil(l.Height * PixelRatio))

	dc := gg.NewContext(width, height)
	defer dc.Close()
	dc.ClearWithColor(gg.White)

	cmds := render.Frame(render.Input{
		Scene:    sc,
		Viewport: l.Viewport(),
		Width:    l.Width,
		Height:   l.Height,
	})
	if err := raster.Draw(dc, geometry.Scale(PixelRatio, PixelRatio), cmds); err != nil {
		return fmt.Errorf("rasterize scene: %w", err)
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

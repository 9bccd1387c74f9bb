package main

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// renderFrame paints one frame: background, the frame's reference image
// (skipped in clip mode), then every node in order. cache may be nil, in
// which case every node is a solid square.
func renderFrame(f Frame, p Project, width, height int, cache *imageCache) *image.RGBA {
	dc := gg.NewContext(width, height)
	dc.SetHexColor(p.BackgroundColor)
	dc.Clear()
	canvas := dc.Image().(*image.RGBA)

	if !p.ClipMode && f.ReferenceImage != "" {
		if ref, ok := cache.get(f.ReferenceImage); ok {
			opacity := f.ReferenceOpacity
			if opacity == 0 {
				opacity = defaultOpacity
			}
			drawWithOpacity(canvas, canvas.Bounds(), ref, opacity/100)
		}
	}

	var clipBackground image.Image
	if p.ClipMode && p.ClipBackgroundImage != "" {
		if bg, ok := cache.get(p.ClipBackgroundImage); ok {
			clipBackground = scaleImage(bg, width, height)
		}
	}

	base := p.NodeSize * p.NodeSizeMultiplier
	for _, n := range f.Nodes {
		size := base * n.Size
		x := n.X*float64(width) - size/2
		y := n.Y*float64(height) - size/2

		if clipBackground != nil {
			dc.DrawRectangle(x, y, size, size)
			dc.Clip()
			dc.DrawImage(clipBackground, 0, 0)
			dc.ResetClip()
			continue
		}
		if img, ok := nodeImage(n, p, cache); ok {
			drawFitted(dc, img, x, y, size)
			continue
		}
		dc.SetHexColor(p.NodeColor)
		dc.DrawRectangle(x, y, size, size)
		dc.Fill()
	}
	return canvas
}

// nodeImage resolves the library image for n. Stale indexes and images that
// failed to load report false.
func nodeImage(n Node, p Project, cache *imageCache) (image.Image, bool) {
	if !p.ShowImages || n.ImageIndex == nil {
		return nil, false
	}
	i := *n.ImageIndex
	if i < 0 || i >= len(p.ImageLibrary) || p.ImageLibrary[i] == "" {
		return nil, false
	}
	return cache.get(p.ImageLibrary[i])
}

// drawFitted draws img inside the size x size square at (x, y), keeping its
// aspect ratio and centering it on the short axis.
func drawFitted(dc *gg.Context, img image.Image, x, y, size float64) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	aspect := float64(b.Dx()) / float64(b.Dy())
	w, h := size, size
	if aspect > 1 {
		h = size / aspect
		y += (size - h) / 2
	} else {
		w = size * aspect
		x += (size - w) / 2
	}
	dc.Push()
	dc.Translate(x, y)
	dc.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	dc.DrawImage(img, 0, 0)
	dc.Pop()
}

func scaleImage(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

func drawWithOpacity(dst draw.Image, r image.Rectangle, src image.Image, alpha float64) {
	if alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	scaled := scaleImage(src, r.Dx(), r.Dy())
	mask := image.NewUniform(color.Alpha{A: uint8(alpha*255 + 0.5)})
	draw.DrawMask(dst, r, scaled, image.Point{}, mask, image.Point{}, draw.Over)
}

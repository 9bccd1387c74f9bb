package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var errNothingToExport = errors.New("nothing to export")

// frameDelayMS is the per-frame delay for the project's playback speed.
func frameDelayMS(p Project) float64 {
	if p.AnimationSpeed <= 0 {
		return 1000
	}
	return 1000 / p.AnimationSpeed
}

// exportOptions controls how frames are rendered for export.
type exportOptions struct {
	loader      ImageLoader
	log         *slog.Logger
	labelFrames bool
	onProgress  func(done, total int)
}

func (o exportOptions) logger() *slog.Logger {
	if o.log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.log
}

// renderAllFrames preloads images once and renders every frame at the
// project's canvas size.
func renderAllFrames(ctx context.Context, p Project, opts exportOptions) ([]*image.RGBA, error) {
	if len(p.Frames) == 0 {
		return nil, errNothingToExport
	}
	width, height := p.CanvasSize[0], p.CanvasSize[1]
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	cache := newImageCache()
	if opts.loader != nil {
		cache.preload(ctx, p, opts.loader, opts.logger())
	}

	var face font.Face
	if opts.labelFrames {
		ttf, err := truetype.Parse(gomono.TTF)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font: %v", err)
		}
		face = truetype.NewFace(ttf, &truetype.Options{
			Size:    12,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	out := make([]*image.RGBA, len(p.Frames))
	for i, f := range p.Frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = renderFrame(f, p, width, height, cache)
		if face != nil {
			labelFrame(out[i], face, fmt.Sprintf("%d/%d", i+1, len(p.Frames)))
		}
		if opts.onProgress != nil {
			opts.onProgress(i+1, len(p.Frames))
		}
	}
	return out, nil
}

func labelFrame(img *image.RGBA, face font.Face, text string) {
	dc := gg.NewContextForRGBA(img)
	dc.SetFontFace(face)
	dc.SetColor(color.Black)
	dc.DrawString(text, 4, float64(img.Bounds().Dy())-4)
}

// writeGIF encodes frames as a looping GIF. Quality follows the GIF
// encoder convention of 1..30, lower is better; 10 or lower dithers.
func writeGIF(w io.Writer, frames []*image.RGBA, p Project) error {
	if len(frames) == 0 {
		return errNothingToExport
	}
	delay := int(math.Round(frameDelayMS(p) / 10))
	if delay < 1 {
		delay = 1
	}
	anim := &gif.GIF{LoopCount: 0}
	for _, f := range frames {
		pal := image.NewPaletted(f.Bounds(), palette.Plan9)
		if p.ExportQualityGIF <= 10 {
			draw.FloydSteinberg.Draw(pal, f.Bounds(), f, image.Point{})
		} else {
			draw.Draw(pal, f.Bounds(), f, image.Point{}, draw.Src)
		}
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, delay)
	}
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}

func exportGIF(ctx context.Context, filename string, p Project, opts exportOptions) error {
	frames, err := renderAllFrames(ctx, p, opts)
	if err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeGIF(file, frames, p)
}

// exportPNGSequence writes one PNG per frame as base_001.png, base_002.png
// and so on, and returns the written paths.
func exportPNGSequence(ctx context.Context, filename string, p Project, opts exportOptions) ([]string, error) {
	frames, err := renderAllFrames(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	paths := make([]string, 0, len(frames))
	for i, f := range frames {
		path := fmt.Sprintf("%s_%03d.png", base, i+1)
		if err := gg.SavePNG(path, f); err != nil {
			return paths, fmt.Errorf("save %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func exportJSON(filename string, p Project) error {
	data, err := encodeProject(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// exportProject picks the format from the file extension: .gif, .png or
// .json.
func exportProject(ctx context.Context, filename string, p Project, opts exportOptions) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gif":
		return exportGIF(ctx, filename, p, opts)
	case ".png":
		_, err := exportPNGSequence(ctx, filename, p, opts)
		return err
	case ".json":
		return exportJSON(filename, p)
	}
	return fmt.Errorf("unsupported export format %q", filepath.Ext(filename))
}

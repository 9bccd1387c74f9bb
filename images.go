package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// ImageLoader decodes an image source: a data URL, an http(s) URL or a
// local file path.
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

type sourceLoader struct {
	client *http.Client
}

func (l sourceLoader) Load(ctx context.Context, src string) (image.Image, error) {
	var r io.Reader
	switch {
	case strings.HasPrefix(src, "data:"):
		data, err := decodeDataURL(src)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", src, err)
		}
		client := l.client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", src, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("load %s: status %d", src, resp.StatusCode)
		}
		r = resp.Body
	default:
		f, err := os.Open(strings.TrimPrefix(src, "file://"))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", src, err)
		}
		defer f.Close()
		r = f
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", shortSource(src), err)
	}
	return img, nil
}

func decodeDataURL(src string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URL")
	}
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data URL: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URL: %w", err)
	}
	return []byte(s), nil
}

func encodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func shortSource(src string) string {
	if len(src) > 48 {
		return src[:48] + "..."
	}
	return src
}

// imageCache holds decoded images by source. Missing entries render as
// solid color.
type imageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

func newImageCache() *imageCache {
	return &imageCache{images: make(map[string]image.Image)}
}

func (c *imageCache) get(src string) (image.Image, bool) {
	if c == nil || src == "" {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[src]
	return img, ok
}

func (c *imageCache) put(src string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[src] = img
}

// preload loads every source the project can draw. Failed loads are logged
// and skipped.
func (c *imageCache) preload(ctx context.Context, p Project, loader ImageLoader, log *slog.Logger) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, src := range projectImageSources(p) {
		if _, ok := c.get(src); ok {
			continue
		}
		g.Go(func() error {
			img, err := loader.Load(ctx, src)
			if err != nil {
				log.Warn("image load failed", "src", shortSource(src), "err", err)
				return nil
			}
			c.put(src, img)
			return nil
		})
	}
	_ = g.Wait()
}

// projectImageSources lists reference images, the clip background and every
// library image a node points at, without duplicates.
func projectImageSources(p Project) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(src string) {
		if src != "" && !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	if p.ClipMode {
		add(p.ClipBackgroundImage)
	}
	for _, f := range p.Frames {
		add(f.ReferenceImage)
		for _, n := range f.Nodes {
			if n.ImageIndex != nil && *n.ImageIndex >= 0 && *n.ImageIndex < len(p.ImageLibrary) {
				add(p.ImageLibrary[*n.ImageIndex])
			}
		}
	}
	return out
}

package render

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // register GIF decoding
	_ "image/jpeg" // register JPEG decoding
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoding
	_ "golang.org/x/image/webp" // register WebP decoding

	"github.com/alnah/go-compactpdf/internal/layout"
)

// Compile-time interface check.
var _ layout.ImageLoader = (*imageLoader)(nil)

// imageLoader resolves <img src> values against a base directory. Remote
// URLs are never fetched. Loaded images are cached per source for the
// lifetime of one render.
type imageLoader struct {
	baseDir string
	cache   map[string]*layout.Image
}

func newImageLoader(baseDir string) *imageLoader {
	return &imageLoader{baseDir: baseDir, cache: make(map[string]*layout.Image)}
}

// Load reads and decodes src. JPEG data is embedded as is; every other
// format is normalized to 8-bit PNG.
func (l *imageLoader) Load(src string) (*layout.Image, error) {
	if img, ok := l.cache[src]; ok {
		return img, nil
	}
	data, err := l.read(src)
	if err != nil {
		return nil, err
	}
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrResourceLoad, shorten(src), err)
	}
	l.cache[src] = img
	return img, nil
}

func (l *imageLoader) read(src string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(src, "data:"); ok {
		data, err := decodeDataURI(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: data URI: %v", ErrResourceLoad, err)
		}
		return data, nil
	}
	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrResourceLoad, src, err)
	}
	path := src
	switch u.Scheme {
	case "":
		path = u.Path
	case "file":
		path = u.Path
	default:
		if len(u.Scheme) == 1 {
			break // windows drive letter
		}
		return nil, fmt.Errorf("%w: %q: remote images are not fetched", ErrResourceLoad, src)
	}
	if !filepath.IsAbs(path) && l.baseDir != "" {
		path = filepath.Join(l.baseDir, path)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- image paths come from the document being converted
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceLoad, err)
	}
	return data, nil
}

// decodeDataURI decodes the part of a data URI after "data:".
func decodeDataURI(rest string) ([]byte, error) {
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("missing comma")
	}
	if strings.HasSuffix(meta, ";base64") {
		payload = strings.Join(strings.Fields(payload), "")
		if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
			return data, nil
		}
		return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func decodeImage(data []byte) (*layout.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out := &layout.Image{Width: cfg.Width, Height: cfg.Height}
	if format == "jpeg" {
		out.Format, out.Data = "jpg", data
	} else {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		nrgba := image.NewNRGBA(img.Bounds())
		draw.Draw(nrgba, nrgba.Bounds(), img, img.Bounds().Min, draw.Src)
		var buf bytes.Buffer
		if err := png.Encode(&buf, nrgba); err != nil {
			return nil, err
		}
		out.Format, out.Data = "png", buf.Bytes()
	}
	sum := sha256.Sum256(out.Data)
	out.Key = hex.EncodeToString(sum[:12])
	return out, nil
}

// shorten keeps error messages readable for inline data URIs.
func shorten(src string) string {
	if len(src) > 64 {
		return src[:61] + "..."
	}
	return src
}

package portfolio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 85
	maxUploadSize = 10 << 20 // 10MB
)

var (
	errImageTooLarge = errors.New("image must be 10MB or smaller")
	errInvalidImage  = errors.New("invalid image")
)

// processImage decodes an image from src, downscales it to maxImageWidth
// when wider, and encodes it as JPEG.
func processImage(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidImage, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// readUpload processes an uploaded image file and returns the JPEG bytes
// with a matching .jpg filename.
func readUpload(fh *multipart.FileHeader) ([]byte, string, error) {
	if fh.Size > maxUploadSize {
		return nil, "", errImageTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	data, err := processImage(io.LimitReader(src, maxUploadSize))
	if err != nil {
		return nil, "", err
	}
	return data, jpegName(fh.Filename), nil
}

func jpegName(original string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	return base + ".jpg"
}

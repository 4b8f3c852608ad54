package misc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const (
	PNG Format = iota
	JPEG
	BMP
	TIFF
)

// Format is an image file format, chosen from the output file's extension.
type Format int

func (f Format) String() string {
	return []string{
		"png", "jpeg", "bmp", "tiff",
	}[f]
}

func FormatOf(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	default:
		return PNG, fmt.Errorf("unsupported image format for %q (want .png, .jpg, .bmp or .tiff)", fileName)
	}
}

func EncodeImage(w io.Writer, format Format, img image.Image) error {
	switch format {
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return png.Encode(w, img)
	}
}

// SaveImage encodes img in the format named by fileName's extension and writes it out in one go.
func SaveImage(fileName string, img image.Image) error {
	format, err := FormatOf(fileName)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = EncodeImage(&buf, format, img); err != nil {
		return fmt.Errorf("unable to encode %s as %s - %w", fileName, format, err)
	}
	_, err = WriteFile(fileName, buf.Bytes())
	return err
}

// LoadImage decodes any format SaveImage can write.
func LoadImage(fileName string) (image.Image, error) {
	contents, err := ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(contents))
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s - %w", fileName, err)
	}
	return img, nil
}

package helper

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	maxImageUploadBytes = 5 << 20
	coverMaxWidth       = 600
	webpQuality         = 80
)

// sanitizeFilename keeps letters, digits, dot, dash and underscore.
func sanitizeFilename(filename string) string {
	re := regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)
	return re.ReplaceAllString(filename, "_")
}

func GenerateUniqueFilename(folder, originalFilename string) string {
	timestamp := time.Now().Format("20060102")
	base := strings.TrimSuffix(sanitizeFilename(filepath.Base(originalFilename)), filepath.Ext(originalFilename))
	return fmt.Sprintf("%s/%s-%s-%s", folder, timestamp, uuid.New().String(), base)
}

// ConvertToWebP decodes a JPEG/PNG, shrinks it to maxWidth (never enlarges) and encodes WebP.
func ConvertToWebP(r io.Reader, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveImageAsWebP stores an uploaded cover under dir/folder and returns the relative path.
func SaveImageAsWebP(dir, folder string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > maxImageUploadBytes {
		return "", fmt.Errorf("image exceeds %d bytes", maxImageUploadBytes)
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := ConvertToWebP(src, coverMaxWidth)
	if err != nil {
		return "", err
	}

	rel := GenerateUniqueFilename(folder, fh.Filename) + ".webp"
	full := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create cover dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write cover: %w", err)
	}
	return rel, nil
}

package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"strings"
	"time"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	_ "golang.org/x/image/webp" // 支援 WebP
)

const (
	defaultJPEGQuality  = 85
	defaultMaxSizeBytes = 10 << 20
)

// Service 圖片處理服務：下載或解碼後統一轉為 JPEG
type Service struct {
	maxSizeBytes int64
	quality      int
	client       *resty.Client
}

// NewService 創建新的圖片處理服務
func NewService(cfg config.ImageConfig) *Service {
	if cfg.MaxSizeBytes <= 0 {
		cfg.MaxSizeBytes = defaultMaxSizeBytes
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = defaultJPEGQuality
	}
	return &Service{
		maxSizeBytes: cfg.MaxSizeBytes,
		quality:      cfg.JPEGQuality,
		client:       resty.New().SetTimeout(30 * time.Second),
	}
}

// ProcessImage 接受 data URI 或 http(s) 網址，回傳 JPEG 位元組
func (s *Service) ProcessImage(ctx context.Context, imageData string) ([]byte, error) {
	raw, err := s.load(ctx, strings.TrimSpace(imageData))
	if err != nil {
		return nil, err
	}

	// 檢查文件大小
	if int64(len(raw)) > s.maxSizeBytes {
		return nil, common.ErrInvalidImageSize.Wrap(fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes))
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(err)
	}
	if !isSupportedFormat(format) {
		return nil, common.ErrInvalidImageType.Wrap(fmt.Errorf("unsupported image format: %s", format))
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image as JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) load(ctx context.Context, imageData string) ([]byte, error) {
	if strings.HasPrefix(imageData, "http://") || strings.HasPrefix(imageData, "https://") {
		resp, err := s.client.R().SetContext(ctx).Get(imageData)
		if err != nil {
			return nil, common.ErrFetchFailed.Wrap(err)
		}
		if resp.IsError() {
			return nil, common.ErrFetchFailed.Wrap(fmt.Errorf("failed to download image: status code %d", resp.StatusCode()))
		}
		return resp.Body(), nil
	}

	if !strings.HasPrefix(imageData, "data:image/") {
		return nil, common.ErrInvalidImageFormat
	}

	// data:image/png;base64,<data>
	_, payload, ok := strings.Cut(imageData, ",")
	if !ok {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("invalid base64 data format"))
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(err)
	}
	return decoded, nil
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}

package image

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPrefix = "recipes"

// ObjectPutter S3 上傳介面，*s3.Client 即實作此介面
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader 將食譜圖片存入 S3
type Uploader struct {
	client    ObjectPutter
	bucket    string
	prefix    string
	publicURL string
}

// NewUploader 以預設 AWS 憑證鏈建立上傳器；未啟用時回傳 nil
func NewUploader(ctx context.Context, cfg config.S3Config) (*Uploader, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("s3.bucket_name is required when s3 is enabled")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewUploaderWithClient(s3.NewFromConfig(awsCfg), cfg), nil
}

// NewUploaderWithClient 使用既有的 S3 客戶端
func NewUploaderWithClient(client ObjectPutter, cfg config.S3Config) *Uploader {
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = defaultPrefix
	}
	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.BucketName)
	}
	return &Uploader{
		client:    client,
		bucket:    cfg.BucketName,
		prefix:    prefix,
		publicURL: publicURL,
	}
}

// Upload 上傳 JPEG 並回傳公開網址，key 為 <prefix>/<slug>-<uuid>.jpg
func (u *Uploader) Upload(ctx context.Context, data []byte, slug string) (string, error) {
	if u == nil {
		return "", common.ErrStorageDisabled
	}
	if slug = strings.Trim(slug, "-/ "); slug == "" {
		slug = "recipe"
	}

	key := path.Join(u.prefix, fmt.Sprintf("%s-%s.jpg", slug, uuid.NewString()))
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := u.publicURL + "/" + key
	common.LogInfo("圖片已上傳",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return url, nil
}

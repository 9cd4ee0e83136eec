package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("tipo de archivo no permitido: usa una imagen o un PDF")

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/heic":      ".heic",
	"application/pdf": ".pdf",
}

// ObjectPutter is the part of *s3.Client the store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	PublicBaseURL   string
}

// ReceiptStore keeps payment receipt images in an S3 bucket.
type ReceiptStore struct {
	client  ObjectPutter
	bucket  string
	baseURL string
}

func NewReceiptStore(ctx context.Context, cfg Config) (*ReceiptStore, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewReceiptStoreWithClient(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Region, cfg.PublicBaseURL), nil
}

func NewReceiptStoreWithClient(client ObjectPutter, bucket, region, publicBaseURL string) *ReceiptStore {
	base := strings.TrimRight(publicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &ReceiptStore{client: client, bucket: bucket, baseURL: base}
}

// Upload stores the receipt under receipts/<saleID>/ and returns its public URL.
func (s *ReceiptStore) Upload(ctx context.Context, saleID, contentType string, body io.Reader, size int64) (string, error) {
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := extensions[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}

	key := path.Join("receipts", saleID, uuid.New().String()+ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

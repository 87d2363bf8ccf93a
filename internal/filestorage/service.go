// File: internal/filestorage/service.go
package filestorage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appconfig "motormate_backend/internal/config"
)

// Service provides operations for storing and deleting uploaded files.
type Service interface {
	SaveUploadedFile(ctx context.Context, fileHeader *multipart.FileHeader, subDir string) (string, error)
	DeleteFile(ctx context.Context, key string) error
	PublicURL(key string) string
}

// S3Service stores files in an S3-compatible bucket. Car documents and
// garage images go through here.
type S3Service struct {
	client *s3.Client
	bucket string
	region string
	logger *zap.Logger
}

// NewS3Service creates a new S3-backed file storage service.
func NewS3Service(cfg *appconfig.Config, logger *zap.Logger) (*S3Service, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET cannot be empty")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		logger.Error("Failed to load AWS configuration", zap.Error(err))
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info("S3 file storage initialized",
		zap.String("bucket", cfg.S3Bucket), zap.String("region", cfg.S3Region))
	return &S3Service{
		client: client,
		bucket: cfg.S3Bucket,
		region: cfg.S3Region,
		logger: logger,
	}, nil
}

// SaveUploadedFile uploads a multipart file under subDir with a generated
// name and returns the object key, e.g. "car-documents/uuid.pdf".
func (s *S3Service) SaveUploadedFile(ctx context.Context, fileHeader *multipart.FileHeader, subDir string) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("fileHeader cannot be nil")
	}

	src, err := fileHeader.Open()
	if err != nil {
		s.logger.Error("Failed to open uploaded file", zap.Error(err))
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	extension := filepath.Ext(filepath.Base(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")
	if extension == "" {
		switch {
		case strings.HasPrefix(contentType, "image/jpeg"):
			extension = ".jpg"
		case strings.HasPrefix(contentType, "image/png"):
			extension = ".png"
		case strings.HasPrefix(contentType, "application/pdf"):
			extension = ".pdf"
		default:
			return "", fmt.Errorf("unsupported file type or missing extension: %s", contentType)
		}
	}

	cleanSubDir := filepath.ToSlash(filepath.Clean(subDir))
	if strings.HasPrefix(cleanSubDir, "..") {
		s.logger.Error("Invalid subDir, attempts to navigate up", zap.String("subDir", subDir))
		return "", fmt.Errorf("invalid subDir path")
	}

	key := cleanSubDir + "/" + uuid.New().String() + extension

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("Failed to upload file to S3", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	s.logger.Info("File uploaded successfully", zap.String("key", key))
	return key, nil
}

// DeleteFile removes an object by key.
func (s *S3Service) DeleteFile(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if strings.Contains(filepath.Clean(key), "..") {
		s.logger.Warn("Attempt to delete file with path traversal", zap.String("key", key))
		return fmt.Errorf("invalid file key for deletion")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("Failed to delete file from S3", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete file %s: %w", key, err)
	}

	s.logger.Info("File deleted successfully", zap.String("key", key))
	return nil
}

// PublicURL returns the object URL for a key.
func (s *S3Service) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Config holds the model artifact bucket configuration.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	ModelBucket     string
	ModelKey        string
}

// S3 stores model artifacts in an S3 bucket so that trained models survive
// instance replacement and are shared between the server and the worker.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or the default
// credential chain.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	if cfg.ModelBucket == "" {
		return nil, fmt.Errorf("model bucket not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
	} else {
		logger.Warn("S3 client using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return &S3{
		client:   client,
		uploader: manager.NewUploader(client),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// UploadModel publishes the local artifact at src to the model bucket.
func (s *S3) UploadModel(ctx context.Context, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.ModelBucket),
		Key:         aws.String(s.cfg.ModelKey),
		Body:        f,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload artifact: %w", err)
	}
	s.logger.Info("model artifact uploaded",
		zap.String("bucket", s.cfg.ModelBucket), zap.String("key", s.cfg.ModelKey))
	return nil
}

// DownloadModel fetches the remote artifact into dest, creating parent
// directories.
func (s *S3) DownloadModel(ctx context.Context, dest string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.ModelBucket),
		Key:    aws.String(s.cfg.ModelKey),
	})
	if err != nil {
		return fmt.Errorf("get artifact: %w", err)
	}
	defer out.Body.Close()

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create artifact dir: %w", err)
		}
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create artifact file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, out.Body); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	s.logger.Info("model artifact downloaded",
		zap.String("bucket", s.cfg.ModelBucket), zap.String("dest", dest))
	return nil
}

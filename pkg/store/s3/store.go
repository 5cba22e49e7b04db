package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/perf-tools/report-lens/pkg/models/domain"
	"github.com/perf-tools/report-lens/pkg/store/ident"
)

// Config describes an S3-compatible bucket holding report payloads.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store keeps each report as a single JSON object keyed by identifier.
type Store struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

func NewStore(cfg Config) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &Store{
		client: client,
		bucket: bucket,
		region: region,
	}, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func objectKey(id string) string {
	return "reports/" + id + ".json"
}

func (s *Store) FetchByID(ctx context.Context, id string) (domain.ReportPayload, error) {
	if strings.TrimSpace(id) == "" {
		return domain.ReportPayload{}, fmt.Errorf("%w: identifier is required", domain.ErrFetch)
	}
	if err := s.ensureBucket(ctx); err != nil {
		return domain.ReportPayload{}, fmt.Errorf("%w: ensure bucket: %v", domain.ErrFetch, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(id), minio.GetObjectOptions{})
	if err != nil {
		return domain.ReportPayload{}, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return domain.ReportPayload{}, fmt.Errorf("%w: reading object %s: %v", domain.ErrFetch, id, err)
	}
	return domain.ParseReport(data)
}

func (s *Store) Create(ctx context.Context, payload domain.ReportPayload) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("%w: ensure bucket: %v", domain.ErrFetch, err)
	}

	id := ident.New()
	content := []byte(payload.Raw)
	_, err := s.client.PutObject(ctx, s.bucket, objectKey(id), bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	return id, nil
}

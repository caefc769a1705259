package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// S3Store uploads media to an S3 bucket.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Store loads AWS credentials from the default chain. An empty baseURL
// falls back to the bucket's virtual-hosted endpoint.
func NewS3Store(ctx context.Context, region, bucket, baseURL string) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "load AWS config")
	}
	if baseURL == "" || strings.HasPrefix(baseURL, "/") {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Store{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *S3Store) Save(ctx context.Context, folder string, data []byte, contentType, extension string) (*UploadResult, error) {
	now := time.Now()
	// {folder}/{year}/{month}/{uuid}{ext}
	key := path.Join(folder, fmt.Sprintf("%d/%02d", now.Year(), now.Month()), uuid.NewString()+extension)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=86400"),
		Metadata: map[string]string{
			"upload-timestamp": now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "upload to S3")
	}

	return &UploadResult{
		Key:         key,
		URL:         s.baseURL + "/" + key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

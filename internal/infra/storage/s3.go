package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sitehatch/sitehatch-backend/internal/application/interfaces"
	"github.com/sitehatch/sitehatch-backend/pkg/env"
)

// Storage keeps one prefix per submission under sites/, holding exactly the
// rendered artifact files. Uploads overwrite, so retries are safe.
type Storage struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ interfaces.ArtifactStore = (*Storage)(nil)

func NewStorage(config aws.Config) *Storage {
	return &Storage{
		client: initClient(config),
		bucket: env.GetEnv("S3_BUCKET", "sitehatch-sites"),
		prefix: env.GetEnv("S3_SITES_PREFIX", "sites/"),
	}
}

func initClient(config aws.Config) *s3.Client {
	return s3.NewFromConfig(config, func(o *s3.Options) {
		o.UsePathStyle = true
	})
}

func contentTypeFor(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(filename, ".css"):
		return "text/css"
	case strings.HasSuffix(filename, ".js"):
		return "application/javascript"
	default:
		return "application/octet-stream"
	}
}

func (s *Storage) key(submissionID, filename string) string {
	return s.prefix + submissionID + "/" + filename
}

func (s *Storage) UploadArtifacts(ctx context.Context, submissionID string, files map[string][]byte) error {
	for filename, content := range files {
		key := s.key(submissionID, filename)
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(content),
			ContentType:   aws.String(contentTypeFor(filename)),
			ContentLength: aws.Int64(int64(len(content))),
		})
		if err != nil {
			return fmt.Errorf("can't put object %v, %v", key, err)
		}
	}
	return nil
}

func (s *Storage) GetArtifact(ctx context.Context, submissionID, filename string) ([]byte, error) {
	key := s.key(submissionID, filename)
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("error downloading file %v: %v", key, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading file contents, %v", err)
	}
	return data, nil
}

func (s *Storage) ListArtifacts(ctx context.Context, submissionID string) ([]string, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix + submissionID + "/"),
	})

	var files []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list artifacts, %v", err)
		}
		for _, obj := range page.Contents {
			key := *obj.Key
			files = append(files, key[strings.LastIndex(key, "/")+1:])
		}
	}
	return files, nil
}

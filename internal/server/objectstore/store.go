// Package objectstore keeps CMS media in an S3-compatible bucket and hands
// out presigned GET URLs for public reads.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	sc "github.com/EdProwise/beawar-school-sub001/internal/server/config"
)

// cacheSize bounds the number of presigned URLs kept in memory.
const cacheSize = 4096

// presignMargin keeps a cached URL valid for a while after it leaves the cache.
const presignMargin = 5 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}
)

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Store struct {
	objects objectAPI
	presign presignAPI
	bucket  string
	ttl     time.Duration
	urls    *expirable.LRU[string, string]
}

// New connects to the bucket named in cfg. Credentials are static; the
// endpoint is addressed path-style so MinIO works unchanged.
func New(ctx context.Context, cfg *sc.Config) (*Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newStore(client, newS3PresignClient(client), cfg.S3Bucket, cfg.PublicURLCacheTTL), nil
}

func newStore(objects objectAPI, presign presignAPI, bucket string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Store{
		objects: objects,
		presign: presign,
		bucket:  bucket,
		ttl:     ttl,
		urls:    expirable.NewLRU[string, string](cacheSize, nil, ttl),
	}
}

// Put writes body under key.
func (s *Store) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.objects.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	s.urls.Remove(key)
	return nil
}

// Remove deletes keys and returns those the store reported as removed.
func (s *Store) Remove(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return []string{}, nil
	}
	ids := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
	}

	out, err := s.objects.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return nil, fmt.Errorf("delete objects: %w", err)
	}

	failed := make(map[string]struct{}, len(out.Errors))
	for _, e := range out.Errors {
		failed[aws.ToString(e.Key)] = struct{}{}
	}
	removed := make([]string, 0, len(keys))
	for _, k := range keys {
		s.urls.Remove(k)
		if _, bad := failed[k]; !bad {
			removed = append(removed, k)
		}
	}
	return removed, nil
}

// PublicURL returns a presigned GET URL for key. URLs are reused for the
// cache TTL and stay valid a few minutes beyond it.
func (s *Store) PublicURL(ctx context.Context, key string) (string, error) {
	if u, ok := s.urls.Get(key); ok {
		return u, nil
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl+presignMargin))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	s.urls.Add(key, req.URL)
	return req.URL, nil
}

// RandomKey builds uploads/yyyy/mm/dd/<uuid>-<name> for an uploaded file.
func RandomKey(filename string, now time.Time) string {
	name := strings.ReplaceAll(path.Base(strings.ReplaceAll(filename, "\\", "/")), " ", "_")
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return fmt.Sprintf("uploads/%04d/%02d/%02d/%s-%s", now.Year(), now.Month(), now.Day(), uuid.NewString(), name)
}

// CleanKey normalizes a client supplied object path. It rejects empty
// paths and any ".." segment.
func CleanKey(p string) (string, error) {
	trimmed := strings.Trim(strings.ReplaceAll(p, "\\", "/"), "/")
	if trimmed == "" {
		return "", fmt.Errorf("empty object path")
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == ".." {
			return "", fmt.Errorf("invalid object path %q", p)
		}
	}
	return path.Clean(trimmed), nil
}

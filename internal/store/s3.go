package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"riffbox/internal/config"
	"riffbox/internal/riffbox"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps one object per collection under a key prefix, mirroring
// FileSystemStore's layout:
//
//	<prefix>collection-2026-01-28_10-30-00.json
//
// Existing collections are located by listing and decoding objects.
type S3Store struct {
	mu       sync.Mutex
	client   S3API
	uploader *manager.Uploader
	bucket   string
	prefix   string
	codec    riffbox.Codec
	clock    riffbox.Clock
	logger   riffbox.Logger
}

var _ riffbox.CollectionStore = (*S3Store)(nil)

// NewS3Store creates a store over an existing client.
func NewS3Store(client S3API, bucket, prefix string, codec riffbox.Codec, clock riffbox.Clock, logger riffbox.Logger) *S3Store {
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
		codec:    codecOrPlain(codec),
		clock:    clock,
		logger:   logger,
	}
}

// NewS3StoreFromConfig builds an S3 client from the default AWS credential
// chain, or static credentials and a custom endpoint when configured.
func NewS3StoreFromConfig(ctx context.Context, cfg config.StoreConfig, codec riffbox.Codec, clock riffbox.Clock, logger riffbox.Logger) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 store requires s3_bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix, codec, clock, logger), nil
}

func (s *S3Store) suffix() string {
	return ".json" + s.codec.Extension()
}

func (s *S3Store) List() []riffbox.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []riffbox.Collection
	s.scan(context.Background(), func(_ string, c riffbox.Collection) bool {
		out = append(out, c)
		return true
	})
	return out
}

func (s *S3Store) GetByID(id string) (riffbox.Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found riffbox.Collection
	ok := false
	s.scan(context.Background(), func(_ string, c riffbox.Collection) bool {
		if c.ID == id {
			found, ok = c, true
			return false
		}
		return true
	})
	return found, ok
}

func (s *S3Store) Add(c riffbox.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	data, err := encodeCollection(c, s.codec)
	if err != nil {
		s.logger.Error("failed to encode collection", "collection_id", c.ID, "error", err)
		return
	}

	key := ""
	keys := s.keys(ctx)
	s.scanKeys(ctx, keys, func(k string, existing riffbox.Collection) bool {
		if existing.ID == c.ID {
			key = k
			return false
		}
		return true
	})
	if key == "" {
		key = s.newKey(keys)
	}

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		s.logger.Error("failed to upload collection", "collection_id", c.ID, "key", key, "error", err)
		return
	}
	s.logger.Debug("collection uploaded", "collection_id", c.ID, "key", key)
}

// newKey returns an unused, timestamp-derived object key.
func (s *S3Store) newKey(existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, k := range existing {
		taken[k] = true
	}
	ts := clockOrDefault(s.clock).Now().Format(fileTimeLayout)
	for attempt := 1; ; attempt++ {
		k := s.prefix + baseName(ts, attempt) + s.suffix()
		if !taken[k] {
			return k
		}
	}
}

// keys lists collection object keys under the prefix in lexical order.
func (s *S3Store) keys(ctx context.Context) []string {
	var keys []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			s.logger.Error("failed to list collection objects", "bucket", s.bucket, "prefix", s.prefix, "error", err)
			break
		}
		for _, obj := range page.Contents {
			k := aws.ToString(obj.Key)
			if strings.HasSuffix(k, s.suffix()) && !strings.Contains(strings.TrimPrefix(k, s.prefix), "/") {
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *S3Store) scan(ctx context.Context, fn func(key string, c riffbox.Collection) bool) {
	s.scanKeys(ctx, s.keys(ctx), fn)
}

// scanKeys decodes each object and calls fn until it returns false.
// Unreadable objects are logged and skipped.
func (s *S3Store) scanKeys(ctx context.Context, keys []string, fn func(key string, c riffbox.Collection) bool) {
	for _, k := range keys {
		data, err := s.get(ctx, k)
		if err != nil {
			s.logger.Warn("skipping unreadable collection object", "key", k, "error", err)
			continue
		}
		c, err := decodeCollection(data, s.codec)
		if err != nil {
			s.logger.Warn("skipping invalid collection object", "key", path.Base(k), "error", err)
			continue
		}
		if !fn(k, c) {
			return
		}
	}
}

func (s *S3Store) get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading object: %w", err)
	}
	return data, nil
}

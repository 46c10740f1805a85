package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/fieldobs-cli/internal/metrics"
)

// Defaults for the public Field Observatory bucket.
const (
	DefaultEndpoint = "https://data.lit.fmi.fi"
	DefaultBucket   = "field-observatory"
	DefaultRegion   = "us-east-1"
)

// S3Config configures the anonymous S3 backend.
type S3Config struct {
	Endpoint          string  `mapstructure:"endpoint"`
	Bucket            string  `mapstructure:"bucket"`
	Region            string  `mapstructure:"region"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"` // 0 disables pacing
}

// s3API is the subset of the S3 client used by S3Store; tests supply a fake.
type s3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// newS3Client builds the SDK client; overridden in tests.
var newS3Client = func(ctx context.Context, cfg S3Config) (s3API, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		return nil, eris.Wrap(err, "blobstore: load aws config")
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	}), nil
}

// S3Store reads one bucket through unsigned requests.
type S3Store struct {
	client  s3API
	bucket  string
	host    string
	limiter *rate.Limiter
}

var _ Store = (*S3Store)(nil)

// NewS3 creates an S3Store. Empty config fields fall back to the public bucket defaults.
func NewS3(ctx context.Context, cfg S3Config) (*S3Store, error) {
	cfg = withDefaults(cfg)
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newS3Store(client, cfg)
}

func newS3Store(client s3API, cfg S3Config) (*S3Store, error) {
	cfg = withDefaults(cfg)
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, eris.Wrapf(err, "blobstore: parse endpoint %q", cfg.Endpoint)
	}
	if u.Host == "" {
		return nil, eris.Errorf("blobstore: endpoint %q has no host", cfg.Endpoint)
	}

	s := &S3Store{client: client, bucket: cfg.Bucket, host: u.Host}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return s, nil
}

func withDefaults(cfg S3Config) S3Config {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	return cfg
}

func (s *S3Store) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "blobstore: rate limiter wait")
	}
	return nil
}

// List walks every page of the listing under prefix.
func (s *S3Store) List(ctx context.Context, prefix string) ([]Object, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var objs []Object
	for p.HasMorePages() {
		if err := s.wait(ctx); err != nil {
			return nil, err
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			metrics.ObserveBlob("list", metrics.OutcomeError)
			return nil, eris.Wrapf(err, "blobstore: list %q", prefix)
		}
		metrics.ObserveBlob("list", metrics.OutcomeOK)
		for _, o := range page.Contents {
			objs = append(objs, Object{
				Key:          aws.ToString(o.Key),
				Size:         aws.ToInt64(o.Size),
				LastModified: aws.ToTime(o.LastModified),
			})
		}
	}

	zap.L().Debug("blobstore: listed objects",
		zap.String("bucket", s.bucket),
		zap.String("prefix", prefix),
		zap.Int("count", len(objs)),
	)
	return objs, nil
}

// Get downloads the whole object stored under key.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			metrics.ObserveBlob("get", metrics.OutcomeNotFound)
			return nil, eris.Wrapf(ErrNotFound, "blobstore: get %q", key)
		}
		metrics.ObserveBlob("get", metrics.OutcomeError)
		return nil, eris.Wrapf(err, "blobstore: get %q", key)
	}
	defer out.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(out.Body)
	if err != nil {
		metrics.ObserveBlob("get", metrics.OutcomeError)
		return nil, eris.Wrapf(err, "blobstore: read %q", key)
	}
	metrics.ObserveBlob("get", metrics.OutcomeOK)

	zap.L().Debug("blobstore: fetched object",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return data, nil
}

// URL returns https://<bucket>.<host>/<key>.
func (s *S3Store) URL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.host, strings.TrimPrefix(key, "/"))
}

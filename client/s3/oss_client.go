package s3

import (
	"context"
	"io"
	"os"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

type ObjectStoreTraits interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
	PutObject(ctx context.Context, key string, r io.Reader) error
}

// ObjectStore stores binary objects in one OSS bucket.
type ObjectStore struct {
	bucket *oss.Bucket
}

// BuildObjectStoreFromEnv OSS_ENDPOINT, OSS_ACCESS_KEY, OSS_SECRET_KEY, OSS_BUCKET
func BuildObjectStoreFromEnv() (*ObjectStore, error) {
	endpoint := os.ExpandEnv(os.Getenv("OSS_ENDPOINT"))
	if endpoint == "" {
		endpoint = "dummy"
	}
	accessKey := os.Getenv("OSS_ACCESS_KEY")
	secretKey := os.Getenv("OSS_SECRET_KEY")
	bucketName := os.Getenv("OSS_BUCKET")
	if bucketName == "" {
		bucketName = "stackrent"
	}
	return BuildObjectStore(endpoint, accessKey, secretKey, bucketName)
}

func BuildObjectStore(endpoint, accessKey, secretKey, bucketName string) (*ObjectStore, error) {
	cli, err := oss.New(endpoint, accessKey, secretKey, oss.HTTPClient(nil))
	if err != nil {
		return nil, err
	}
	bucket, err := cli.Bucket(bucketName)
	if err != nil {
		return nil, err
	}
	return &ObjectStore{bucket: bucket}, nil
}

func (s *ObjectStore) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	childSpan := startObjectSpan(ctx, "get-object", key)

	r, err := s.bucket.GetObject(key)
	if childSpan != nil {
		ext.Error.Set(*childSpan, err != nil)
		(*childSpan).Finish()
	}
	return r, err
}

func (s *ObjectStore) PutObject(ctx context.Context, key string, r io.Reader) error {
	childSpan := startObjectSpan(ctx, "put-object", key)

	err := s.bucket.PutObject(key, r)
	if childSpan != nil {
		ext.Error.Set(*childSpan, err != nil)
		(*childSpan).Finish()
	}
	return err
}

func startObjectSpan(ctx context.Context, operation, key string) *opentracing.Span {
	if ctx == nil {
		return nil
	}
	parentSpan := opentracing.SpanFromContext(ctx)
	if parentSpan == nil {
		return nil
	}
	sp := parentSpan.Tracer().StartSpan(operation, opentracing.ChildOf(parentSpan.Context()))
	sp.SetTag("object-key", key)
	return &sp
}

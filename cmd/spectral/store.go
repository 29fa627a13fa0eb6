package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/spectral/blobstore"
	minioblob "github.com/hupe1980/spectral/blobstore/minio"
	s3blob "github.com/hupe1980/spectral/blobstore/s3"
	"github.com/hupe1980/spectral/internal/cache"
	"github.com/hupe1980/spectral/registry"
)

// openStore routes a storage URI to a blobstore implementation:
//
//	/path/to/dir                     local directory
//	mem://                           in-memory (tests, smoke runs)
//	s3://bucket/prefix               S3 via the default AWS config chain
//	minio://endpoint/bucket/prefix   MinIO, credentials from the environment
func openStore(ctx context.Context, uri string) (blobstore.BlobStore, error) {
	switch {
	case uri == "":
		return nil, fmt.Errorf("empty store URI")
	case uri == "mem://" || uri == "mem":
		return blobstore.NewMemoryStore(), nil
	case strings.HasPrefix(uri, "s3://"):
		return openS3Store(ctx, uri)
	case strings.HasPrefix(uri, "minio://"):
		return openMinioStore(uri)
	case strings.Contains(uri, "://"):
		return nil, fmt.Errorf("unsupported store scheme in %q", uri)
	default:
		return blobstore.NewLocalStore(uri), nil
	}
}

func openS3Store(ctx context.Context, uri string) (blobstore.BlobStore, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", uri, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("s3 URI %q has no bucket", uri)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return newS3Store(s3.NewFromConfig(cfg), u.Host, strings.Trim(u.Path, "/")), nil
}

// newS3Store picks the store implementation by bucket type: directory
// buckets (S3 Express One Zone, name suffix --x-s3) get the Express
// store with its conditional-write path, everything else the standard
// one.
func newS3Store(client s3blob.Client, bucket, prefix string) blobstore.BlobStore {
	if strings.HasSuffix(bucket, "--x-s3") {
		return s3blob.NewExpressStore(client, bucket, prefix)
	}
	return s3blob.NewStore(client, bucket, prefix)
}

// cacheBlockSize is the block granularity for remote read caching.
const cacheBlockSize = 256 << 10

// withReadCache wraps remote stores in a block-caching layer of the
// given capacity. Local and in-memory stores are returned unchanged,
// as are all stores when capacity <= 0.
func withReadCache(store blobstore.BlobStore, uri string, capacity int64) blobstore.BlobStore {
	if capacity <= 0 {
		return store
	}
	if !strings.HasPrefix(uri, "s3://") && !strings.HasPrefix(uri, "minio://") {
		return store
	}
	return blobstore.NewCachingStore(store, cache.NewShardedLRUBlockCache(capacity, nil), cacheBlockSize)
}

func openMinioStore(uri string) (blobstore.BlobStore, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", uri, err)
	}
	bucket, prefix, _ := strings.Cut(strings.Trim(u.Path, "/"), "/")
	if u.Host == "" || bucket == "" {
		return nil, fmt.Errorf("minio URI %q needs endpoint and bucket", uri)
	}

	secure := u.Query().Get("secure") != "false"
	client, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewEnvMinio(),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return minioblob.NewStore(client, bucket, prefix), nil
}

// openRegistry routes a registry URI: a plain path selects the JSON-lines
// file registry, dynamodb://table the DynamoDB one.
func openRegistry(ctx context.Context, uri string) (registry.Registry, error) {
	if table, ok := strings.CutPrefix(uri, "dynamodb://"); ok {
		if table == "" {
			return nil, fmt.Errorf("dynamodb URI %q has no table", uri)
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return registry.NewDDBRegistry(dynamodb.NewFromConfig(cfg), table), nil
	}
	if strings.Contains(uri, "://") {
		return nil, fmt.Errorf("unsupported registry scheme in %q", uri)
	}
	return registry.NewLocalRegistry(uri), nil
}

package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/benmeehan/fog-agent/internal/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectOptions configures an ObjectStore.
type ObjectOptions struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	Region          string
	Key             string
}

// ObjectStore keeps the set as a single JSON object in an S3 compatible bucket.
type ObjectStore struct {
	conn   *minio.Client
	bucket string
	object string
}

// NewObjectStore connects to the endpoint and makes sure the bucket exists.
func NewObjectStore(ctx context.Context, opts ObjectOptions) (*ObjectStore, error) {
	conn, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := conn.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := conn.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", opts.Bucket, err)
		}
	}

	key := opts.Key
	if key == "" {
		key = DefaultKey
	}

	return &ObjectStore{
		conn:   conn,
		bucket: opts.Bucket,
		object: key + ".json",
	}, nil
}

// Load downloads and decodes the object. A missing object is an empty set.
func (o *ObjectStore) Load(ctx context.Context) (models.ExplorationSet, error) {
	obj, err := o.conn.GetObject(ctx, o.bucket, o.object, minio.GetObjectOptions{})
	if err != nil {
		return o.loadError(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return o.loadError(err)
	}
	return Decode(data)
}

func (o *ObjectStore) loadError(err error) (models.ExplorationSet, error) {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return models.ExplorationSet{}, nil
	}
	return models.ExplorationSet{}, fmt.Errorf("get object %s/%s: %w", o.bucket, o.object, err)
}

// Save uploads the encoded set, replacing the previous object.
func (o *ObjectStore) Save(ctx context.Context, set models.ExplorationSet) error {
	data, err := Encode(set)
	if err != nil {
		return err
	}

	_, err = o.conn.PutObject(ctx, o.bucket, o.object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", o.bucket, o.object, err)
	}
	return nil
}

// Close is a no-op; minio clients hold no long-lived connections of their own.
func (o *ObjectStore) Close() error {
	return nil
}

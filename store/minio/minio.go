// Package minio implements store.Backend on MinIO and other S3-compatible
// object storage.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/hupe1980/spatialgo/store"
	"github.com/minio/minio-go/v7"
)

// Backend implements store.Backend for a MinIO bucket.
type Backend struct {
	client *minio.Client
	bucket string
	prefix string
}

// New creates a MinIO backend. rootPrefix is prepended to all keys
// (e.g. "datasets/brain/").
func New(client *minio.Client, bucket, rootPrefix string) *Backend {
	return &Backend{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (b *Backend) key(name string) string {
	return path.Join(b.prefix, name)
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, b.key(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", store.ErrKeyNotFound, key)
		}
		return nil, err
	}
	return data, nil
}

func (b *Backend) Put(ctx context.Context, key string, data []byte) error {
	_, err := b.client.PutObject(ctx, b.bucket, b.key(key), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}

func (b *Backend) Delete(ctx context.Context, prefix string) error {
	full := b.key(prefix)
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:    full + "/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			return obj.Err
		}
		if err := b.client.RemoveObject(ctx, b.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}
	// the prefix itself may be a plain object
	err := b.client.RemoveObject(ctx, b.bucket, full, minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func (b *Backend) List(ctx context.Context, prefix string) ([]string, error) {
	full := b.key(prefix)
	if full != "" {
		full += "/"
	}

	var names []string
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:    full,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, full)
		name = strings.TrimSuffix(name, "/")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (b *Backend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.bucket, b.key(key), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}

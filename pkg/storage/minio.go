package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioFolder implements Folder for MinIO/S3 compatible storage. The folder
// is a key prefix inside a bucket and file ids are object keys.
type MinioFolder struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioFolder connects to MinIO and ensures the bucket exists.
func NewMinioFolder(endpoint, accessKey, secretKey, bucket, prefix string, useSSL bool) (*MinioFolder, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioFolder{client: client, bucket: bucket, prefix: normalizePrefix(prefix)}, nil
}

// List returns the objects directly under the prefix.
func (m *MinioFolder) List(ctx context.Context) ([]FileRef, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	out := make([]FileRef, 0)
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: m.prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		out = append(out, FileRef{ID: obj.Key, Name: path.Base(obj.Key)})
		if len(out) == DefaultPageSize {
			break
		}
	}
	return out, nil
}

// FindByName stats the object stored under name.
func (m *MinioFolder) FindByName(ctx context.Context, name string) (FileRef, bool, error) {
	key := m.prefix + name
	if _, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return FileRef{}, false, nil
		}
		return FileRef{}, false, fmt.Errorf("stat object: %w", err)
	}
	return FileRef{ID: key, Name: name}, true, nil
}

// Open returns a streaming reader for the object key id.
func (m *MinioFolder) Open(ctx context.Context, id string) (*Object, error) {
	if !m.owns(id) {
		return nil, fmt.Errorf("open object %s: %w", id, ErrNotFound)
	}
	obj, err := m.client.GetObject(ctx, m.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("open object %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}
	return &Object{Body: obj, ContentType: info.ContentType, Size: info.Size}, nil
}

// Put uploads an object under name.
func (m *MinioFolder) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (FileRef, bool, error) {
	ref, exists, err := m.FindByName(ctx, name)
	if err != nil {
		return FileRef{}, false, err
	}
	key := m.prefix + name
	if _, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return FileRef{}, false, fmt.Errorf("put object: %w", err)
	}
	if !exists {
		ref = FileRef{ID: key, Name: name}
	}
	return ref, !exists, nil
}

func (m *MinioFolder) owns(key string) bool {
	if key == "" || !strings.HasPrefix(key, m.prefix) {
		return false
	}
	rest := strings.TrimPrefix(key, m.prefix)
	return rest != "" && !strings.Contains(rest, "/")
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

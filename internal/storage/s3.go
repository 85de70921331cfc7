package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"kbrain/internal/config"
)

// s3Storage implements FileStorage against an S3-compatible service
// (MinIO, AWS S3, etc.). Object keys have no real directories, so
// CreateDirectory is a no-op and the relative-path root is emulated with a
// key prefix. It is safe for concurrent use by multiple goroutines.
type s3Storage struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3 creates an S3-compatible storage backend backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewS3(cfg config.MinIOConfig) (FileStorage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &s3Storage{client: cli, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return s, nil
}

// key validates p against the relative-path contract and prepends the
// configured prefix.
func (s *s3Storage) key(p string) (string, error) {
	cleaned, err := normalize(p)
	if err != nil {
		return "", err
	}
	if s.prefix == "" {
		return cleaned, nil
	}
	if cleaned == "" {
		return s.prefix, nil
	}
	return s.prefix + "/" + cleaned, nil
}

// rel strips the prefix back off a listed object key.
func (s *s3Storage) rel(key string) string {
	if s.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, s.prefix+"/")
}

func (s *s3Storage) stat(ctx context.Context, key string) (minio.ObjectInfo, bool, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return minio.ObjectInfo{}, false, nil
		}
		return minio.ObjectInfo{}, false, fmt.Errorf("stat object %s: %w", key, err)
	}
	return info, true, nil
}

func (s *s3Storage) Save(ctx context.Context, p string, content []byte, overwrite bool) (bool, error) {
	key, err := s.key(p)
	if err != nil {
		return false, err
	}
	if key == "" {
		return false, fmt.Errorf("%q: %w", p, ErrPathTraversal)
	}
	if !overwrite {
		// Stat-then-put; best-effort only, S3 offers no exclusive create.
		_, found, err := s.stat(ctx, key)
		if err != nil {
			return false, err
		}
		if found {
			return false, nil
		}
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{})
	if err != nil {
		return false, fmt.Errorf("put object %s: %w", key, err)
	}
	return true, nil
}

func (s *s3Storage) Read(ctx context.Context, p string) ([]byte, bool, error) {
	key, err := s.key(p)
	if err != nil {
		return nil, false, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Close()

	content, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read object %s: %w", key, err)
	}
	return content, true, nil
}

func (s *s3Storage) Exists(ctx context.Context, p string) (bool, error) {
	key, err := s.key(p)
	if err != nil {
		return false, err
	}
	_, found, err := s.stat(ctx, key)
	return found, err
}

func (s *s3Storage) List(ctx context.Context, p string, recursive bool) ([]string, error) {
	key, err := s.key(p)
	if err != nil {
		return nil, err
	}
	prefix := ""
	if key != "" {
		prefix = key + "/"
	}

	files := make([]string, 0)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects %s: %w", prefix, obj.Err)
		}
		// Non-recursive listings surface common prefixes as pseudo-dirs.
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		files = append(files, s.rel(obj.Key))
	}
	sort.Strings(files)
	return files, nil
}

func (s *s3Storage) Delete(ctx context.Context, p string) (bool, error) {
	key, err := s.key(p)
	if err != nil {
		return false, err
	}
	// RemoveObject succeeds on missing keys, so stat first to report
	// whether anything was actually deleted.
	_, found, err := s.stat(ctx, key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("remove object %s: %w", key, err)
	}
	return true, nil
}

func (s *s3Storage) Size(ctx context.Context, p string) (int64, bool, error) {
	key, err := s.key(p)
	if err != nil {
		return 0, false, err
	}
	info, found, err := s.stat(ctx, key)
	if err != nil || !found {
		return 0, false, err
	}
	return info.Size, true, nil
}

// CreateDirectory is a no-op: S3 has no directories, prefixes come into
// existence with their first object.
func (s *s3Storage) CreateDirectory(ctx context.Context, p string) (bool, error) {
	if _, err := s.key(p); err != nil {
		return false, err
	}
	return true, nil
}

func (s *s3Storage) Copy(ctx context.Context, src, dst string) (bool, error) {
	content, found, err := s.Read(ctx, src)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return s.Save(ctx, dst, content, true)
}

func (s *s3Storage) Move(ctx context.Context, src, dst string) (bool, error) {
	ok, err := s.Copy(ctx, src, dst)
	if err != nil || !ok {
		return false, err
	}
	return s.Delete(ctx, src)
}

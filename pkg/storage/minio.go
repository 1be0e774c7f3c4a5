package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/courier-sign/pkg/lifecycle"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type objectStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewMinIO creates an object storage backend. The bucket is ensured in Start.
func NewMinIO(cfg *MinIOConfig, logger *slog.Logger) (System, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	return &objectStore{
		client: client,
		bucket: cfg.Bucket,
		logger: logger.With("system", "storage", "backend", BackendMinIO),
	}, nil
}

func (o *objectStore) Start(lc *lifecycle.Coordinator) error {
	o.logger.Info("starting storage system", "bucket", o.bucket)

	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), 10*time.Second)
		defer cancel()

		exists, err := o.client.BucketExists(ctx, o.bucket)
		if err != nil {
			o.logger.Error("bucket lookup failed", "error", err)
			return
		}
		if exists {
			return
		}
		if err := o.client.MakeBucket(ctx, o.bucket, minio.MakeBucketOptions{}); err != nil {
			o.logger.Error("bucket creation failed", "error", err)
			return
		}
		o.logger.Info("bucket created")
	})

	return nil
}

func (o *objectStore) Store(ctx context.Context, key string, data []byte) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	_, err = o.client.PutObject(ctx, o.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: http.DetectContentType(data),
	})
	if err != nil {
		return fmt.Errorf("put object: %w", mapObjectError(err))
	}
	return nil
}

func (o *objectStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	obj, err := o.client.GetObject(ctx, o.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapObjectError(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapObjectError(err)
	}
	return data, nil
}

func (o *objectStore) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	if err := o.client.RemoveObject(ctx, o.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if mapped := mapObjectError(err); mapped == ErrNotFound {
			return nil
		}
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (o *objectStore) Validate(ctx context.Context, key string) (bool, error) {
	key, err := cleanKey(key)
	if err != nil {
		return false, err
	}

	if _, err := o.client.StatObject(ctx, o.bucket, key, minio.StatObjectOptions{}); err != nil {
		if mapped := mapObjectError(err); mapped == ErrNotFound {
			return false, nil
		} else if mapped == ErrPermissionDenied {
			return false, mapped
		}
		return false, fmt.Errorf("stat object: %w", err)
	}
	return true, nil
}

func mapObjectError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return ErrNotFound
	case "AccessDenied":
		return ErrPermissionDenied
	default:
		return err
	}
}

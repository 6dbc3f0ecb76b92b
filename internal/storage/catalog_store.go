package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"spareparts/catalog/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

const contentTypeJSON = "application/json"

// ArtifactStore uploads the encoded catalog to object storage
type ArtifactStore interface {
	// Upload writes content to the configured object and, when history is on,
	// to a copy named after the run. It returns the keys written.
	Upload(ctx context.Context, runID, date string, content []byte) ([]string, error)
}

type minioStore struct {
	client        *minio.Client
	bucket        string
	region        string
	object        string
	historyPrefix string

	initOnce sync.Once
	initErr  error
}

func NewArtifactStore(cfg config.StorageConfig) (ArtifactStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage access key and secret key are required")
	}
	if cfg.Bucket == "" || cfg.Object == "" {
		return nil, fmt.Errorf("storage bucket and object are required")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init storage client: %w", err)
	}

	return &minioStore{
		client:        client,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		object:        cfg.Object,
		historyPrefix: cfg.HistoryPrefix,
	}, nil
}

func (s *minioStore) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		log.Infof("🪣 Creating bucket %s", s.bucket)
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *minioStore) Upload(ctx context.Context, runID, date string, content []byte) ([]string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket %s: %w", s.bucket, err)
	}

	keys := []string{s.object}
	if s.historyPrefix != "" {
		keys = append(keys, HistoryKey(s.historyPrefix, s.object, runID, date))
	}

	for _, key := range keys {
		_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
			ContentType: contentTypeJSON,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s/%s: %w", s.bucket, key, err)
		}
		log.Debugf("Uploaded %d bytes to %s/%s", len(content), s.bucket, key)
	}
	return keys, nil
}

// HistoryKey names the per-run copy: <prefix><date>/<runID>-<object>.
func HistoryKey(prefix, object, runID, date string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + path.Join(date, runID+"-"+path.Base(object))
}

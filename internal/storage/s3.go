// Package storage serves storefront assets from S3-compatible storage.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"coffeeshop/internal/config"
	"coffeeshop/internal/keys"
	"coffeeshop/internal/models"
	"coffeeshop/pkg/logger"
)

// DefaultExpiry is how long presigned asset URLs stay valid.
const DefaultExpiry = 24 * time.Hour

// AssetStore is a client for the asset bucket.
type AssetStore struct {
	client *minio.Client
	bucket string
	region string
	logger *zap.Logger
}

// NewAssetStore creates a client for the configured bucket. No request is
// made until the store is used; presigning works offline because the region
// is fixed.
func NewAssetStore(cfg config.Minio, log *zap.Logger) (*AssetStore, error) {
	log = logger.OrNop(log)
	if !cfg.Enabled() {
		return nil, errors.Wrap(config.ErrMissingSetting, "MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY and ASSET_BUCKET are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create MinIO client")
	}

	log.Info("asset store configured", zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.Bucket))
	return &AssetStore{client: client, bucket: cfg.Bucket, region: cfg.Region, logger: log}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *AssetStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrap(err, "error checking bucket existence")
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return errors.Wrapf(err, "creating bucket %s", s.bucket)
	}
	return nil
}

// ImageURL returns a presigned GET URL for key.
func (s *AssetStore) ImageURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", errors.Wrapf(err, "presigning %s", key)
	}
	return u.String(), nil
}

// DefaultImageURL returns a presigned URL for the placeholder shop image.
func (s *AssetStore) DefaultImageURL(ctx context.Context) (string, error) {
	return s.ImageURL(ctx, keys.DefaultImage, DefaultExpiry)
}

// StoreShops reads shops from a channel and snapshots each one as JSON. It
// returns the number of snapshots written once the channel is closed.
func (s *AssetStore) StoreShops(ctx context.Context, shops <-chan models.Shop) int {
	var (
		wg      sync.WaitGroup
		written atomic.Int64
	)

	for shop := range shops {
		wg.Add(1)
		go func(sh models.Shop) {
			defer wg.Done()
			stored, err := s.storeShop(ctx, sh)
			if err != nil {
				s.logger.Error("error storing shop", zap.String("shop_id", sh.ID), zap.Error(err))
				return
			}
			if stored {
				written.Add(1)
			}
		}(shop)
	}

	wg.Wait()
	n := int(written.Load())
	s.logger.Info("finished storing shops", zap.Int("count", n))
	return n
}

// storeShop writes one snapshot. An existing object is left untouched and
// reported as not stored.
func (s *AssetStore) storeShop(ctx context.Context, shop models.Shop) (bool, error) {
	key := keys.Shop(shop)

	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		s.logger.Debug("shop snapshot already exists", zap.String("key", key))
		return false, nil
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return false, errors.Wrap(err, "failed to check for existing object")
	}

	// favorites are local state and never part of a snapshot
	shop.IsFavorite = false
	data, err := json.Marshal(shop)
	if err != nil {
		return false, errors.Wrap(err, "failed to marshal shop")
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return false, errors.Wrap(err, "failed to store object")
	}

	s.logger.Info("stored shop snapshot", zap.String("shop_id", shop.ID), zap.String("key", key))
	return true, nil
}

// GetShop reads a snapshot back. Together with ProductsByCategory it lets a
// snapshot stand in for the shop API on the detail screen.
func (s *AssetStore) GetShop(ctx context.Context, id string) (*models.Shop, error) {
	key := keys.Shop(models.Shop{ID: id})
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s", key)
	}
	defer object.Close()

	var shop models.Shop
	if err := json.NewDecoder(object).Decode(&shop); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", key)
	}
	return &shop, nil
}

// ProductsByCategory filters the products of a snapshot.
func (s *AssetStore) ProductsByCategory(ctx context.Context, id, category string) ([]models.Product, error) {
	shop, err := s.GetShop(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.FilterByCategory(shop.Products, category), nil
}

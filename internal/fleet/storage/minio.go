// Package storage archives finished trip journals in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	"github.com/Rus1K7/Airport/pkg/log"
	"github.com/Rus1K7/Airport/pkg/options"
)

var _ core.TripArchive = (*TripArchive)(nil)

// objectStore is the subset of *minio.Client the archive uses.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type TripArchive struct {
	client objectStore
	bucket string
	region string
}

// NewTripArchive creates a MinIO-backed archive.
func NewTripArchive(opts *options.S3Options) (*TripArchive, error) {
	minioOpts := &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	}
	if opts.UseSSL {
		// Ground networks run the object store with self-signed certificates.
		minioOpts.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}

	client, err := minio.New(opts.Endpoint, minioOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &TripArchive{client: client, bucket: opts.BucketName, region: opts.Region}, nil
}

// EnsureBucket creates the bucket if it is missing.
func (a *TripArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	log.Info("Bucket does not exist, creating", "bucket", a.bucket)
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive stores trip as JSON under trips/{vehicle}/{task}/{attempt}.json.
func (a *TripArchive) Archive(ctx context.Context, trip *model.Trip) error {
	body, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("encode trip: %w", err)
	}

	key := ObjectKey(trip)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	log.FromContext(ctx).Debug("Trip archived", "bucket", a.bucket, "key", key)
	return nil
}

// ObjectKey is the object name of a trip journal.
func ObjectKey(trip *model.Trip) string {
	return path.Join("trips", trip.VehicleID, trip.TaskID, trip.AttemptID+".json")
}

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zapshift/parcel-server/internal/models"
)

// ReceiptStore archives payment receipts in an object storage bucket.
type ReceiptStore struct {
	client *minio.Client
	bucket string
}

// NewReceiptStore connects to the object store and creates bucket if it
// does not exist yet.
func NewReceiptStore(ctx context.Context, endpoint, accessKey, secretKey string, useSSL bool, bucket string, log logrus.FieldLogger) (*ReceiptStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MinIO")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		log.WithError(err).Warn("failed to check receipt bucket existence")
	} else if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			log.WithError(err).Warn("failed to create receipt bucket")
		} else {
			log.WithField("bucket", bucket).Info("created receipt bucket")
		}
	}

	log.WithField("endpoint", endpoint).Info("connected to MinIO")
	return &ReceiptStore{client: client, bucket: bucket}, nil
}

// ObjectName is the key a payment's receipt is stored under. A parcel paid
// through more than one session keeps its tracking id, so the transaction id
// tells the receipts apart.
func ObjectName(payment *models.Payment) string {
	return fmt.Sprintf("receipts/%s/%s.json", payment.TrackingID, payment.TransactionID)
}

func (s *ReceiptStore) Archive(ctx context.Context, payment *models.Payment) error {
	body, err := json.Marshal(payment)
	if err != nil {
		return errors.Wrap(err, "encode receipt")
	}

	_, err = s.client.PutObject(ctx, s.bucket, ObjectName(payment),
		bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return errors.Wrap(err, "failed to upload receipt")
	}
	return nil
}

// PresignedURL returns a temporary download link for a payment's receipt.
func (s *ReceiptStore) PresignedURL(ctx context.Context, payment *models.Payment, expiry time.Duration) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, ObjectName(payment), expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate receipt link")
	}
	return url.String(), nil
}

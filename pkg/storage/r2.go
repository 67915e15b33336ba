/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"k8s.io/klog/v2"

	"github.com/arielsmarin/straty-backend-stable/pkg/config"
	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
	"github.com/arielsmarin/straty-backend-stable/pkg/utils/concurrent"
)

// R2Client talks to an S3-compatible endpoint. Cloudflare R2 in
// production, MinIO in staging.
type R2Client struct {
	bucket     string
	publicBase string
	s3Client   *s3.S3

	// R2 has no native append; tile_events.ndjson is read-modify-write
	// under this mutex.
	appendMu sync.Mutex
}

func NewR2Client(ctx context.Context) (*R2Client, error) {
	bucket := config.GetStorageBucket()
	if bucket == "" {
		return nil, fmt.Errorf("storage.bucket is not configured")
	}
	awsConfig := &aws.Config{
		Endpoint:         aws.String(config.GetStorageEndpoint()),
		Region:           aws.String(config.GetStorageRegion()),
		Credentials:      credentials.NewStaticCredentials(config.GetStorageAccessKey(), config.GetStorageSecretKey(), ""),
		S3ForcePathStyle: aws.Bool(true),
	}
	newSession, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}
	cli := &R2Client{
		bucket:     bucket,
		publicBase: config.GetPublicUrlBase(),
		s3Client:   s3.New(newSession),
	}
	input := &s3.HeadBucketInput{Bucket: aws.String(bucket)}
	if _, err = cli.s3Client.HeadBucketWithContext(ctx, input); err != nil {
		return nil, fmt.Errorf("bucket %s is not reachable: %w", bucket, err)
	}
	klog.Infof("init r2 client successfully, bucket: %s", bucket)
	return cli, nil
}

func (c *R2Client) Exists(ctx context.Context, key string) (bool, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}
	if _, err := c.s3Client.HeadObjectWithContext(ctx, input); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *R2Client) PutFile(ctx context.Context, srcPath, key, contentType string) error {
	file, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer file.Close()
	return c.put(ctx, key, file, contentType)
}

func (c *R2Client) PutBytes(ctx context.Context, key string, data []byte, contentType string) error {
	return c.put(ctx, key, bytes.NewReader(data), contentType)
}

func (c *R2Client) put(ctx context.Context, key string, body io.ReadSeeker, contentType string) error {
	if key == "" {
		return fmt.Errorf("the object key is empty")
	}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if cacheControl := CacheControlForKey(key); cacheControl != "" {
		input.CacheControl = aws.String(cacheControl)
	}
	if _, err := c.s3Client.PutObjectWithContext(ctx, input); err != nil {
		return err
	}
	return nil
}

func (c *R2Client) GetJSON(ctx context.Context, key string, v interface{}) error {
	data, err := c.getObject(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (c *R2Client) getObject(ctx context.Context, key string) ([]byte, error) {
	resp, err := c.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NewObjectNotFound(key)
		}
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (c *R2Client) PutTilesParallel(ctx context.Context, items []TileObject,
	workers int, onUploaded func(key string)) error {
	return putTilesParallel(ctx, c, items, workers, onUploaded)
}

func (c *R2Client) AppendJSONL(ctx context.Context, key string, obj interface{}) error {
	c.appendMu.Lock()
	defer c.appendMu.Unlock()

	existing, err := c.getObject(ctx, key)
	if err != nil && !errors.IsNotFound(err) {
		return err
	}
	data, err := appendJsonLine(existing, obj)
	if err != nil {
		return err
	}
	return c.PutBytes(ctx, key, data, ContentTypeNdjson)
}

func (c *R2Client) ReadJSONLSlice(ctx context.Context, key string,
	cursor, limit int) ([]json.RawMessage, int, bool, error) {
	data, err := c.getObject(ctx, key)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, cursor, false, nil
		}
		return nil, cursor, false, err
	}
	events, next, hasMore := sliceJsonLines(key, data, cursor, limit)
	return events, next, hasMore, nil
}

func (c *R2Client) PublicURL(key string) string {
	return c.publicBase + "/" + key
}

// putTilesParallel is the bounded fan-out shared by both backends.
func putTilesParallel(ctx context.Context, store Interface, items []TileObject,
	workers int, onUploaded func(key string)) error {
	if len(items) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	successes, err := concurrent.ExecIndexed(len(items), workers, func(i int) error {
		item := items[i]
		if putErr := store.PutBytes(ctx, item.Key, item.Data, ContentTypeForKey(item.Key)); putErr != nil {
			klog.ErrorS(putErr, "tile upload failed", "key", item.Key)
			return putErr
		}
		if onUploaded != nil {
			onUploaded(item.Key)
		}
		return nil
	})
	if err != nil {
		failed := len(items) - successes
		return errors.NewUploadFailed(fmt.Sprintf("%d of %d tile uploads failed: %v", failed, len(items), err))
	}
	return nil
}

func isNotFound(err error) bool {
	var awsErr awserr.RequestFailure
	if goerrors.As(err, &awsErr) {
		if awsErr.StatusCode() == http.StatusNotFound {
			return true
		}
	}
	var codeErr awserr.Error
	if goerrors.As(err, &codeErr) {
		switch codeErr.Code() {
		case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
			return true
		}
	}
	return false
}

package rag

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/medbookai/medbook/pkg/logging"
)

// S3API is the subset of the S3 client used by Loader.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// maxObjectBytes guards against ingesting oversized knowledge files.
const maxObjectBytes = 10 << 20

// Loader pulls knowledge documents from an S3 bucket prefix for ingestion.
type Loader struct {
	client S3API
	bucket string
	prefix string
	logger *logging.Logger
}

// NewLoader creates an S3 knowledge loader. If bucket is empty, Load is a
// no-op returning no documents.
func NewLoader(client S3API, bucket, prefix string, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Default()
	}
	return &Loader{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// Enabled reports whether a bucket is configured.
func (l *Loader) Enabled() bool {
	return l != nil && l.bucket != "" && l.client != nil
}

// Load lists the prefix and fetches each text object as a Document. Objects
// that fail to download are skipped with a warning rather than aborting the
// whole ingestion.
func (l *Loader) Load(ctx context.Context) ([]Document, error) {
	if !l.Enabled() {
		return nil, nil
	}

	var docs []Document
	var continuation *string
	for {
		out, err := l.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(l.bucket),
			Prefix:            aws.String(l.prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("rag: list knowledge objects: %w", err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			if obj.Size != nil && *obj.Size > maxObjectBytes {
				l.logger.Warn("skipping oversized knowledge object", "key", key, "size", *obj.Size)
				continue
			}

			content, err := l.fetch(ctx, key)
			if err != nil {
				l.logger.Warn("failed to fetch knowledge object", "key", key, "error", err)
				continue
			}
			if strings.TrimSpace(content) == "" {
				continue
			}
			docs = append(docs, Document{Source: path.Base(key), Content: content})
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		continuation = out.NextContinuationToken
	}

	l.logger.Info("knowledge documents loaded", "bucket", l.bucket, "count", len(docs))
	return docs, nil
}

func (l *Loader) fetch(ctx context.Context, key string) (string, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxObjectBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

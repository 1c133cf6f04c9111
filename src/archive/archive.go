package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"

	"git.handmade.network/hmn/pngscope/src/config"
	"git.handmade.network/hmn/pngscope/src/oops"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// An Archiver copies original PNG files to an S3-compatible bucket.
type Archiver struct {
	client *s3.Client
	bucket string
}

func New(ctx context.Context, cfg config.ArchiveConfig) (*Archiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, ""),
		),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithEndpointResolver(aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL: cfg.Endpoint,
			}, nil
		})),
	)
	if err != nil {
		return nil, oops.New(err, "failed to load archive config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return &Archiver{client: client, bucket: cfg.Bucket}, nil
}

var REIllegalFilenameChars = regexp.MustCompile(`[^\w\-.]`)

func SanitizeFilename(filename string) string {
	if filename == "" {
		return "unnamed"
	}
	return REIllegalFilenameChars.ReplaceAllString(filename, "_")
}

func ArchiveKey(id, filename string) string {
	return fmt.Sprintf("%s/%s", id, filename)
}

// Store uploads content under a fresh key derived from the file's base name
// and returns the key. A missing bucket is created on first use.
func (a *Archiver) Store(ctx context.Context, path string, content []byte) (string, error) {
	key := ArchiveKey(uuid.New().String(), SanitizeFilename(filepath.Base(path)))
	contentType := "image/png"

	upload := func() error {
		_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      &a.bucket,
			Key:         &key,
			Body:        bytes.NewReader(content),
			ACL:         types.ObjectCannedACLPrivate,
			ContentType: &contentType,
		})
		return err
	}

	err := upload()
	if err != nil {
		var apiError smithy.APIError
		if errors.As(err, &apiError) && apiError.ErrorCode() == "NoSuchBucket" {
			_, err := a.client.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: &a.bucket,
			})
			if err != nil {
				return "", oops.New(err, "failed to create archive bucket")
			}

			err = upload()
			if err != nil {
				return "", oops.New(err, "failed to archive %s", path)
			}
		} else {
			return "", oops.New(err, "failed to archive %s", path)
		}
	}

	return key, nil
}

// Fetch downloads a previously archived file.
func (a *Archiver) Fetch(ctx context.Context, key string) ([]byte, error) {
	res, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &a.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, oops.New(err, "failed to fetch archived file %s", key)
	}
	defer res.Body.Close()

	content, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, oops.New(err, "failed to read archived file %s", key)
	}
	return content, nil
}

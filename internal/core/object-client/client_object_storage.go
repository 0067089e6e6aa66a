package objectclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	cfg "github.com/markdave123-py/newsprint/internal/config"
	"github.com/markdave123-py/newsprint/internal/core"
)

var _ core.ObjectClient = (*S3Client)(nil)

// ErrArchiveDisabled is returned by NewS3Client when no bucket is configured.
var ErrArchiveDisabled = errors.New("object archive disabled: BUCKET_NAME not set")

type S3Client struct {
	client   *s3.Client
	uploader *manager.Uploader
	region   string
	bucket   string
	endpoint string
	log      logrus.FieldLogger
}

// NewS3Client builds a client for cfg.BucketName. Static credentials are used
// when both keys are set, otherwise the default AWS chain applies.
// S3Endpoint points the client at an S3-compatible server such as MinIO.
func NewS3Client(ctx context.Context, cfg *cfg.Config, log logrus.FieldLogger) (*S3Client, error) {
	if cfg.BucketName == "" {
		return nil, ErrArchiveDisabled
	}
	if cfg.AwsRegion == "" {
		return nil, fmt.Errorf("AWS_REGION not set")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AwsRegion)}
	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AwsAccessKey, cfg.AwsSecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	log = log.WithFields(logrus.Fields{"bucket": cfg.BucketName, "region": cfg.AwsRegion})
	log.Info("object archive enabled")

	return &S3Client{
		client:   client,
		uploader: manager.NewUploader(client),
		region:   cfg.AwsRegion,
		bucket:   cfg.BucketName,
		endpoint: strings.TrimRight(cfg.S3Endpoint, "/"),
		log:      log,
	}, nil
}

// UploadFile streams data to key and returns the object's URL.
func (c *S3Client) UploadFile(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	}

	ctxUpload, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if _, err := c.uploader.Upload(ctxUpload, input); err != nil {
		return "", fmt.Errorf("s3 upload %s: %w", key, err)
	}

	c.log.WithField("key", key).Debug("uploaded")
	return ObjectURL(c.endpoint, c.bucket, c.region, key), nil
}

func (c *S3Client) GetFile(ctx context.Context, key string) ([]byte, error) {
	ctxGet, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := c.client.GetObject(ctxGet, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// ObjectURL is the virtual-hosted AWS URL, or a path-style URL under endpoint.
func ObjectURL(endpoint, bucket, region, key string) string {
	if endpoint != "" {
		u, err := url.Parse(endpoint)
		if err == nil {
			u.Path = path.Join(u.Path, bucket, key)
			return u.String()
		}
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}

// ArchiveKey places an output file under runs/<run>/.
func ArchiveKey(run, name string) string {
	return path.Join("runs", run, path.Base(name))
}

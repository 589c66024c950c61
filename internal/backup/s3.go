package backup

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Environment variables read by RemoteConfigFromEnv.
const (
	EnvS3Bucket    = "POCKET_BACKUP_S3_BUCKET"
	EnvS3Region    = "POCKET_BACKUP_S3_REGION"
	EnvS3Endpoint  = "POCKET_BACKUP_S3_ENDPOINT"
	EnvS3Prefix    = "POCKET_BACKUP_S3_PREFIX"
	EnvS3PathStyle = "POCKET_BACKUP_S3_PATH_STYLE"
)

// RemoteConfig describes an S3-compatible bucket (AWS S3 or MinIO).
type RemoteConfig struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, e.g. http://localhost:9000 for MinIO
	Prefix          string // key prefix, e.g. "pocket/"
	AccessKeyID     string // optional, falls back to the default credential chain
	SecretAccessKey string
	PathStyle       bool
}

// RemoteConfigFromEnv reads POCKET_BACKUP_S3_* and the standard AWS variables.
func RemoteConfigFromEnv() RemoteConfig {
	return RemoteConfig{
		Bucket:    os.Getenv(EnvS3Bucket),
		Region:    os.Getenv(EnvS3Region),
		Endpoint:  os.Getenv(EnvS3Endpoint),
		Prefix:    os.Getenv(EnvS3Prefix),
		PathStyle: strings.EqualFold(os.Getenv(EnvS3PathStyle), "true"),
	}
}

// objectAPI is the subset of the S3 client used for uploads.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Remote uploads backup files to a bucket.
type Remote struct {
	client objectAPI
	bucket string
	prefix string
}

// RemoteObject is an uploaded backup.
type RemoteObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// NewRemote builds an S3 client for cfg.
func NewRemote(ctx context.Context, cfg RemoteConfig) (*Remote, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required (set %s)", EnvS3Bucket)
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Remote{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (r *Remote) key(name string) string {
	return path.Join(r.prefix, name)
}

// Push uploads the backup file at localPath and returns its object key.
func (r *Remote) Push(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := r.key(filepath.Base(localPath))
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/vnd.sqlite3"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

// List returns uploaded backups, newest first.
func (r *Remote) List(ctx context.Context) ([]RemoteObject, error) {
	var out []RemoteObject
	var token *string
	prefix := r.prefix
	for {
		page, err := r.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(r.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list backups: %w", err)
		}
		for _, obj := range page.Contents {
			out = append(out, RemoteObject{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
		if aws.ToBool(page.IsTruncated) && page.NextContinuationToken != nil {
			token = page.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out, nil
}

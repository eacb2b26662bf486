package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/dmitrijs2005/moviebox/internal/common"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}

	timeNow = time.Now
)

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Config struct {
	Region       string
	RootUser     string
	RootPassword string
	BaseEndpoint string
	Bucket       string
}

// S3Store keeps artifacts in a bucket under exports/<y>/<m>/<d>/<uuid>/.
type S3Store struct {
	fs     afero.Fs
	api    objectAPI
	bucket string
}

func NewS3Store(ctx context.Context, fs afero.Fs, c S3Config) (*S3Store, error) {
	if c.Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.RootUser,     // MINIO_ROOT_USER
			c.RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Store{fs: fs, api: client, bucket: c.Bucket}, nil
}

func objectKey(name string) string {
	d := timeNow()
	return fmt.Sprintf("exports/%d/%d/%d/%v/%s", d.Year(), d.Month(), d.Day(), uuid.New(), name)
}

func (s *S3Store) location(key string) string {
	return "s3://" + s.bucket + "/" + key
}

func (s *S3Store) key(location string) (string, error) {
	key, ok := strings.CutPrefix(location, "s3://"+s.bucket+"/")
	if !ok || key == "" {
		return "", fmt.Errorf("%w: foreign location %q", common.ErrNotFound, location)
	}
	return key, nil
}

// Publish uploads localPath and deletes the local copy once the upload
// succeeded.
func (s *S3Store) Publish(ctx context.Context, localPath string) (string, error) {
	f, err := s.fs.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", localPath, err)
	}

	key := objectKey(filepath.Base(localPath))
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String("application/zip"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	_ = f.Close()
	if err := s.fs.Remove(localPath); err != nil {
		return "", fmt.Errorf("remove local copy %s: %w", localPath, err)
	}

	return s.location(key), nil
}

func (s *S3Store) Open(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	key, err := s.key(location)
	if err != nil {
		return nil, 0, err
	}

	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, 0, fmt.Errorf("%w: %s", common.ErrNotFound, location)
		}
		return nil, 0, fmt.Errorf("download %s: %w", key, err)
	}

	return out.Body, aws.ToInt64(out.ContentLength), nil
}

func (s *S3Store) Remove(ctx context.Context, location string) error {
	key, err := s.key(location)
	if err != nil {
		return err
	}

	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

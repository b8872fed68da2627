package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/sangkips/invoicer/pkg/apperror"
)

const s3Scheme = "s3://"

// S3Store keeps PDFs in a bucket. Locations look like s3://bucket/prefix/name.
type S3Store struct {
	client   s3iface.S3API
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
}

// NewS3Store uses the default AWS credential chain
func NewS3Store(bucket, region, prefix string) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New("s3 storage requires a bucket")
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}
	client := s3.New(sess)
	return newS3Store(client, s3manager.NewUploaderWithClient(client), bucket, prefix), nil
}

func newS3Store(client s3iface.S3API, uploader s3manageriface.UploaderAPI, bucket, prefix string) *S3Store {
	return &S3Store{
		client:   client,
		uploader: uploader,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}
}

func (s *S3Store) key(name string) string {
	return path.Join(s.prefix, path.Base(name))
}

func (s *S3Store) Save(ctx context.Context, name string, data []byte) (string, error) {
	key := s.key(name)
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", apperror.NewStoreWriteError(err)
	}
	return s3Scheme + s.bucket + "/" + key, nil
}

func (s *S3Store) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, key, err := parseLocation(location)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, apperror.NewNotFoundError("Invoice file")
		}
		return nil, err
	}
	return out.Body, nil
}

func (s *S3Store) Delete(ctx context.Context, location string) error {
	bucket, key, err := parseLocation(location)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}

func parseLocation(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("not an s3 location: %q", location)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 location: %q", location)
	}
	return bucket, key, nil
}

// Package storage guarda adjuntos en un bucket compatible con S3 (AWS S3, MinIO, RustFS).
// Cada partición es un prefijo: <prefix>/<partición>/<archivo>.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/jhoicas/conciliador-ubl/internal/domain"
	"github.com/jhoicas/conciliador-ubl/internal/domain/repository"
	"github.com/jhoicas/conciliador-ubl/pkg/config"
)

var _ repository.BlobStore = (*S3BlobStore)(nil)

// S3BlobStore BlobStore sobre S3 con escritura condicional (If-None-Match: *).
type S3BlobStore struct {
	client *s3.Client
	bucket string
	prefix string
	log    zerolog.Logger
}

// NewS3BlobStore valida la configuración y crea el cliente.
func NewS3BlobStore(ctx context.Context, cfg config.S3Config, log zerolog.Logger) (*S3BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket requerido")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("s3: credenciales requeridas (S3_ACCESS_KEY, S3_SECRET_KEY)")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("s3: configuración AWS: %w", err)
	}

	var endpoint string
	if cfg.Endpoint != "" {
		endpoint = cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("s3: endpoint inválido: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &S3BlobStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		log:    log.With().Str("bucket", cfg.Bucket).Logger(),
	}, nil
}

// EnsureBucket crea el bucket si no existe.
func (s *S3BlobStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) && httpStatus(err) != http.StatusNotFound {
		return fmt.Errorf("s3: verificar bucket: %w", err)
	}

	s.log.Info().Msg("creando bucket de adjuntos")
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("s3: crear bucket: %w", err)
	}
	return nil
}

// Put sube data sin sobrescribir. Si la clave existe (HEAD previo o 412 en la escritura
// condicional) devuelve domain.ErrBlobExists.
func (s *S3BlobStore) Put(ctx context.Context, partition, name string, data []byte) error {
	key, err := s.ObjectKey(partition, name)
	if err != nil {
		return err
	}

	// Algunos servicios compatibles ignoran If-None-Match; el HEAD cubre ese caso.
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	switch {
	case err == nil:
		return domain.ErrBlobExists
	case !isNotFound(err):
		return fmt.Errorf("s3: consultar %s: %w", key, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(http.DetectContentType(data)),
		IfNoneMatch:   aws.String("*"),
	})
	if err != nil {
		if isPreconditionFailed(err) {
			return domain.ErrBlobExists
		}
		return fmt.Errorf("s3: subir %s: %w", key, err)
	}
	return nil
}

// ObjectKey clave del objeto para partition/name.
func (s *S3BlobStore) ObjectKey(partition, name string) (string, error) {
	if !validSegment(partition) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPartition, partition)
	}
	if !validSegment(name) {
		return "", fmt.Errorf("%w: nombre %q", domain.ErrInvalidInput, name)
	}
	if s.prefix == "" {
		return partition + "/" + name, nil
	}
	return s.prefix + "/" + partition + "/" + name, nil
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, "/\\\x00")
}

func httpStatus(err error) int {
	var re interface{ HTTPStatusCode() int }
	if errors.As(err, &re) {
		return re.HTTPStatusCode()
	}
	return 0
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey) || httpStatus(err) == http.StatusNotFound
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	switch httpStatus(err) {
	case http.StatusPreconditionFailed, http.StatusConflict:
		return true
	}
	return false
}

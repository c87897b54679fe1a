// Package objectstore хранит обработанные файлы в S3-совместимом хранилище.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Config — параметры подключения к хранилищу.
type Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	Folder       string // Префикс всех ключей, например "staffdesk/"
	UsePathStyle bool
	PublicURL    string // Базовый адрес для ссылок, иначе адрес от S3
}

// Store загружает и удаляет объекты одного бакета.
type Store struct {
	client    *s3.Client
	uploader  *manager.Uploader
	bucket    string
	folder    string
	pathStyle bool
	publicURL string
}

// New создаёт клиент S3 со статическими ключами доступа.
func New(ctx context.Context, cfg Config) (*Store, error) {
	const op = "objectstore.New"

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &Store{
		client:    client,
		uploader:  manager.NewUploader(client),
		bucket:    cfg.Bucket,
		folder:    cfg.Folder,
		pathStyle: cfg.UsePathStyle,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Upload кладёт data под ключом folder+key и возвращает адрес объекта.
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	const op = "objectstore.Upload"

	fullKey := s.folder + key
	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if s.publicURL != "" {
		return s.publicURL + "/" + fullKey, nil
	}
	return out.Location, nil
}

// Delete удаляет объект по адресу, выданному Upload.
func (s *Store) Delete(ctx context.Context, location string) error {
	const op = "objectstore.Delete"

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.KeyFromLocation(location)),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Exists проверяет наличие объекта. Ошибка означает, что ответить не удалось.
func (s *Store) Exists(ctx context.Context, location string) (bool, error) {
	const op = "objectstore.Exists"

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.KeyFromLocation(location)),
	})
	if err == nil {
		return true, nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return false, nil
	}
	return false, fmt.Errorf("%s: %w", op, err)
}

// KeyFromLocation восстанавливает ключ объекта из его адреса.
// Строка без схемы считается уже ключом.
func (s *Store) KeyFromLocation(location string) string {
	if s.publicURL != "" && strings.HasPrefix(location, s.publicURL+"/") {
		return strings.TrimPrefix(location, s.publicURL+"/")
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" {
		return location
	}

	key := strings.TrimPrefix(u.Path, "/")
	if s.pathStyle {
		key = strings.TrimPrefix(key, s.bucket+"/")
	}
	return key
}

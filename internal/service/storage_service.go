package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"quizgen_backend/internal/config"
	"quizgen_backend/internal/util"
	"quizgen_backend/pkg/logger"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 导出文件的存储后端
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, filename string) error
	GetURL(filename string) string
}

// LocalStorageProvider 本地存储实现
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) path(filename string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filepath.FromSlash(filename))
	root := filepath.Clean(p.Config.LocalPath)
	if dst != root && !strings.HasPrefix(dst, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: invalid object key %q", util.ErrInvalidRequest, filename)
	}
	return dst, nil
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst, err := p.path(filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err = io.Copy(out, reader); err != nil {
		return "", err
	}

	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, filename string) error {
	dst, err := p.path(filename)
	if err != nil {
		return err
	}
	return os.Remove(dst)
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return "/exports/" + filename
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

// EnsureBucket 桶不存在时创建
func (p *MinioStorageProvider) EnsureBucket(ctx context.Context) error {
	exists, err := p.Client.BucketExists(ctx, p.Config.MinioBucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return p.Client.MakeBucket(ctx, p.Config.MinioBucket, minio.MakeBucketOptions{})
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, filename string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, filename, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	return "/" + p.Config.MinioBucket + "/" + filename
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
}

// NewStorageService minio 初始化失败时退回本地存储
func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Error("Failed to create minio client, using local storage", zap.Error(err))
			break
		}
		if err := p.EnsureBucket(context.Background()); err != nil {
			logger.Log.Warn("Minio bucket check failed", zap.String("bucket", cfg.Storage.MinioBucket), zap.Error(err))
		}
		provider = p
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

func (s *StorageService) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if s == nil || s.Provider == nil {
		return "", util.ErrStorageUnavailable
	}
	url, err := s.Provider.Upload(ctx, filename, reader, size, contentType)
	if err != nil {
		if util.IsValidationError(err) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}
	return url, nil
}

func (s *StorageService) Delete(ctx context.Context, filename string) error {
	if s == nil || s.Provider == nil {
		return util.ErrStorageUnavailable
	}
	return s.Provider.Delete(ctx, filename)
}

func (s *StorageService) GetURL(filename string) string {
	return s.Provider.GetURL(filename)
}

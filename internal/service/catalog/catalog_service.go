package catalog

import (
	"context"

	"github.com/Domenick1991/coursedesk/internal/domain"
	"go.uber.org/zap"
)

type CatalogUseCase interface {
	List(ctx context.Context) ([]domain.CoursePackage, error)
	Get(ctx context.Context, id string) (*domain.CoursePackage, error)
}

type Source interface {
	Packages(ctx context.Context) ([]domain.CoursePackage, error)
}

type Cache interface {
	GetPackages(ctx context.Context) ([]domain.CoursePackage, error)
	SetPackages(ctx context.Context, pkgs []domain.CoursePackage) error
}

type CatalogService struct {
	source Source
	cache  Cache
	logger *zap.Logger
}

// NewCatalogService builds the package catalog. cache may be nil.
func NewCatalogService(source Source, cache Cache, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{source: source, cache: cache, logger: logger}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.CoursePackage, error) {
	if s.cache != nil {
		cached, err := s.cache.GetPackages(ctx)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			s.logger.Warn("package cache read failed", zap.Error(err))
		}
	}

	pkgs, err := s.source.Packages(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetPackages(ctx, pkgs); err != nil {
			s.logger.Warn("package cache write failed", zap.Error(err))
		}
	}
	return pkgs, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.CoursePackage, error) {
	pkgs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range pkgs {
		if pkgs[i].ID == id {
			p := pkgs[i]
			return &p, nil
		}
	}
	return nil, domain.ErrPackageNotFound
}

var _ CatalogUseCase = (*CatalogService)(nil)

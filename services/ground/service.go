// Package ground manages the catalogue of bookable grounds.
package ground

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"boxcric/database/repository"
	groundRepo "boxcric/database/repository/ground"
	"boxcric/models"
	"boxcric/services/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrGroundNotFound  = errors.New("ground not found")
	ErrInvalidGround   = errors.New("invalid ground")
	ErrUploadsDisabled = errors.New("image uploads are not configured")
)

// Cache is the listing cache. utils.VersionedCache satisfies it.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context) error
}

// CreateRequest is the admin payload for a new ground.
type CreateRequest struct {
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description"`
	Location    models.GroundLocation `json:"location"`
	Price       models.GroundPrice    `json:"price"`
	Amenities   []string              `json:"amenities"`
	OwnerID     string                `json:"ownerId"`
	Status      models.GroundStatus   `json:"status"`
}

type Service struct {
	repo   groundRepo.GroundRepository
	cache  Cache
	images storage.ImageStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService builds the ground service. cache and images may be nil.
func NewService(repo groundRepo.GroundRepository, cache Cache, images storage.ImageStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: cache, images: images, logger: logger, now: time.Now}
}

// ListActive returns bookable grounds matching filter and whether the result
// came from the cache. Cache failures fall back to the store.
func (s *Service) ListActive(ctx context.Context, filter models.GroundFilter) ([]models.Ground, bool, error) {
	filter.Status = models.GroundActive
	key := cacheKey(filter)

	if s.cache != nil {
		var cached []models.Ground
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("Ground cache read failed", zap.String("key", key), zap.Error(err))
		}
		if hit {
			return cached, true, nil
		}
	}

	grounds, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list grounds: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, grounds); err != nil {
			s.logger.Warn("Ground cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return grounds, false, nil
}

// ListAll is the uncached admin listing across every status.
func (s *Service) ListAll(ctx context.Context, filter models.GroundFilter) ([]models.Ground, error) {
	grounds, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list grounds: %w", err)
	}
	return grounds, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Ground, error) {
	g, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrGroundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ground %s: %w", id, err)
	}
	return g, nil
}

// Create registers a ground. New grounds await approval unless a status is given.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Ground, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidGround)
	}
	if req.Price.PerHour <= 0 {
		return nil, fmt.Errorf("%w: price per hour must be positive", ErrInvalidGround)
	}
	if req.Price.Discount < 0 || req.Price.Discount > 100 {
		return nil, fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidGround)
	}
	if req.Status == "" {
		req.Status = models.GroundPending
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidGround, req.Status)
	}

	now := s.now()
	g := &models.Ground{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Location:    req.Location,
		Price:       req.Price,
		Amenities:   req.Amenities,
		OwnerID:     req.OwnerID,
		Status:      req.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create ground: %w", err)
	}
	s.invalidate(ctx)
	s.logger.Info("Ground created", zap.String("groundId", g.ID), zap.String("status", string(g.Status)))
	return g, nil
}

// UpdateStatus changes approval status or verification. Grounds are never
// deleted; deactivating one is the soft delete.
func (s *Service) UpdateStatus(ctx context.Context, id string, upd models.GroundStatusUpdate) (*models.Ground, error) {
	if upd.Status == nil && upd.IsVerified == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidGround)
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidGround, *upd.Status)
	}
	g, err := s.repo.UpdateStatus(ctx, id, upd, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrGroundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update ground %s: %w", id, err)
	}
	s.invalidate(ctx)
	return g, nil
}

// AddImage uploads an image and appends its URL to the ground.
func (s *Service) AddImage(ctx context.Context, id string, file io.Reader, filename string) (string, error) {
	if s.images == nil {
		return "", ErrUploadsDisabled
	}
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}
	name := strings.TrimSuffix(filename, pathExt(filename))
	imageURL, err := s.images.UploadImage(ctx, file, "grounds/"+id, name)
	if err != nil {
		return "", err
	}
	if err := s.repo.AddImage(ctx, id, imageURL, s.now()); err != nil {
		return "", fmt.Errorf("failed to attach image: %w", err)
	}
	s.invalidate(ctx)
	return imageURL, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Ground cache invalidation failed", zap.Error(err))
	}
}

func cacheKey(f models.GroundFilter) string {
	q := url.Values{}
	q.Set("status", string(f.Status))
	q.Set("city", f.CityID)
	q.Set("search", strings.ToLower(strings.TrimSpace(f.Search)))
	q.Set("min", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	q.Set("max", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	return "list:" + q.Encode()
}

func pathExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}

package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BradenHooton/alumninet/internal/directory"
	"github.com/BradenHooton/alumninet/internal/metrics"
	"github.com/BradenHooton/alumninet/internal/models"
)

// DirectorySearcher runs a built directory query.
type DirectorySearcher interface {
	Search(ctx context.Context, q directory.Query) ([]*models.DirectoryEntry, int64, error)
}

// avatarConcurrency bounds presign calls per page.
const avatarConcurrency = 8

// DirectoryResult is one rendered directory page.
type DirectoryResult struct {
	models.DirectoryPage
	Filters    map[string]string    `json:"filters"`
	Filtered   bool                 `json:"filtered"` // any filter besides page; drives "clear filters"
	Pagination directory.Pagination `json:"pagination"`
}

type DirectoryService struct {
	store   DirectorySearcher
	avatars AvatarResolver
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewDirectoryService(store DirectorySearcher, avatars AvatarResolver, m *metrics.Metrics, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{store: store, avatars: avatars, metrics: m, logger: logger}
}

// Search fetches one page for f. A store failure is returned as a
// *models.DirectoryQueryError carrying the store's message; it is not
// retried. Pages past the end come back empty with the real totals.
func (s *DirectoryService) Search(ctx context.Context, f directory.Filters) (result *DirectoryResult, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDirectory(start, err) }()

	if f.Page < 1 {
		f.Page = 1
	}

	items, total, err := s.store.Search(ctx, directory.Build(f))
	if err != nil {
		s.logger.Error("directory query failed", slog.Any("error", err))
		return nil, &models.DirectoryQueryError{Message: err.Error(), Err: err}
	}

	s.resolveAvatars(ctx, items)

	totalPages := directory.TotalPages(total)
	filters := map[string]string{}
	for k, v := range f.Values() {
		filters[k] = v[0]
	}

	return &DirectoryResult{
		DirectoryPage: models.DirectoryPage{
			Items:      items,
			Total:      total,
			Page:       f.Page,
			TotalPages: totalPages,
		},
		Filters:    filters,
		Filtered:   f.Active(),
		Pagination: directory.Paginate(f, totalPages),
	}, nil
}

// resolveAvatars replaces stored keys with URLs. An entry whose avatar
// cannot be resolved is shown without one.
func (s *DirectoryService) resolveAvatars(ctx context.Context, items []*models.DirectoryEntry) {
	if s.avatars == nil {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(avatarConcurrency)
	for _, it := range items {
		if it.AvatarURL == nil {
			continue
		}
		g.Go(func() error {
			url, err := s.avatars.Resolve(gctx, it.AvatarURL)
			if err != nil {
				s.logger.Warn("failed to resolve avatar", slog.String("profile_id", it.ID), slog.Any("error", err))
				it.AvatarURL = nil
				return nil
			}
			it.AvatarURL = url
			return nil
		})
	}
	_ = g.Wait()
}

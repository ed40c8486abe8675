package directory

import (
	"context"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/opdesk/opdesk/internal/model"
	"github.com/opdesk/opdesk/pkg/errors"
	"github.com/opdesk/opdesk/pkg/logger"
	"github.com/opdesk/opdesk/pkg/metrics"
)

// DoctorLister is the slice of the receptionist client the directory
// needs.
type DoctorLister interface {
	ListActiveDoctors(ctx context.Context) ([]model.Doctor, error)
}

// Service caches the active-doctor directory for the lifetime of a desk
// session. Load replaces the mapping wholesale; Lookup is a pure
// synchronous read used for derived-field computation. A failed load
// leaves any previous mapping untouched.
type Service struct {
	api     DoctorLister
	cache   *gocache.Cache
	logger  *logger.Logger
	metrics *metrics.Metrics
}

type Config struct {
	TTL time.Duration
}

func NewService(api DoctorLister, cfg Config, log *logger.Logger, m *metrics.Metrics) *Service {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Service{
		api:     api,
		cache:   gocache.New(ttl, ttl),
		logger:  log,
		metrics: m,
	}
}

// Load fetches the active doctors and replaces the cached mapping. On
// failure the previous mapping survives and the error is returned for
// the caller to surface as a non-blocking warning.
func (s *Service) Load(ctx context.Context) error {
	doctors, err := s.api.ListActiveDoctors(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.DirectoryLoads.WithLabelValues("error").Inc()
		}
		s.logger.Error(err, "failed to load doctor directory")
		return errors.NewUnavailable("failed to load doctors", err)
	}

	s.cache.Flush()
	for _, d := range doctors {
		if !d.Active {
			continue
		}
		s.cache.SetDefault(d.ID, d)
	}

	if s.metrics != nil {
		s.metrics.DirectoryLoads.WithLabelValues("success").Inc()
		s.metrics.DirectorySize.Set(float64(s.cache.ItemCount()))
	}
	s.logger.Debug("doctor directory loaded", "count", len(doctors))
	return nil
}

// Lookup returns the cached doctor for id. Pure and synchronous; no
// network.
func (s *Service) Lookup(id string) (model.Doctor, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		if s.metrics != nil {
			s.metrics.DirectoryLookups.WithLabelValues("miss").Inc()
		}
		return model.Doctor{}, false
	}
	if s.metrics != nil {
		s.metrics.DirectoryLookups.WithLabelValues("hit").Inc()
	}
	return v.(model.Doctor), true
}

// Doctors returns the cached directory sorted by name, for select
// controls.
func (s *Service) Doctors() []model.Doctor {
	items := s.cache.Items()
	doctors := make([]model.Doctor, 0, len(items))
	for _, item := range items {
		doctors = append(doctors, item.Object.(model.Doctor))
	}
	sort.Slice(doctors, func(i, j int) bool {
		return doctors[i].Name < doctors[j].Name
	})
	return doctors
}

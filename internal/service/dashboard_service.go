package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/epidash-backend-go/internal/cache"
	"github.com/jengzang/epidash-backend-go/internal/dataset"
	"github.com/jengzang/epidash-backend-go/internal/models"
	"github.com/jengzang/epidash-backend-go/internal/pipeline"
	"github.com/jengzang/epidash-backend-go/internal/render"
	"github.com/jengzang/epidash-backend-go/internal/repository"
	"github.com/jengzang/epidash-backend-go/internal/spatial"
)

var (
	// ErrDatasetNotFound is returned for unknown or evicted dataset IDs
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrUnknownChart    = errors.New("unknown chart")
)

// Chart kinds served as PNG
const (
	ChartFatalityTrend = "fatality-trend"
	ChartCovidCases    = "covid-cases"
	ChartNipahCases    = "nipah-cases"
	ChartDistribution  = "distribution"
)

// UploadResult summarizes a parsed pair of uploads
type UploadResult struct {
	ID                    string   `json:"id"`
	Cached                bool     `json:"cached"` // Identical bytes were already parsed
	TimeseriesRows        int      `json:"timeseries_rows"`
	TimeseriesRowsDropped int      `json:"timeseries_rows_dropped"`
	OutbreakRows          int      `json:"outbreak_rows"`
	OutbreakRowsDropped   int      `json:"outbreak_rows_dropped"`
	Warnings              []string `json:"warnings"`
	YearRange             [2]int   `json:"year_range"`
	Countries             []string `json:"countries"`
}

// DashboardService parses uploads and derives the dashboard views
type DashboardService struct {
	// storeMu orders raw row writes with cache insertions and evictions so
	// a cached dataset always has its rows in the repository
	storeMu sync.Mutex

	cache  *cache.DatasetCache
	repo   *repository.DatasetRepository
	coords *spatial.CoordinateTable
	logger *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(c *cache.DatasetCache, repo *repository.DatasetRepository, coords *spatial.CoordinateTable, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		cache:  c,
		repo:   repo,
		coords: coords,
		logger: logger,
	}
}

// Upload parses both CSV uploads, memoized by their content. The
// timeseries must keep at least one row after cleaning.
func (s *DashboardService) Upload(ctx context.Context, timeseries, outbreak []byte) (*UploadResult, error) {
	id := cache.Key(timeseries, outbreak)
	if entry, ok := s.cache.Get(id); ok {
		s.logger.Debug("Upload served from cache", zap.String("dataset", id))
		res := summarize(entry)
		res.Cached = true
		return res, nil
	}

	start := time.Now()
	entry := &cache.Entry{ID: id}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := dataset.ParseTimeseries(bytes.NewReader(timeseries))
		entry.Timeseries = t
		return err
	})
	g.Go(func() error {
		t, err := dataset.ParseOutbreak(bytes.NewReader(outbreak))
		entry.Outbreak = t
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(entry.Timeseries.Records) == 0 {
		return nil, pipeline.ErrNoTimeseriesData
	}

	if err := s.store(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Dataset parsed",
		zap.String("dataset", id),
		zap.Int("timeseries_rows", len(entry.Timeseries.Records)),
		zap.Int("outbreak_rows", len(entry.Outbreak.Records)),
		zap.Duration("elapsed", time.Since(start)))

	return summarize(entry), nil
}

// store saves the raw rows and caches the entry, dropping the rows of any
// evicted dataset
func (s *DashboardService) store(ctx context.Context, entry *cache.Entry) error {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	if err := s.repo.SaveDataset(ctx, entry.ID, entry.Timeseries.Records, entry.Outbreak.Records); err != nil {
		return fmt.Errorf("store raw rows: %w", err)
	}
	for _, old := range s.cache.Put(entry) {
		if _, err := s.repo.DeleteDataset(ctx, old); err != nil {
			s.logger.Warn("Failed to drop evicted dataset rows", zap.String("dataset", old), zap.Error(err))
		}
		s.logger.Info("Evicted dataset", zap.String("dataset", old))
	}
	return nil
}

func summarize(e *cache.Entry) *UploadResult {
	res := &UploadResult{
		ID:                    e.ID,
		TimeseriesRows:        len(e.Timeseries.Records),
		TimeseriesRowsDropped: e.Timeseries.RowsDropped,
		OutbreakRows:          len(e.Outbreak.Records),
		OutbreakRowsDropped:   e.Outbreak.RowsDropped,
		Warnings:              append(append([]string{}, e.Timeseries.Warnings...), e.Outbreak.Warnings...),
		Countries:             pipeline.Countries(e.Outbreak.Records),
	}
	if first, last, ok := pipeline.YearRange(pipeline.YearlyRollup(e.Timeseries.Records)); ok {
		res.YearRange = [2]int{first, last}
	}
	return res
}

func (s *DashboardService) entry(id string) (*cache.Entry, error) {
	e, ok := s.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return e, nil
}

// Dashboard computes every view for one rendering pass
func (s *DashboardService) Dashboard(ctx context.Context, id string, filter models.DashboardFilter) (*models.Dashboard, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	d, err := pipeline.Build(e.Timeseries.Records, e.Outbreak.Records, s.coords, filter)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Dashboard built",
		zap.String("dataset", id),
		zap.Int("year", d.Filter.Year),
		zap.String("country", d.Filter.Country),
		zap.Duration("elapsed", time.Since(start)))
	return d, nil
}

// Yearly returns the yearly rollup
func (s *DashboardService) Yearly(id string) ([]models.YearlyAggregate, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	return pipeline.YearlyRollup(e.Timeseries.Records), nil
}

// Latest returns the latest snapshot per location
func (s *DashboardService) Latest(id string) ([]models.LocationSnapshot, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	return pipeline.LatestSnapshot(e.Timeseries.Records), nil
}

// Heatmap returns the outbreak country x year matrix
func (s *DashboardService) Heatmap(id string) (*models.HeatmapMatrix, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	m := pipeline.Pivot(e.Outbreak.Records)
	return &m, nil
}

// PointMap returns the mapped outbreak locations
func (s *DashboardService) PointMap(id string) (*models.PointMap, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	m := pipeline.MapPoints(pipeline.JoinCoordinates(e.Outbreak.Records, s.coords))
	return &m, nil
}

// Choropleth returns the pandemic choropleth view
func (s *DashboardService) Choropleth(id string) (*models.Choropleth, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	c := pipeline.Choropleth(pipeline.LatestSnapshot(e.Timeseries.Records))
	return &c, nil
}

// KPIs returns the indicator cards for a filter
func (s *DashboardService) KPIs(ctx context.Context, id string, filter models.DashboardFilter) (*models.KPISet, error) {
	d, err := s.Dashboard(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	return &d.KPIs, nil
}

// Chart renders one dashboard chart as PNG
func (s *DashboardService) Chart(ctx context.Context, id, kind string, filter models.DashboardFilter) ([]byte, error) {
	switch kind {
	case ChartFatalityTrend, ChartCovidCases, ChartNipahCases, ChartDistribution:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownChart, kind)
	}

	d, err := s.Dashboard(ctx, id, filter)
	if err != nil {
		return nil, err
	}

	switch kind {
	case ChartFatalityTrend:
		return render.FatalityTrend(d.FatalityTrend)
	case ChartCovidCases:
		return render.Bars("COVID-19 cases (millions)", d.CovidCaseBars)
	case ChartNipahCases:
		return render.Bars("Nipah cases", d.OutbreakBars)
	default:
		return render.Distribution(d.Distribution)
	}
}

// OutbreakRows returns a page of outbreak rows with fatality rates and
// coordinates. Rows without coordinates are kept.
func (s *DashboardService) OutbreakRows(ctx context.Context, id string, filter models.RowFilter) ([]models.OutbreakRecord, int64, error) {
	if _, err := s.entry(id); err != nil {
		return nil, 0, err
	}
	rows, total, err := s.repo.ListOutbreakRows(ctx, id, filter)
	if err != nil {
		return nil, 0, err
	}
	return pipeline.JoinCoordinates(pipeline.OutbreakFatality(rows), s.coords), total, nil
}

// TimeseriesRows returns a page of cleaned timeseries rows
func (s *DashboardService) TimeseriesRows(ctx context.Context, id string, filter models.RowFilter) ([]models.TimeseriesRecord, int64, error) {
	if _, err := s.entry(id); err != nil {
		return nil, 0, err
	}
	return s.repo.ListTimeseriesRows(ctx, id, filter)
}

// Delete drops a dataset from the cache and the raw table store
func (s *DashboardService) Delete(ctx context.Context, id string) error {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	cached := s.cache.Invalidate(id)
	stored, err := s.repo.DeleteDataset(ctx, id)
	if err != nil {
		return err
	}
	if !cached && !stored {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	s.logger.Info("Dataset deleted", zap.String("dataset", id))
	return nil
}

// Coordinates returns the active coordinate table
func (s *DashboardService) Coordinates() []spatial.CoordinateEntry {
	return s.coords.Entries()
}

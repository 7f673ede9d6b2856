package query

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/auth"
	"github.com/medisys-health/diagnostics/config"
	"github.com/medisys-health/diagnostics/reports"
)

type Params struct {
	Limit        int
	ClinicFilter string
}

// Engine applies an access context to report lookups
type Engine struct {
	repository    reports.Repository
	defaultLimit  int
	defaultWindow int
	logger        *zap.SugaredLogger
}

func NewEngine(repository reports.Repository, cfg *config.Config, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		repository:    repository,
		defaultLimit:  cfg.DefaultReportsLimit,
		defaultWindow: cfg.DefaultTimeRangeDays,
		logger:        logger,
	}
}

func (e *Engine) DefaultTimeRangeDays() int {
	return e.defaultWindow
}

// List returns the newest reports visible to the caller. The clinic filter is
// ignored for lab users.
func (e *Engine) List(ctx context.Context, access auth.AccessContext, params Params) ([]reports.Report, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = e.defaultLimit
	}
	return e.fetch(ctx, access, params.ClinicFilter, limit)
}

// ListForAnalytics returns every visible report created on or after the UTC date
// timeRangeDays before now
func (e *Engine) ListForAnalytics(ctx context.Context, access auth.AccessContext, timeRangeDays int, now time.Time) ([]reports.Report, error) {
	if timeRangeDays <= 0 {
		timeRangeDays = e.defaultWindow
	}

	list, err := e.fetch(ctx, access, "", 0)
	if err != nil {
		return nil, err
	}

	start := StartOfDay(now).AddDate(0, 0, -timeRangeDays)
	filtered := make([]reports.Report, 0, len(list))
	for _, report := range list {
		if !report.Timestamp.UTC().Before(start) {
			filtered = append(filtered, report)
		}
	}
	return filtered, nil
}

func (e *Engine) fetch(ctx context.Context, access auth.AccessContext, clinicFilter string, limit int) ([]reports.Report, error) {
	var list []reports.Report
	var err error

	switch {
	case access.Role == auth.RoleLab:
		list, err = e.repository.ListByClinic(ctx, access.ClinicId, true, limit)
	case clinicFilter != "":
		list, err = e.repository.ListByClinic(ctx, clinicFilter, true, limit)
	default:
		list, err = e.repository.ScanAll(ctx, limit)
	}
	if err != nil {
		return nil, err
	}

	if access.Role == auth.RoleLab {
		list = e.restrictToClinic(list, access.ClinicId)
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	if list == nil {
		list = make([]reports.Report, 0)
	}
	return list, nil
}

func (e *Engine) restrictToClinic(list []reports.Report, clinicId string) []reports.Report {
	filtered := list[:0]
	for _, report := range list {
		if report.ClinicId != clinicId {
			e.logger.Warnw("dropping report outside of the caller's clinic", "reportId", report.ReportId, "clinicId", report.ClinicId)
			continue
		}
		filtered = append(filtered, report)
	}
	return filtered
}

func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

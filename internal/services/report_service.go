package services

import (
	"fmt"
	"time"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"
)

const (
	defaultTopProducts = 10
	maxTopProducts     = 100
	maxReportShifts    = 200
)

// --- ReportService Interface ---
type ReportService interface {
	GetDailySummary(params models.ReportRequestParams) (*models.DailySummary, error)
	GetHourlyRevenue(params models.ReportRequestParams) ([]models.HourlyRevenue, error)
	GetTopProducts(params models.ReportRequestParams) ([]models.ProductSales, error)
	GetTableUtilization(params models.ReportRequestParams) ([]models.TableUtilization, error)
	GetShiftVariance(params models.ReportRequestParams) (*models.ShiftVarianceReport, error)
}

type reportService struct {
	reportRepo repositories.ReportRepository
	shiftRepo  repositories.ShiftRepository
	loc        *time.Location
	now        Clock
}

// NewReportService creates a new instance of ReportService.
func NewReportService(rr repositories.ReportRepository, sr repositories.ShiftRepository, loc *time.Location, clock Clock) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{reportRepo: rr, shiftRepo: sr, loc: loc, now: defaultClock(clock)}
}

// dayRange resolves params.Date (default today) to [midnight, next midnight).
func (s *reportService) dayRange(params models.ReportRequestParams) (time.Time, time.Time, error) {
	day, err := parseDay(params.Date, s.now(), s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, NewValidationError("date", "must be YYYY-MM-DD")
	}
	return day, day.AddDate(0, 0, 1), nil
}

// periodRange resolves from/to (inclusive days). Both default to today.
func (s *reportService) periodRange(params models.ReportRequestParams) (time.Time, time.Time, error) {
	now := s.now()
	from, err := parseDay(params.From, now, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, NewValidationError("from", "must be YYYY-MM-DD")
	}
	to, err := parseDay(params.To, now, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, NewValidationError("to", "must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, NewValidationError("to", "must not be before from")
	}
	return from, to.AddDate(0, 0, 1), nil
}

func (s *reportService) GetDailySummary(params models.ReportRequestParams) (*models.DailySummary, error) {
	from, to, err := s.dayRange(params)
	if err != nil {
		return nil, err
	}
	summary, err := s.reportRepo.GetRevenueTotals(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to total revenue: %w", err)
	}
	summary.Date = from.Format(dateLayout)

	closed, minutes, err := s.reportRepo.GetSessionTotals(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to total sessions: %w", err)
	}
	summary.ClosedSessions = closed
	summary.TableMinutes = minutes
	if closed > 0 {
		summary.AverageSessionMinutes = float64(minutes) / float64(closed)
	}

	if summary.ActiveTables, err = s.reportRepo.CountActiveTables(); err != nil {
		return nil, fmt.Errorf("failed to count active tables: %w", err)
	}
	if summary.NewMembers, err = s.reportRepo.CountNewMembers(from, to); err != nil {
		return nil, fmt.Errorf("failed to count new members: %w", err)
	}
	return summary, nil
}

// GetHourlyRevenue always returns 24 buckets, hours without sales at zero.
func (s *reportService) GetHourlyRevenue(params models.ReportRequestParams) ([]models.HourlyRevenue, error) {
	from, to, err := s.dayRange(params)
	if err != nil {
		return nil, err
	}
	rows, err := s.reportRepo.GetHourlyRevenue(from, to, s.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket revenue by hour: %w", err)
	}
	return fillHours(rows), nil
}

func fillHours(rows []models.HourlyRevenue) []models.HourlyRevenue {
	buckets := make([]models.HourlyRevenue, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}
	for _, r := range rows {
		if r.Hour < 0 || r.Hour > 23 {
			continue
		}
		buckets[r.Hour].Revenue += r.Revenue
		buckets[r.Hour].Orders += r.Orders
	}
	return buckets
}

func (s *reportService) GetTopProducts(params models.ReportRequestParams) ([]models.ProductSales, error) {
	from, to, err := s.periodRange(params)
	if err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultTopProducts
	}
	if limit > maxTopProducts {
		limit = maxTopProducts
	}
	products, err := s.reportRepo.GetTopProducts(from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	return products, nil
}

func (s *reportService) GetTableUtilization(params models.ReportRequestParams) ([]models.TableUtilization, error) {
	from, to, err := s.periodRange(params)
	if err != nil {
		return nil, err
	}
	tables, err := s.reportRepo.GetTableUtilization(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate table usage: %w", err)
	}
	for i := range tables {
		if tables[i].Sessions > 0 {
			tables[i].AvgMinutes = float64(tables[i].TotalMinutes) / float64(tables[i].Sessions)
		}
	}
	return tables, nil
}

func (s *reportService) GetShiftVariance(params models.ReportRequestParams) (*models.ShiftVarianceReport, error) {
	from, to, err := s.periodRange(params)
	if err != nil {
		return nil, err
	}
	fromDay := from.Format(dateLayout)
	toDay := to.AddDate(0, 0, -1).Format(dateLayout)
	filters := models.ShiftFilters{From: &fromDay, To: &toDay, PageSize: maxReportShifts}
	shifts, _, err := s.shiftRepo.GetShifts(filters, s.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return summarizeVariance(shifts), nil
}

func summarizeVariance(shifts []models.ShiftReport) *models.ShiftVarianceReport {
	report := &models.ShiftVarianceReport{Shifts: []models.ShiftReport{}}
	for _, sh := range shifts {
		if sh.IsOpen() || sh.Variance == nil {
			continue
		}
		report.Shifts = append(report.Shifts, sh)
		report.TotalVariance += *sh.Variance
		switch {
		case *sh.Variance < 0:
			report.ShortCount++
		case *sh.Variance > 0:
			report.OverCount++
		}
	}
	return report
}

package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bondastefana/farm-management-app/internal/domain/balance"
	"github.com/bondastefana/farm-management-app/internal/domain/models"
	"github.com/bondastefana/farm-management-app/internal/metrics"
	"github.com/bondastefana/farm-management-app/internal/repository/mongodb"
	repo "github.com/bondastefana/farm-management-app/internal/repository/sheets"
)

const (
	dateLayout       = "2006-01-02"
	balanceDataRange = "Balance!A:H"
)

// BalanceSource provides the figures summarised by the weekly report.
type BalanceSource interface {
	NeededStock(ctx context.Context) (models.NeededStockReport, error)
	Plans(ctx context.Context) ([]models.ProductionPlan, error)
}

// Service produces the weekly feed balance report.
type Service struct {
	feed      BalanceSource
	snapshots mongodb.SnapshotRepository
	sheets    repo.Repository
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewService wires a new reporting service instance. sheets may be nil, in
// which case the spreadsheet export is skipped.
func NewService(feed BalanceSource, snapshots mongodb.SnapshotRepository, sheets repo.Repository, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		feed:      feed,
		snapshots: snapshots,
		sheets:    sheets,
		metrics:   m,
		logger:    logger,
	}
}

// Snapshot computes the current balance without storing it. The balance is
// derived from the same needed stock the snapshot carries.
func (s *Service) Snapshot(ctx context.Context, now time.Time) (models.BalanceSnapshot, error) {
	needed, err := s.feed.NeededStock(ctx)
	if err != nil {
		return models.BalanceSnapshot{}, fmt.Errorf("compute needed stock: %w", err)
	}
	plans, err := s.feed.Plans(ctx)
	if err != nil {
		return models.BalanceSnapshot{}, fmt.Errorf("list production plans: %w", err)
	}
	report, err := balance.ProductionBalance(plans, needed)
	if err != nil {
		return models.BalanceSnapshot{}, fmt.Errorf("compute production balance: %w", err)
	}

	return models.BalanceSnapshot{
		ID:          uuid.NewString(),
		Date:        now,
		NeededStock: needed,
		Balance:     report,
		CreatedAt:   now,
	}, nil
}

// GenerateWeeklyReport stores a balance snapshot, exports it to the
// spreadsheet when configured and returns the text summary.
func (s *Service) GenerateWeeklyReport(ctx context.Context, now time.Time) (summary string, err error) {
	defer func() { s.metrics.RecordReport(err) }()

	snapshot, err := s.Snapshot(ctx, now)
	if err != nil {
		return "", err
	}

	if err := s.snapshots.SaveBalanceSnapshot(ctx, snapshot); err != nil {
		return "", fmt.Errorf("save balance snapshot: %w", err)
	}

	if s.sheets != nil {
		if err := s.sheets.WriteRows(ctx, balanceDataRange, BalanceRows(snapshot)); err != nil {
			return "", fmt.Errorf("export balance rows: %w", err)
		}
	} else {
		s.logger.Debug("sheets export disabled, skipping balance rows")
	}

	return FormatSummary(snapshot), nil
}

// FormatSummary renders a snapshot as a short human readable text.
func FormatSummary(snapshot models.BalanceSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Feed balance (%s): %.0f kg needed per year.", snapshot.Date.Format(dateLayout), snapshot.NeededStock.TotalKg)

	if len(snapshot.Balance.Foods) == 0 {
		b.WriteString(" No needs or production plans recorded yet.")
		return b.String()
	}

	for _, f := range snapshot.Balance.Foods {
		fmt.Fprintf(&b, "\n- %s: %s, needed %.0f kg, planned %.0f kg, coverage %s",
			f.FoodType, f.Status, f.NeededKg, f.PlannedNetKg, formatCoverage(f.CoveragePercent))
		if f.Status == models.StatusDeficit {
			fmt.Fprintf(&b, ", missing %.0f kg", -f.DeficitOrSurplusKg)
		}
	}

	return b.String()
}

// BalanceRows flattens a snapshot into one spreadsheet row per food type:
// date, food type, needed kg, planned net kg, coverage %, difference kg,
// status, plan count.
func BalanceRows(snapshot models.BalanceSnapshot) [][]interface{} {
	date := snapshot.Date.Format(dateLayout)
	rows := make([][]interface{}, 0, len(snapshot.Balance.Foods))

	for _, f := range snapshot.Balance.Foods {
		var coverage interface{} = ""
		if f.CoveragePercent != nil {
			coverage = round2(*f.CoveragePercent)
		}
		rows = append(rows, []interface{}{
			date,
			string(f.FoodType),
			round2(f.NeededKg),
			round2(f.PlannedNetKg),
			coverage,
			round2(f.DeficitOrSurplusKg),
			string(f.Status),
			f.Plans,
		})
	}

	return rows
}

func formatCoverage(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

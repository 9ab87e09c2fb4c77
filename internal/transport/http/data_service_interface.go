package http

import (
	"context"
	"io"

	"trendpulse/internal/exporter"
	"trendpulse/internal/services"
	"trendpulse/pkg/contracts/domain"
	"trendpulse/pkg/contracts/events"
)

// DataService is what the data handler needs from the service layer.
type DataService interface {
	DefaultQuery() (services.Query, error)
	Fingerprint(ctx context.Context) (string, error)
	Keywords(ctx context.Context) (*services.KeywordList, error)
	Table(ctx context.Context, category domain.Category, q services.Query) (*services.TableView, error)
	Dashboard(ctx context.Context, q services.Query) (*domain.DashboardView, error)
	Diagnostics(ctx context.Context) (*services.DiagnosticsReport, error)
	Reload(ctx context.Context) (*events.DatasetReloaded, error)
	Export(ctx context.Context, category domain.Category, format exporter.Format, q services.Query, w io.Writer) error
}

// Ensure the concrete service satisfies the handler contract.
var _ DataService = (*services.DataService)(nil)

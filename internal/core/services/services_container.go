package services

import (
	"log/slog"

	"github.com/shopspring/decimal"

	portsrepo "github.com/Joshua-Peter7/reconsys/internal/core/ports/repositories"
	portssvc "github.com/Joshua-Peter7/reconsys/internal/core/ports/services"
	"github.com/Joshua-Peter7/reconsys/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, rowSource portssvc.RowSource, logger *slog.Logger) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	defaultVariance := decimal.NewFromFloat(cfg.DefaultVariancePercent)

	// Ingestion and manual re-runs share one lease per job
	guard := newJobGuard()

	container.Reconciliation = NewReconciliationService(
		repos.UploadJobRepo,
		repos.RecordRepo,
		repos.ResultRepo,
		repos.AuditLogRepo,
		guard,
		defaultVariance,
	)
	container.Upload = NewUploadService(
		repos.UploadJobRepo,
		repos.RecordRepo,
		container.Reconciliation,
		rowSource,
		guard,
		cfg.MaxUploadRows,
		defaultVariance,
		logger,
	)
	container.Correction = NewCorrectionService(repos.UploadJobRepo, repos.RecordRepo, repos.ResultRepo)
	container.Audit = NewAuditService(repos.UploadJobRepo, repos.RecordRepo, repos.AuditLogRepo)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.UploadSvcFacade         = (*uploadService)(nil)
	_ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)
	_ portssvc.CorrectionSvcFacade     = (*correctionService)(nil)
	_ portssvc.AuditSvcFacade          = (*auditService)(nil)
)

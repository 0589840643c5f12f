package services

// ServiceContainer holds all service interfaces needed by the handlers.
type ServiceContainer struct {
	Upload         UploadSvcFacade
	Reconciliation ReconciliationSvcFacade
	Correction     CorrectionSvcFacade
	Audit          AuditSvcFacade
}

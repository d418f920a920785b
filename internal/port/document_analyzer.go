package port

import (
	"context"

	"docextract/internal/domain"
)

// JobStatusOutput is the state of an analysis job as reported by the service.
type JobStatusOutput struct {
	Status        domain.JobStatus
	StatusMessage string
}

// DocumentAnalyzer abstracts the remote document-analysis service.
// An empty feature set requests plain text detection only.
type DocumentAnalyzer interface {
	// AnalyzeDocument analyzes an inline single-page document in one call.
	AnalyzeDocument(ctx context.Context, document []byte, features []domain.FeatureType) ([]domain.Block, error)
	// StartAnalysis starts an asynchronous job against a stored document.
	StartAnalysis(ctx context.Context, loc domain.DocumentLocation, features []domain.FeatureType) (domain.JobRef, error)
	GetJobStatus(ctx context.Context, job domain.JobRef) (*JobStatusOutput, error)
	// GetJobPage fetches one page of results. An empty nextToken requests the first page.
	GetJobPage(ctx context.Context, job domain.JobRef, nextToken string) (*domain.BlockPage, error)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docextract/internal/domain"
	"docextract/internal/port"
)

// MockDocumentAnalyzer is a mock implementation of port.DocumentAnalyzer.
type MockDocumentAnalyzer struct {
	mock.Mock
}

func (m *MockDocumentAnalyzer) AnalyzeDocument(ctx context.Context, document []byte, features []domain.FeatureType) ([]domain.Block, error) {
	args := m.Called(ctx, document, features)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Block), args.Error(1)
}

func (m *MockDocumentAnalyzer) StartAnalysis(ctx context.Context, loc domain.DocumentLocation, features []domain.FeatureType) (domain.JobRef, error) {
	args := m.Called(ctx, loc, features)
	return args.Get(0).(domain.JobRef), args.Error(1)
}

func (m *MockDocumentAnalyzer) GetJobStatus(ctx context.Context, job domain.JobRef) (*port.JobStatusOutput, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.JobStatusOutput), args.Error(1)
}

func (m *MockDocumentAnalyzer) GetJobPage(ctx context.Context, job domain.JobRef, nextToken string) (*domain.BlockPage, error) {
	args := m.Called(ctx, job, nextToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlockPage), args.Error(1)
}

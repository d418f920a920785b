package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docextract/internal/domain"
	"docextract/internal/service"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) ExtractSync(ctx context.Context, payload string) (*domain.ExtractedResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedResult), args.Error(1)
}

func (m *MockExtractionService) Ingest(ctx context.Context, input service.IngestInput) ([]domain.Block, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Block), args.Error(1)
}

func (m *MockExtractionService) ExtractAsync(ctx context.Context, input service.IngestInput) (*domain.AsyncExtraction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AsyncExtraction), args.Error(1)
}

func (m *MockExtractionService) ExtractStored(ctx context.Context, loc domain.DocumentLocation) (*domain.AsyncExtraction, error) {
	args := m.Called(ctx, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AsyncExtraction), args.Error(1)
}

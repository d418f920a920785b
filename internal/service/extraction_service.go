package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"docextract/internal/blockgraph"
	"docextract/internal/domain"
	"docextract/internal/metrics"
	"docextract/internal/port"
)

// ExtractionConfig holds settings shared by the extraction paths.
type ExtractionConfig struct {
	DefaultBucket    string
	KeyPrefix        string
	MaxDocumentBytes int64
	SyncFeatures     []domain.FeatureType
	AsyncFeatures    []domain.FeatureType
}

// IngestInput carries a base64 document and where to store it. Empty Bucket and
// Key fall back to the configured bucket and a generated key.
type IngestInput struct {
	Payload string
	Bucket  string
	Key     string
}

// ExtractionService defines the document extraction contract.
type ExtractionService interface {
	// ExtractSync analyzes a single-page document inline, without storage or polling.
	ExtractSync(ctx context.Context, payload string) (*domain.ExtractedResult, error)
	// Ingest stores the document, runs an asynchronous job on it and returns the raw blocks.
	Ingest(ctx context.Context, input IngestInput) ([]domain.Block, error)
	// ExtractAsync is Ingest followed by block graph parsing.
	ExtractAsync(ctx context.Context, input IngestInput) (*domain.AsyncExtraction, error)
	// ExtractStored analyzes a document the caller already stored. It is not deleted.
	ExtractStored(ctx context.Context, loc domain.DocumentLocation) (*domain.AsyncExtraction, error)
}

type extractionService struct {
	analyzer port.DocumentAnalyzer
	storage  port.ObjectStorage
	poller   *JobPoller
	parser   *blockgraph.Parser
	cfg      ExtractionConfig
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(
	analyzer port.DocumentAnalyzer,
	storage port.ObjectStorage,
	poller *JobPoller,
	parser *blockgraph.Parser,
	cfg ExtractionConfig,
) ExtractionService {
	return &extractionService{
		analyzer: analyzer,
		storage:  storage,
		poller:   poller,
		parser:   parser,
		cfg:      cfg,
	}
}

func (s *extractionService) ExtractSync(ctx context.Context, payload string) (result *domain.ExtractedResult, err error) {
	defer func() { observe("sync", err) }()

	document, err := s.decode(payload)
	if err != nil {
		return nil, err
	}

	log.Printf("extractionService.ExtractSync: analyzing %d bytes (features=%v)", len(document), s.cfg.SyncFeatures)

	blocks, err := s.analyzer.AnalyzeDocument(ctx, document, s.cfg.SyncFeatures)
	if err != nil {
		log.Printf("extractionService.ExtractSync: analysis failed: %v", err)
		return nil, fmt.Errorf("analyzing document: %w", err)
	}

	return s.parser.Parse(blocks), nil
}

func (s *extractionService) Ingest(ctx context.Context, input IngestInput) (blocks []domain.Block, err error) {
	defer func() { observe("ingest", err) }()

	job, err := s.ingest(ctx, input)
	if err != nil {
		return nil, err
	}
	return job.Blocks(), nil
}

func (s *extractionService) ExtractAsync(ctx context.Context, input IngestInput) (out *domain.AsyncExtraction, err error) {
	defer func() { observe("async", err) }()

	job, err := s.ingest(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.assemble(job), nil
}

func (s *extractionService) ExtractStored(ctx context.Context, loc domain.DocumentLocation) (out *domain.AsyncExtraction, err error) {
	defer func() { observe("stored", err) }()

	if loc.Bucket == "" {
		loc.Bucket = s.cfg.DefaultBucket
	}
	if loc.Bucket == "" || loc.Key == "" {
		return nil, fmt.Errorf("%w: bucket and key are required", domain.ErrInvalidRequest)
	}

	log.Printf("extractionService.ExtractStored: analyzing s3://%s/%s", loc.Bucket, loc.Key)

	job, err := s.poller.Poll(ctx, PollInput{
		Location: loc,
		Features: s.cfg.AsyncFeatures,
	})
	if err != nil {
		return nil, err
	}
	return s.assemble(job), nil
}

func (s *extractionService) ingest(ctx context.Context, input IngestInput) (*domain.Job, error) {
	document, err := s.decode(input.Payload)
	if err != nil {
		return nil, err
	}

	loc := domain.DocumentLocation{Bucket: input.Bucket, Key: input.Key}
	if loc.Bucket == "" {
		loc.Bucket = s.cfg.DefaultBucket
	}
	if loc.Bucket == "" {
		return nil, fmt.Errorf("%w: no bucket given and no default bucket configured", domain.ErrInvalidRequest)
	}
	if loc.Key == "" {
		loc.Key = s.generateKey()
	}

	contentType := http.DetectContentType(document)
	log.Printf("extractionService.Ingest: storing %d bytes (%s) at s3://%s/%s",
		len(document), contentType, loc.Bucket, loc.Key)

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      loc.Bucket,
		Key:         loc.Key,
		Body:        bytes.NewReader(document),
		ContentType: contentType,
		Size:        int64(len(document)),
	})
	if err != nil {
		log.Printf("extractionService.Ingest: upload failed for s3://%s/%s: %v", loc.Bucket, loc.Key, err)
		return nil, fmt.Errorf("storing document: %w", err)
	}

	return s.poller.Poll(ctx, PollInput{
		Location: loc,
		Features: s.cfg.AsyncFeatures,
		Cleanup:  true,
	})
}

func (s *extractionService) assemble(job *domain.Job) *domain.AsyncExtraction {
	blocks := job.Blocks()
	return &domain.AsyncExtraction{
		JobID:  job.Ref.ID,
		Pages:  len(job.Pages),
		Blocks: blocks,
		Result: s.parser.Parse(blocks),
	}
}

func (s *extractionService) generateKey() string {
	prefix := strings.Trim(s.cfg.KeyPrefix, "/")
	if prefix == "" {
		return uuid.New().String()
	}
	return prefix + "/" + uuid.New().String()
}

// decode turns a base64 payload into document bytes. A data URL prefix such as
// "data:application/pdf;base64," is accepted and stripped.
func (s *extractionService) decode(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		if i := strings.Index(payload, ","); i >= 0 {
			payload = payload[i+1:]
		}
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrDecode)
	}

	document, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if len(document) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrDecode)
	}
	if s.cfg.MaxDocumentBytes > 0 && int64(len(document)) > s.cfg.MaxDocumentBytes {
		return nil, fmt.Errorf("%w: document is %d bytes, limit is %d",
			domain.ErrInvalidRequest, len(document), s.cfg.MaxDocumentBytes)
	}
	return document, nil
}

func observe(mode string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.ExtractionRequests.WithLabelValues(mode, outcome).Inc()
}

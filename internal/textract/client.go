// Package textract implements port.DocumentAnalyzer on top of AWS Textract.
package textract

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/aws/smithy-go"
	"golang.org/x/time/rate"

	"docextract/internal/config"
	"docextract/internal/domain"
	"docextract/internal/port"
)

// statusProbeSize is the page size used when only the job status is needed.
const statusProbeSize = 1

// API is the subset of *textract.Client used by the analyzer.
type API interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
	AnalyzeDocument(ctx context.Context, params *textract.AnalyzeDocumentInput, optFns ...func(*textract.Options)) (*textract.AnalyzeDocumentOutput, error)
	StartDocumentTextDetection(ctx context.Context, params *textract.StartDocumentTextDetectionInput, optFns ...func(*textract.Options)) (*textract.StartDocumentTextDetectionOutput, error)
	StartDocumentAnalysis(ctx context.Context, params *textract.StartDocumentAnalysisInput, optFns ...func(*textract.Options)) (*textract.StartDocumentAnalysisOutput, error)
	GetDocumentTextDetection(ctx context.Context, params *textract.GetDocumentTextDetectionInput, optFns ...func(*textract.Options)) (*textract.GetDocumentTextDetectionOutput, error)
	GetDocumentAnalysis(ctx context.Context, params *textract.GetDocumentAnalysisInput, optFns ...func(*textract.Options)) (*textract.GetDocumentAnalysisOutput, error)
}

type analyzer struct {
	api      API
	limiter  *rate.Limiter
	pageSize int32
}

// NewTextractClient creates a Textract-backed DocumentAnalyzer from configuration.
func NewTextractClient(cfg *config.TextractConfig) (port.DocumentAnalyzer, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config for textract: %w", err)
	}

	var txOpts []func(*textract.Options)
	if cfg.Endpoint != "" {
		txOpts = append(txOpts, func(o *textract.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return NewAnalyzer(textract.NewFromConfig(awsCfg, txOpts...), rate.NewLimiter(limit, max(cfg.Burst, 1)), cfg.PageSize), nil
}

// NewAnalyzer wraps an API implementation. A nil limiter disables rate limiting and
// a non-positive pageSize leaves the page size to the service.
func NewAnalyzer(api API, limiter *rate.Limiter, pageSize int32) port.DocumentAnalyzer {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &analyzer{api: api, limiter: limiter, pageSize: pageSize}
}

func (a *analyzer) AnalyzeDocument(ctx context.Context, document []byte, features []domain.FeatureType) ([]domain.Block, error) {
	if err := a.wait(ctx, "analyze document"); err != nil {
		return nil, err
	}

	doc := &types.Document{Bytes: document}
	if len(features) == 0 {
		out, err := a.api.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{Document: doc})
		if err != nil {
			return nil, wrapError("DetectDocumentText", err)
		}
		return toDomainBlocks(out.Blocks), nil
	}

	out, err := a.api.AnalyzeDocument(ctx, &textract.AnalyzeDocumentInput{
		Document:     doc,
		FeatureTypes: toFeatureTypes(features),
	})
	if err != nil {
		return nil, wrapError("AnalyzeDocument", err)
	}
	return toDomainBlocks(out.Blocks), nil
}

func (a *analyzer) StartAnalysis(ctx context.Context, loc domain.DocumentLocation, features []domain.FeatureType) (domain.JobRef, error) {
	if err := a.wait(ctx, "start analysis"); err != nil {
		return domain.JobRef{}, err
	}

	if len(features) == 0 {
		out, err := a.api.StartDocumentTextDetection(ctx, &textract.StartDocumentTextDetectionInput{
			DocumentLocation: toS3Location(loc),
		})
		if err != nil {
			return domain.JobRef{}, wrapError("StartDocumentTextDetection", err)
		}
		return domain.JobRef{ID: aws.ToString(out.JobId), TextDetection: true}, nil
	}

	out, err := a.api.StartDocumentAnalysis(ctx, &textract.StartDocumentAnalysisInput{
		DocumentLocation: toS3Location(loc),
		FeatureTypes:     toFeatureTypes(features),
	})
	if err != nil {
		return domain.JobRef{}, wrapError("StartDocumentAnalysis", err)
	}
	return domain.JobRef{ID: aws.ToString(out.JobId)}, nil
}

// GetJobStatus fetches a minimal result page and reports only its status.
func (a *analyzer) GetJobStatus(ctx context.Context, job domain.JobRef) (*port.JobStatusOutput, error) {
	res, err := a.get(ctx, job, "", statusProbeSize)
	if err != nil {
		return nil, err
	}
	return &port.JobStatusOutput{
		Status:        res.status,
		StatusMessage: res.statusMessage,
	}, nil
}

func (a *analyzer) GetJobPage(ctx context.Context, job domain.JobRef, nextToken string) (*domain.BlockPage, error) {
	res, err := a.get(ctx, job, nextToken, a.pageSize)
	if err != nil {
		return nil, err
	}
	return &domain.BlockPage{
		Blocks:    toDomainBlocks(res.blocks),
		NextToken: res.nextToken,
	}, nil
}

type getResult struct {
	status        domain.JobStatus
	statusMessage string
	blocks        []types.Block
	nextToken     string
}

func (a *analyzer) get(ctx context.Context, job domain.JobRef, nextToken string, pageSize int32) (*getResult, error) {
	if err := a.wait(ctx, "get results"); err != nil {
		return nil, err
	}

	var maxResults *int32
	if pageSize > 0 {
		maxResults = aws.Int32(pageSize)
	}
	var next *string
	if nextToken != "" {
		next = aws.String(nextToken)
	}

	if job.TextDetection {
		out, err := a.api.GetDocumentTextDetection(ctx, &textract.GetDocumentTextDetectionInput{
			JobId:      aws.String(job.ID),
			MaxResults: maxResults,
			NextToken:  next,
		})
		if err != nil {
			return nil, wrapError("GetDocumentTextDetection", err)
		}
		return &getResult{
			status:        domain.JobStatus(out.JobStatus),
			statusMessage: aws.ToString(out.StatusMessage),
			blocks:        out.Blocks,
			nextToken:     aws.ToString(out.NextToken),
		}, nil
	}

	out, err := a.api.GetDocumentAnalysis(ctx, &textract.GetDocumentAnalysisInput{
		JobId:      aws.String(job.ID),
		MaxResults: maxResults,
		NextToken:  next,
	})
	if err != nil {
		return nil, wrapError("GetDocumentAnalysis", err)
	}
	return &getResult{
		status:        domain.JobStatus(out.JobStatus),
		statusMessage: aws.ToString(out.StatusMessage),
		blocks:        out.Blocks,
		nextToken:     aws.ToString(out.NextToken),
	}, nil
}

func (a *analyzer) wait(ctx context.Context, op string) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("textract %s: waiting for rate limiter: %w", op, err)
	}
	return nil
}

// wrapError tags SDK failures with domain.ErrService, keeping the service error code
// in the message and the original error in the chain.
func wrapError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("textract %s (%s): %w: %w", op, apiErr.ErrorCode(), domain.ErrService, err)
	}
	return fmt.Errorf("textract %s: %w: %w", op, domain.ErrService, err)
}

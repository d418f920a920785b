// Command extract runs a single document extraction from the command line and
// prints the outcome as {"statusCode": ..., "body": ...}.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"docextract/internal/blockgraph"
	"docextract/internal/config"
	"docextract/internal/domain"
	"docextract/internal/export"
	"docextract/internal/service"
	s3storage "docextract/internal/storage/s3"
	"docextract/internal/textract"
)

const (
	modeSync   = "sync"
	modeAsync  = "async"
	modeStored = "stored"
)

type options struct {
	file   string
	event  string
	mode   string
	bucket string
	key    string
	format string
	out    string
}

// envelope mirrors the response shape of a function-style handler.
type envelope struct {
	StatusCode int         `json:"statusCode"`
	Body       interface{} `json:"body"`
}

// storedEvent is the payload accepted by -event for stored extractions.
type storedEvent struct {
	Bucket      string `json:"bucket"`
	DocumentKey string `json:"document_key"`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: loading .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, newService))
}

func newService() (service.ExtractionService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	formText, err := blockgraph.ParseFormTextMode(cfg.Textract.FormTextMode)
	if err != nil {
		return nil, fmt.Errorf("invalid textract config: %w", err)
	}

	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	analyzer, err := textract.NewTextractClient(&cfg.Textract)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Textract client: %w", err)
	}

	poller := service.NewJobPoller(analyzer, s3Client, service.PollConfig{
		Interval:      cfg.Poller.Interval,
		MaxInterval:   cfg.Poller.MaxInterval,
		BackoffFactor: cfg.Poller.BackoffFactor,
		MaxWait:       cfg.Poller.MaxWait,
	})
	return service.NewExtractionService(analyzer, s3Client, poller, blockgraph.NewParser(formText), service.ExtractionConfig{
		DefaultBucket:    cfg.S3.Bucket,
		KeyPrefix:        cfg.S3.KeyPrefix,
		MaxDocumentBytes: cfg.S3.MaxFileSizeBytes(),
		SyncFeatures:     cfg.Textract.SyncFeatureTypes(),
		AsyncFeatures:    cfg.Textract.AsyncFeatureTypes(),
	}), nil
}

// run executes one extraction and returns the process exit code.
func run(ctx context.Context, args []string, stdout io.Writer, build func() (service.ExtractionService, error)) int {
	opts, err := parseFlags(args)
	if err != nil {
		return fail(stdout, err)
	}
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return fail(stdout, err)
	}

	svc, err := build()
	if err != nil {
		return fail(stdout, err)
	}

	result, body, err := extract(ctx, svc, opts)
	if err != nil {
		return fail(stdout, err)
	}

	if format != export.FormatJSON {
		if err := writeExport(stdout, opts.out, format, result); err != nil {
			return fail(stdout, err)
		}
		return 0
	}

	if err := json.NewEncoder(stdout).Encode(envelope{StatusCode: 200, Body: body}); err != nil {
		log.Printf("extract: writing output: %v", err)
		return 1
	}
	return 0
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.file, "file", "", "Path of the document to analyze (sync and async modes)")
	fs.StringVar(&opts.event, "event", "", `Path of a JSON event {"bucket","document_key"} (stored mode)`)
	fs.StringVar(&opts.mode, "mode", modeSync, "Extraction mode: sync, async or stored")
	fs.StringVar(&opts.bucket, "bucket", "", "Bucket to stage or read the document")
	fs.StringVar(&opts.key, "key", "", "Object key to stage or read the document")
	fs.StringVar(&opts.format, "format", "json", "Output format: json, csv or xlsx")
	fs.StringVar(&opts.out, "out", "", "Write csv/xlsx output to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	if opts.event != "" {
		opts.mode = modeStored
		if err := readEvent(opts); err != nil {
			return nil, err
		}
	}

	switch opts.mode {
	case modeSync, modeAsync:
		if opts.file == "" {
			return nil, fmt.Errorf("%w: -file is required in %s mode", domain.ErrInvalidRequest, opts.mode)
		}
	case modeStored:
		if opts.key == "" {
			return nil, fmt.Errorf("%w: -key is required in stored mode", domain.ErrInvalidRequest)
		}
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidRequest, opts.mode)
	}
	return opts, nil
}

func readEvent(opts *options) error {
	data, err := os.ReadFile(opts.event)
	if err != nil {
		return fmt.Errorf("reading event: %w", err)
	}
	var ev storedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("%w: parsing event: %v", domain.ErrInvalidRequest, err)
	}
	if opts.bucket == "" {
		opts.bucket = ev.Bucket
	}
	if opts.key == "" {
		opts.key = ev.DocumentKey
	}
	return nil
}

// extract returns the parsed result for file exports and the value printed in the
// JSON envelope body.
func extract(ctx context.Context, svc service.ExtractionService, opts *options) (*domain.ExtractedResult, interface{}, error) {
	switch opts.mode {
	case modeStored:
		out, err := svc.ExtractStored(ctx, domain.DocumentLocation{Bucket: opts.bucket, Key: opts.key})
		if err != nil {
			return nil, nil, err
		}
		return out.Result, out, nil
	case modeAsync:
		payload, err := readDocument(opts.file)
		if err != nil {
			return nil, nil, err
		}
		out, err := svc.ExtractAsync(ctx, service.IngestInput{Payload: payload, Bucket: opts.bucket, Key: opts.key})
		if err != nil {
			return nil, nil, err
		}
		return out.Result, out, nil
	default:
		payload, err := readDocument(opts.file)
		if err != nil {
			return nil, nil, err
		}
		result, err := svc.ExtractSync(ctx, payload)
		if err != nil {
			return nil, nil, err
		}
		return result, result, nil
	}
}

func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func writeExport(stdout io.Writer, path string, format export.Format, result *domain.ExtractedResult) error {
	if path == "" {
		return export.Write(stdout, format, result)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := export.Write(f, format, result); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func fail(stdout io.Writer, err error) int {
	if encErr := json.NewEncoder(stdout).Encode(envelope{StatusCode: 500, Body: err.Error()}); encErr != nil {
		log.Printf("extract: writing output: %v", encErr)
	}
	return 1
}

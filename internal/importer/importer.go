package importer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the number of SAVE_PRODUCT requests in flight
const DefaultConcurrency = 4

// Saver stores one product
type Saver interface {
	SaveProduct(ctx context.Context, request interfaces.SaveProductRequest) (*interfaces.SaveProductResponse, error)
}

// Step names reported while importing
const (
	StepParsing = "parsing"
	StepSaving  = "saving"
	StepDone    = "done"
)

// Progress is reported after each parsed file and each saved product
type Progress struct {
	Step    string
	Done    int
	Total   int
	Message string
}

// Result summarises an import
type Result struct {
	Files   int
	ItemIDs []string
}

// Options configures an Importer
type Options struct {
	Concurrency int
	Logger      *logging.Logger
	Now         func() time.Time
}

// Importer parses files and saves their products
type Importer struct {
	saver       Saver
	concurrency int
	logger      *logging.Logger
	now         func() time.Time
}

// New creates an importer writing through saver
func New(saver Saver, opts Options) *Importer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetImportLogger()
	}
	return &Importer{
		saver:       saver,
		concurrency: opts.Concurrency,
		logger:      logger,
		now:         opts.Now,
	}
}

// Import parses every file and then saves all products. Parsing fails as a
// whole on the first bad file, before anything is saved. Saving stops at the
// first failed request; products already saved stay saved.
func (im *Importer) Import(ctx context.Context, paths []string, report func(Progress)) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files selected")
	}
	if report == nil {
		report = func(Progress) {}
	}

	createdAt := im.now().UTC().Format(time.RFC3339)

	var products []interfaces.SaveProductRequest
	for i, path := range paths {
		parsed, err := ParseFile(path)
		if err != nil {
			im.logger.Error("Failed to parse product file", "path", path, "error", err.Error())
			return nil, err
		}
		for j := range parsed {
			fillDefaults(&parsed[j], createdAt)
		}
		products = append(products, parsed...)
		report(Progress{Step: StepParsing, Done: i + 1, Total: len(paths), Message: fmt.Sprintf("Parsed %s (%d products)", path, len(parsed))})
	}

	im.logger.Info("Saving imported products", "files", len(paths), "products", len(products))

	result := &Result{Files: len(paths), ItemIDs: make([]string, len(products))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)

	var (
		saved    int32
		reportMu sync.Mutex
	)
	for i := range products {
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			resp, err := im.saver.SaveProduct(gctx, products[i])
			if err != nil {
				return fmt.Errorf("failed to save %q: %w", products[i].ProductName, err)
			}
			result.ItemIDs[i] = resp.ItemID

			done := int(atomic.AddInt32(&saved, 1))
			reportMu.Lock()
			report(Progress{Step: StepSaving, Done: done, Total: len(products), Message: fmt.Sprintf("Saved %s", products[i].ProductName)})
			reportMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		im.logger.Error("Import failed", "saved", atomic.LoadInt32(&saved), "error", err.Error())
		return result, err
	}

	report(Progress{Step: StepDone, Done: len(products), Total: len(products), Message: "Catalog ready"})
	im.logger.Info("Import complete", "products", len(products))
	return result, nil
}

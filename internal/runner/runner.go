// Package runner executes one full pass over the document tree:
// load mapping, scan, reconcile, stamp unmarked documents, persist.
package runner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/shirushi/internal/config"
	"github.com/hyperjump/shirushi/internal/ident"
	"github.com/hyperjump/shirushi/internal/models"
	"github.com/hyperjump/shirushi/internal/reconcile"
	"github.com/hyperjump/shirushi/internal/scanner"
	"github.com/hyperjump/shirushi/internal/stamp"
	"github.com/hyperjump/shirushi/internal/store"
)

// Runner runs stamping passes for one configuration.
type Runner struct {
	cfg    *config.Config
	logger *zap.Logger
}

// New creates a runner. A nil logger is replaced with a no-op logger.
func New(cfg *config.Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run executes one pass and returns its report. With checkOnly set, the pass
// works on a copy of the mapping and never touches disk: no markers are
// written and the store is not saved, but the same fatal conditions apply and
// unmarked documents are still counted.
//
// Fail-fast: the first fatal error (duplicate identifier, missing identifier,
// generator exhaustion) aborts the pass, and the store is only written after
// every document has been processed successfully.
func (r *Runner) Run(ctx context.Context, checkOnly bool) (*models.RunReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	runID := uuid.NewString()
	log := r.logger.With(zap.String("run_id", runID))

	mappingFile := r.cfg.MappingFile()
	mapping, found, err := store.Load(mappingFile)
	if err != nil {
		return nil, err
	}
	if !found {
		log.Warn("mapping file missing, starting with an empty mapping",
			zap.String("path", mappingFile))
	}

	scanOpts := []scanner.Option{scanner.WithSkip(r.cfg.MappingPath)}
	if r.cfg.Debug {
		scanOpts = append(scanOpts, scanner.WithLogger(log))
	}
	sc := scanner.New(r.cfg.Root, r.cfg.Extensions, r.cfg.IgnoreDirs, scanOpts...)
	scan, err := sc.Scan()
	if err != nil {
		return nil, err
	}

	work := mapping
	if checkOnly {
		work = mapping.Clone()
	}
	events, err := reconcile.Reconcile(work, scan, log)
	if err != nil {
		return nil, err
	}

	if !checkOnly && len(scan.Unmarked) > 0 {
		st := stamp.New(r.cfg.Root, ident.NewGenerator(r.cfg.IDLength), stamp.WithLogger(log))
		stamped, err := st.StampAll(scan.Unmarked, work)
		if err != nil {
			return nil, err
		}
		events = append(events, stamped...)
	}

	unmarked := 0
	if checkOnly {
		unmarked = len(scan.Unmarked)
	}

	if !checkOnly {
		if err := store.Save(mappingFile, work); err != nil {
			return nil, err
		}
	}

	report := &models.RunReport{
		RunID:      runID,
		Root:       r.cfg.Root,
		CheckOnly:  checkOnly,
		Scanned:    scan.Scanned,
		Tracked:    len(work),
		Unmarked:   unmarked,
		Events:     events,
		DurationMS: time.Since(start).Milliseconds(),
	}
	log.Info("pass complete",
		zap.Bool("check_only", checkOnly),
		zap.Int("scanned", report.Scanned),
		zap.Int("tracked", report.Tracked),
		zap.Int("unmarked", report.Unmarked),
		zap.Int("events", len(report.Events)),
	)
	return report, nil
}

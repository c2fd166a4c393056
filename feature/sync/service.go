package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"esl-middleware/core/dbf"
	"esl-middleware/core/detect"
	"esl-middleware/core/logger"
	"esl-middleware/core/record"
	"esl-middleware/core/state"
	"esl-middleware/core/storage"
	"esl-middleware/core/transform"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCycleInProgress is returned when a cycle is requested while another
// one is still running.
var ErrCycleInProgress = errors.New("synchronization cycle already in progress")

// Service orchestrates synchronization cycles: discover tables, read
// snapshots, detect changes, publish CSV files. At most one cycle runs at
// a time; overlapping requests fail fast with ErrCycleInProgress.
type Service struct {
	cfg         Config
	store       *state.Store
	detector    *detect.Detector
	transformer *transform.Transformer
	writer      *transform.Writer
	uploader    *storage.Uploader
	logger      *zap.Logger

	running atomic.Bool

	statsMu sync.Mutex
	stats   Stats

	// Seams for tests.
	findTables func(dir string) ([]dbf.Table, error)
	readTable  func(t dbf.Table) ([]*record.Record, error)
	now        func() time.Time
}

// NewService wires the cycle orchestrator. uploader may be nil when CSV
// uploading is disabled.
func NewService(cfg Config, store *state.Store, uploader *storage.Uploader, log *zap.Logger) *Service {
	return &Service{
		cfg:         cfg,
		store:       store,
		detector:    detect.NewDetector(store, cfg.Excluded(), log),
		transformer: transform.NewTransformer(log),
		writer:      transform.NewWriter(cfg.OutputDir, log),
		uploader:    uploader,
		logger:      log,
		stats:       Stats{StartedAt: time.Now()},
		findTables:  dbf.FindTables,
		readTable:   dbf.Read,
		now:         time.Now,
	}
}

// Running reports whether a cycle is currently in flight.
func (s *Service) Running() bool {
	return s.running.Load()
}

// Stats returns a copy of the lifetime counters.
func (s *Service) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

// StateSnapshot exposes the per-source tracking summary for the status
// surface.
func (s *Service) StateSnapshot() map[string]state.SourceInfo {
	return s.store.Snapshot()
}

// RunCycle executes one full synchronization cycle over every table in the
// input directory. A failing table is recorded in the summary and skipped;
// only a failure to list the input directory fails the cycle as a whole.
func (s *Service) RunCycle(ctx context.Context) (*CycleSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrCycleInProgress
	}
	defer s.running.Store(false)

	started := s.now()
	summary := &CycleSummary{
		CycleID:   uuid.NewString(),
		StartedAt: started,
	}
	log := s.logger.With(zap.String("cycle_id", summary.CycleID))
	log.Info("Cycle started", zap.String("input_dir", s.cfg.InputDir))

	tables, err := s.findTables(s.cfg.InputDir)
	if err != nil {
		err = fmt.Errorf("discover tables: %w", err)
		s.recordCycle(summary, err)
		return nil, err
	}
	if len(tables) == 0 {
		log.Warn("No table files found", zap.String("input_dir", s.cfg.InputDir))
	}

	for _, t := range tables {
		res := s.processTable(ctx, log, t)
		summary.Sources = append(summary.Sources, res)
		summary.New += res.New
		summary.Updated += res.Updated
		summary.Deleted += res.Deleted
		summary.Unchanged += res.Unchanged
		if res.CSVPath != "" {
			summary.CSVFiles++
		}
		if res.Error != "" {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %s", res.Source, res.Error))
		}
	}

	summary.Duration = s.now().Sub(started)
	s.recordCycle(summary, nil)

	log.Info("Cycle finished",
		zap.Duration("duration", summary.Duration),
		zap.Int("sources", len(summary.Sources)),
		zap.Int("new", summary.New),
		zap.Int("updated", summary.Updated),
		zap.Int("deleted", summary.Deleted),
		zap.Int("csv_files", summary.CSVFiles),
		zap.Int("errors", len(summary.Errors)))
	return summary, nil
}

func (s *Service) processTable(ctx context.Context, log *zap.Logger, t dbf.Table) SourceResult {
	kind := transform.DetectKind(t.Name)
	res := SourceResult{Source: t.Name, Kind: string(kind)}
	l := logger.WithSource(log, t.Name)

	records, err := s.readWithRetry(ctx, t)
	if err != nil {
		l.Error("Snapshot read failed", zap.Error(err))
		res.Error = err.Error()
		return res
	}
	res.Records = len(records)

	opts := detect.Options{
		KeyField:       s.cfg.StockKeyField,
		TrackSecondary: kind == transform.KindTransaction,
	}
	if kind == transform.KindTransaction {
		opts.KeyField = s.cfg.TransactionKeyField
	}

	cs, err := s.detector.Detect(t.Name, records, opts)
	if err != nil {
		l.Error("Change detection failed", zap.Error(err))
		res.Error = err.Error()
		return res
	}
	res.New = len(cs.New)
	res.Updated = len(cs.Updated)
	res.Deleted = len(cs.Deleted)
	res.Unchanged = len(cs.Unchanged)
	res.Skipped = cs.Skipped

	rows := s.transformer.TransformBatch(cs.SyncRecords(), kind)
	if len(rows) == 0 {
		return res
	}

	path, err := s.writer.Write(rows, transform.Filename(t.Name, s.now()))
	if err != nil {
		l.Error("CSV write failed", zap.Error(err))
		res.Error = err.Error()
		return res
	}
	res.CSVPath = path

	if s.uploader != nil {
		// Upload is a secondary delivery channel; its failure must not
		// fail the pass after the CSV is already published locally.
		if err := s.uploader.UploadFile(ctx, path); err != nil {
			l.Warn("CSV upload failed", zap.Error(err))
		}
	}
	return res
}

// readWithRetry reads a snapshot, retrying on failure since the POS may
// still be writing the file when the cycle picks it up.
func (s *Service) readWithRetry(ctx context.Context, t dbf.Table) ([]*record.Record, error) {
	attempts := s.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	delay := time.Duration(s.cfg.RetryDelaySeconds) * time.Second

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		records, err := s.readTable(t)
		if err == nil {
			return records, nil
		}
		lastErr = err
		s.logger.Warn("Snapshot read attempt failed",
			zap.String("source", t.Name),
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", attempts),
			zap.Error(err))
	}
	return nil, lastErr
}

func (s *Service) recordCycle(summary *CycleSummary, fatal error) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	s.stats.TotalCycles++
	s.stats.LastCycleAt = time.Now()

	switch {
	case fatal != nil:
		s.stats.FailedCycles++
		s.stats.LastError = fatal.Error()
	case summary.HasErrors():
		s.stats.FailedCycles++
		s.stats.LastError = summary.Errors[len(summary.Errors)-1]
	default:
		s.stats.SuccessfulCycles++
	}

	for _, src := range summary.Sources {
		s.stats.RecordsProcessed += int64(src.Records)
	}
	s.stats.CSVFilesCreated += int64(summary.CSVFiles)
}

// WaitIdle blocks until no cycle is in flight or the timeout passes,
// reporting whether the service went idle. Used for graceful shutdown.
func (s *Service) WaitIdle(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !s.running.Load() {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return !s.running.Load()
}

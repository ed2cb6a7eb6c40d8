package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/datasweeper/internal/logging"
	"github.com/JonMunkholm/datasweeper/internal/table"
	"github.com/google/uuid"
)

var (
	// ErrFileNotFound is returned for an id that expired, was discarded or never existed.
	ErrFileNotFound = errors.New("file not found")
	// ErrTooManyFiles is returned for files past the per-upload limit.
	ErrTooManyFiles = errors.New("too many files in one upload")
	// ErrNoFile is returned when an upload carries no files.
	ErrNoFile = errors.New("no file provided")
)

// Config holds the service limits.
type Config struct {
	SessionTTL    time.Duration
	PreviewRows   int
	MaxFiles      int
	MaxConcurrent int
	MaxWait       time.Duration
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		SessionTTL:    30 * time.Minute,
		PreviewRows:   5,
		MaxFiles:      20,
		MaxConcurrent: DefaultMaxConcurrent,
		MaxWait:       DefaultMaxWaitTime,
	}
}

// Service keeps uploaded tables for the lifetime of an upload session and
// runs the conversion pipeline on them.
type Service struct {
	cfg      Config
	limiter  *ConversionLimiter
	history  HistoryStore
	recorder Recorder
	now      func() time.Time

	mu    sync.RWMutex
	files map[string]*storedFile
}

type storedFile struct {
	ID         string
	Name       string
	Size       int
	Format     table.Format
	Table      *table.Table
	Notice     string
	UploadedAt time.Time
	ExpiresAt  time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithHistory sets the conversion history store. The default keeps history in memory.
func WithHistory(h HistoryStore) Option {
	return func(s *Service) { s.history = h }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. Zero fields of cfg take their defaults.
func NewService(cfg Config, opts ...Option) *Service {
	def := DefaultConfig()
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = def.SessionTTL
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = def.PreviewRows
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = def.MaxFiles
	}

	s := &Service{
		cfg:      cfg,
		limiter:  NewConversionLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		recorder: nopRecorder{},
		now:      time.Now,
		files:    make(map[string]*storedFile),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = NewMemoryHistory(DefaultHistorySize)
	}
	return s
}

// Limiter returns the conversion limiter for status reporting and shutdown.
func (s *Service) Limiter() *ConversionLimiter {
	return s.limiter
}

// PreviewRows returns the configured head size.
func (s *Service) PreviewRows() int {
	return s.cfg.PreviewRows
}

// Upload parses and stores each file independently, in order. A file that
// fails gets a summary with the error set and the batch continues.
func (s *Service) Upload(ctx context.Context, files []UploadFile) []FileSummary {
	logger := logging.FromContext(ctx)
	summaries := make([]FileSummary, 0, len(files))

	for i, f := range files {
		var (
			summary FileSummary
			err     error
		)
		if i >= s.cfg.MaxFiles {
			err = fmt.Errorf("%w: limit is %d", ErrTooManyFiles, s.cfg.MaxFiles)
			s.recorder.FileRejected("limit")
		} else {
			summary, err = s.store(ctx, f)
		}
		if err != nil {
			logger.Warn("file rejected", "file", f.Name, "error", err)
			summary = rejectedSummary(f, err)
		} else {
			logger.Info("file stored",
				"file_id", summary.ID,
				"file", summary.Name,
				"rows", summary.Rows,
				"columns", len(summary.Columns),
			)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func (s *Service) store(ctx context.Context, f UploadFile) (FileSummary, error) {
	name := filepath.Base(f.Name)
	format, err := table.DetectFormat(name)
	if err != nil {
		s.recorder.FileRejected("unsupported")
		return FileSummary{}, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return FileSummary{}, err
	}
	start := time.Now()
	t, err := table.Parse(f.Data, format)
	s.limiter.Release()
	s.recorder.FileParsed(format.String(), time.Since(start), err)
	if err != nil {
		return FileSummary{}, err
	}

	now := s.now()
	sf := &storedFile{
		ID:         uuid.NewString(),
		Name:       name,
		Size:       len(f.Data),
		Format:     format,
		Table:      t,
		UploadedAt: now,
		ExpiresAt:  now.Add(s.cfg.SessionTTL),
	}
	if detected, ok := table.Sniff(f.Data, format); !ok {
		sf.Notice = fmt.Sprintf("content looks like %s rather than %s; parsed by extension", detected, format.MIMEType())
	}

	s.mu.Lock()
	s.files[sf.ID] = sf
	n := len(s.files)
	s.mu.Unlock()
	s.recorder.SessionsActive(n)

	return s.summarize(sf), nil
}

// File returns the summary of a stored file.
func (s *Service) File(id string) (FileSummary, error) {
	sf, err := s.lookup(id)
	if err != nil {
		return FileSummary{}, err
	}
	return s.summarize(sf), nil
}

// Files returns every live file, oldest first.
func (s *Service) Files() []FileSummary {
	now := s.now()
	s.mu.RLock()
	live := make([]*storedFile, 0, len(s.files))
	for _, sf := range s.files {
		if now.Before(sf.ExpiresAt) {
			live = append(live, sf)
		}
	}
	s.mu.RUnlock()

	sort.Slice(live, func(i, j int) bool {
		if live[i].UploadedAt.Equal(live[j].UploadedAt) {
			return live[i].Name < live[j].Name
		}
		return live[i].UploadedAt.Before(live[j].UploadedAt)
	})
	out := make([]FileSummary, len(live))
	for i, sf := range live {
		out[i] = s.summarize(sf)
	}
	return out
}

// Preview runs cleaning, projection and chart extraction on a copy of the
// stored table. The stored table is never modified.
func (s *Service) Preview(ctx context.Context, id string, opts Options) (*PreviewResult, error) {
	sf, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	res, err := table.Prepare(request(sf, opts))
	s.limiter.Release()
	if err != nil {
		return nil, err
	}

	out := &PreviewResult{
		ID:                sf.ID,
		Name:              sf.Name,
		OutputName:        table.OutputName(sf.Name, opts.Target),
		Target:            opts.Target,
		Columns:           columnInfo(res.Table),
		Head:              res.Table.Head(s.cfg.PreviewRows),
		RowsIn:            res.RowsIn,
		RowsOut:           res.Table.NumRows(),
		DuplicatesRemoved: res.DuplicatesRemoved,
		Chart:             res.Chart,
	}
	if sf.Notice != "" {
		out.Notices = append(out.Notices, sf.Notice)
	}
	if res.Fill != nil {
		out.CellsFilled = res.Fill.Cells()
		out.Means = res.Fill.Means
		for _, name := range res.Fill.Empty {
			out.Notices = append(out.Notices, (&table.EmptyNumericColumnError{Column: name}).Error())
		}
	}
	return out, nil
}

// Convert runs the full pipeline on a copy of the stored table and records
// the conversion in history. History failures are logged, never returned.
func (s *Service) Convert(ctx context.Context, id string, opts Options) (*ConvertResult, error) {
	logger := logging.FromContext(ctx)

	sf, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := table.Run(request(sf, opts))
	s.limiter.Release()
	s.recorder.Converted(sf.Format.String(), opts.Target.String(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	requester := RequesterFrom(ctx)
	rec := HistoryRecord{
		ID:                uuid.New(),
		FileName:          sf.Name,
		OutputName:        res.Filename,
		Source:            res.Source.String(),
		Target:            res.Target.String(),
		RowsIn:            res.RowsIn,
		RowsOut:           res.Table.NumRows(),
		DuplicatesRemoved: res.DuplicatesRemoved,
		Columns:           res.Table.ColumnNames(),
		ClientIP:          requester.IP,
		UserAgent:         requester.UserAgent,
		CreatedAt:         s.now().UTC(),
	}
	if res.Fill != nil {
		rec.CellsFilled = res.Fill.Cells()
	}
	if err := s.history.Record(ctx, rec); err != nil {
		logger.Error("record conversion history", "file_id", sf.ID, "error", err)
	}

	logger.Info("file converted",
		"file_id", sf.ID,
		"output", res.Filename,
		"rows_in", rec.RowsIn,
		"rows_out", rec.RowsOut,
		"duplicates_removed", rec.DuplicatesRemoved,
		"cells_filled", rec.CellsFilled,
		"bytes", len(res.Output.Data),
	)

	return &ConvertResult{
		Filename: res.Filename,
		MIMEType: res.Output.MIMEType,
		Data:     res.Output.Data,
		Record:   rec,
	}, nil
}

// Discard removes a stored file.
func (s *Service) Discard(id string) error {
	s.mu.Lock()
	_, ok := s.files[id]
	delete(s.files, id)
	n := len(s.files)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}
	s.recorder.SessionsActive(n)
	return nil
}

// History returns the most recent conversions, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]HistoryRecord, error) {
	return s.history.Recent(ctx, limit)
}

func (s *Service) lookup(id string) (*storedFile, error) {
	s.mu.RLock()
	sf, ok := s.files[id]
	s.mu.RUnlock()
	if !ok || !s.now().Before(sf.ExpiresAt) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}
	return sf, nil
}

func (s *Service) summarize(sf *storedFile) FileSummary {
	return FileSummary{
		ID:         sf.ID,
		Name:       sf.Name,
		Format:     sf.Format.String(),
		SizeKB:     sizeKB(sf.Size),
		Rows:       sf.Table.NumRows(),
		Columns:    columnInfo(sf.Table),
		Head:       sf.Table.Head(s.cfg.PreviewRows),
		Notice:     sf.Notice,
		UploadedAt: sf.UploadedAt,
		ExpiresAt:  sf.ExpiresAt,
	}
}

func rejectedSummary(f UploadFile, err error) FileSummary {
	msg := MapError(err)
	return FileSummary{
		Name:      filepath.Base(f.Name),
		SizeKB:    sizeKB(len(f.Data)),
		Error:     err.Error(),
		ErrorCode: msg.Code,
		Action:    msg.Action,
		Err:       err,
	}
}

func request(sf *storedFile, opts Options) table.Request {
	return table.Request{
		Filename: sf.Name,
		Table:    sf.Table,
		Clean:    opts.Clean,
		Columns:  opts.Columns,
		Target:   opts.Target,
		Chart:    opts.Chart,
	}
}

func sizeKB(n int) float64 {
	return float64(n) / 1024
}

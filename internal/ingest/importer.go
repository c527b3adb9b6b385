package ingest

// importer.go drives the pipeline across one or more uploaded files. Each
// file is processed independently: reads may run concurrently, but results
// are reported in the order files were supplied and one file's failure
// never masks another's success.

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists validated records. Implementations resolve referenced
// identities (employee email) and upsert on natural keys; records whose
// references do not resolve are silently dropped from the insert set.
type Store interface {
	UpsertEmployees(ctx context.Context, recs []EmployeeRecord) ([]EmployeeRecord, error)
	UpsertTrainingAssignments(ctx context.Context, recs []TrainingAssignmentRecord) ([]TrainingAssignmentRecord, error)
	UpsertQMSUpdates(ctx context.Context, recs []QMSUpdateRecord) ([]QMSUpdateRecord, error)
}

// File is one uploaded file handed to the importer.
type File struct {
	Name   string
	Reader io.Reader
}

// ReportSummary aggregates persisted (or locally held) record counts
// across all files of one import.
type ReportSummary struct {
	Files       int `json:"files"`
	Employees   int `json:"employees"`
	Assignments int `json:"assignments"`
	QMSUpdates  int `json:"qms_updates"`
	TotalRows   int `json:"total_rows"`
	ValidRows   int `json:"valid_rows"`
	ErrorRows   int `json:"error_rows"`
}

// Report is the aggregated outcome of a multi-file import. Results keeps
// the order files were supplied, not completion order.
type Report struct {
	ID          string         `json:"id"`
	Results     []*ParseResult `json:"results"`
	Summary     ReportSummary  `json:"summary"`
	Persisted   bool           `json:"persisted"`
	StoreErrors []string       `json:"store_errors,omitempty"`
	Duration    time.Duration  `json:"-"`
}

// Snapshot holds records accumulated in memory when no persistence backend
// is configured.
type Snapshot struct {
	Employees   []EmployeeRecord           `json:"employees"`
	Assignments []TrainingAssignmentRecord `json:"assignments"`
	QMSUpdates  []QMSUpdateRecord          `json:"qms_updates"`
}

// Importer runs the ingestion pipeline. With a nil store, validated records
// accumulate in an in-memory snapshot instead of being persisted.
type Importer struct {
	store Store

	mu       sync.Mutex
	snapshot Snapshot
}

// NewImporter creates an importer. store may be nil.
func NewImporter(store Store) *Importer {
	return &Importer{store: store}
}

// HasStore reports whether a persistence backend is configured.
func (im *Importer) HasStore() bool { return im.store != nil }

// Snapshot returns a copy of the records held in memory. Only meaningful
// when no store is configured.
func (im *Importer) Snapshot() Snapshot {
	im.mu.Lock()
	defer im.mu.Unlock()

	return Snapshot{
		Employees:   append([]EmployeeRecord(nil), im.snapshot.Employees...),
		Assignments: append([]TrainingAssignmentRecord(nil), im.snapshot.Assignments...),
		QMSUpdates:  append([]QMSUpdateRecord(nil), im.snapshot.QMSUpdates...),
	}
}

// ParseFile reads and parses a single uploaded file.
//
// Structural problems (no data rows, headers matching none of the known
// schemas) come back inside the ParseResult; only an unreadable or
// undecodable file returns an error.
func (im *Importer) ParseFile(ctx context.Context, name string, r io.Reader) (*ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	raw, err := decodeRows(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	headers, rows := extractSheet(raw)
	if len(rows) == 0 {
		return &ParseResult{
			FileName: name,
			Type:     TypeUnknown,
			Errors:   []string{"file has no data rows"},
		}, nil
	}

	t := Classify(headers)
	if t == TypeUnknown {
		return &ParseResult{
			FileName: name,
			Type:     TypeUnknown,
			Errors: []string{fmt.Sprintf(
				"unrecognized column headers: %s", strings.Join(headers, ", "))},
			Summary: Summary{TotalRows: len(rows), ErrorRows: len(rows)},
		}, nil
	}

	result := ParseRows(t, headers, rows, 2)
	result.FileName = name
	return result, nil
}

// ImportFiles processes each file independently and aggregates the
// outcomes. Files are read and parsed concurrently; a file that cannot be
// decoded is reported as a failed result in its slot without aborting the
// rest. Validated records are handed to the store (or the in-memory
// snapshot) per file, in the order files were supplied.
func (im *Importer) ImportFiles(ctx context.Context, files []File) *Report {
	start := time.Now()
	report := &Report{
		ID:      uuid.New().String(),
		Results: make([]*ParseResult, len(files)),
	}

	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, f File) {
			defer wg.Done()
			res, err := im.ParseFile(ctx, f.Name, f.Reader)
			if err != nil {
				res = &ParseResult{
					FileName: f.Name,
					Type:     TypeUnknown,
					Errors:   []string{fmt.Sprintf("failed to parse %s: %v", f.Name, err)},
				}
			}
			report.Results[i] = res
		}(i, f)
	}
	wg.Wait()

	for _, res := range report.Results {
		report.Summary.Files++
		report.Summary.TotalRows += res.Summary.TotalRows
		report.Summary.ValidRows += res.Summary.ValidRows
		report.Summary.ErrorRows += res.Summary.ErrorRows
		im.persist(ctx, res, report)
	}

	report.Duration = time.Since(start)
	slog.Info("import completed",
		"report_id", report.ID,
		"files", report.Summary.Files,
		"valid_rows", report.Summary.ValidRows,
		"error_rows", report.Summary.ErrorRows,
		"persisted", report.Persisted,
		"duration", report.Duration,
	)
	return report
}

// persist hands one file's validated records to the store, or appends them
// to the in-memory snapshot when no store is configured. Store failures are
// recorded on the report; they never undo other files' outcomes.
func (im *Importer) persist(ctx context.Context, res *ParseResult, report *Report) {
	if im.store == nil {
		im.mu.Lock()
		im.snapshot.Employees = append(im.snapshot.Employees, res.Employees...)
		im.snapshot.Assignments = append(im.snapshot.Assignments, res.Assignments...)
		im.snapshot.QMSUpdates = append(im.snapshot.QMSUpdates, res.QMSUpdates...)
		im.mu.Unlock()

		report.Summary.Employees += len(res.Employees)
		report.Summary.Assignments += len(res.Assignments)
		report.Summary.QMSUpdates += len(res.QMSUpdates)
		return
	}

	report.Persisted = true

	if len(res.Employees) > 0 {
		inserted, err := im.store.UpsertEmployees(ctx, res.Employees)
		if err != nil {
			report.StoreErrors = append(report.StoreErrors,
				fmt.Sprintf("%s: saving employees: %v", res.FileName, err))
		} else {
			report.Summary.Employees += len(inserted)
		}
	}
	if len(res.Assignments) > 0 {
		inserted, err := im.store.UpsertTrainingAssignments(ctx, res.Assignments)
		if err != nil {
			report.StoreErrors = append(report.StoreErrors,
				fmt.Sprintf("%s: saving training assignments: %v", res.FileName, err))
		} else {
			report.Summary.Assignments += len(inserted)
		}
	}
	if len(res.QMSUpdates) > 0 {
		inserted, err := im.store.UpsertQMSUpdates(ctx, res.QMSUpdates)
		if err != nil {
			report.StoreErrors = append(report.StoreErrors,
				fmt.Sprintf("%s: saving QMS plans: %v", res.FileName, err))
		} else {
			report.Summary.QMSUpdates += len(inserted)
		}
	}
}

package evaluation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/parquet-go/parquet-go"
)

// Record is one evaluation result row as accepted by a sink. The triple
// (ExperimentID, Layer, EvaluationMethod) identifies a run; re-submitting
// the same triple replaces the earlier row.
type Record struct {
	ExperimentID     string        `json:"experiment_id"`
	Layer            string        `json:"layer"`
	EvaluationMethod string        `json:"evaluation_method"`
	Report           Report        `json:"report"`
	Duration         time.Duration `json:"duration"`
}

// MetricsSink receives evaluation results. Implementations must upsert on
// the record key so repeated runs stay idempotent.
type MetricsSink interface {
	Write(ctx context.Context, record Record) error
	Close() error
}

// PostgresSink writes evaluation records to a PostgreSQL table, upserting
// on (experiment_id, layer, evaluation_method).
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink opens a connection pool against dsn and ensures the
// results table exists.
func NewPostgresSink(dsn string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping metrics database: %w", err)
	}

	table := `
		CREATE TABLE IF NOT EXISTS evaluation_results (
			experiment_id VARCHAR(255) NOT NULL,
			layer VARCHAR(64) NOT NULL,
			evaluation_method VARCHAR(64) NOT NULL,
			metrics JSONB NOT NULL,
			duration_ms BIGINT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (experiment_id, layer, evaluation_method)
		)`
	if _, err := db.Exec(table); err != nil {
		return nil, fmt.Errorf("failed to create evaluation_results table: %w", err)
	}

	return &PostgresSink{db: db}, nil
}

// Write implements MetricsSink.
func (s *PostgresSink) Write(ctx context.Context, record Record) error {
	metrics, err := json.Marshal(record.Report)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluation_results (experiment_id, layer, evaluation_method, metrics, duration_ms, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		ON CONFLICT (experiment_id, layer, evaluation_method) DO UPDATE SET
			metrics = EXCLUDED.metrics,
			duration_ms = EXCLUDED.duration_ms,
			updated_at = CURRENT_TIMESTAMP
	`, record.ExperimentID, record.Layer, record.EvaluationMethod, metrics, record.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("metrics upsert failed: %w", err)
	}
	return nil
}

// Close implements MetricsSink.
func (s *PostgresSink) Close() error {
	return s.db.Close()
}

// parquetRecord is the flattened Parquet row layout. Breakdown maps are
// JSON-encoded since Parquet columns stay scalar.
type parquetRecord struct {
	ExperimentID     string    `parquet:"experiment_id"`
	Layer            string    `parquet:"layer"`
	EvaluationMethod string    `parquet:"evaluation_method"`
	Precision        float64   `parquet:"precision"`
	Recall           float64   `parquet:"recall"`
	F1               float64   `parquet:"f1"`
	TruePositives    int       `parquet:"true_positives"`
	FalsePositives   int       `parquet:"false_positives"`
	FalseNegatives   int       `parquet:"false_negatives"`
	Breakdown        string    `parquet:"breakdown"`
	DurationMs       int64     `parquet:"duration_ms"`
	Timestamp        time.Time `parquet:"timestamp"`
}

// ParquetSink buffers evaluation records and writes them as Parquet files
// for offline analysis. Records are deduplicated by key within the
// buffer; Close flushes whatever remains.
type ParquetSink struct {
	outputDir string
	batchSize int

	mu     sync.Mutex
	buffer map[string]parquetRecord
}

// NewParquetSink creates a sink writing files into outputDir.
func NewParquetSink(outputDir string) (*ParquetSink, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create metrics directory: %w", err)
	}
	return &ParquetSink{
		outputDir: outputDir,
		batchSize: 100,
		buffer:    make(map[string]parquetRecord),
	}, nil
}

// Write implements MetricsSink.
func (s *ParquetSink) Write(ctx context.Context, record Record) error {
	breakdown, err := json.Marshal(struct {
		ByStage map[string]Metrics `json:"by_stage"`
		ByType  map[string]Metrics `json:"by_type"`
	}{
		ByStage: record.Report.ByStage,
		ByType:  typeBreakdown(record.Report),
	})
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}

	key := record.ExperimentID + "|" + record.Layer + "|" + record.EvaluationMethod

	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffer[key] = parquetRecord{
		ExperimentID:     record.ExperimentID,
		Layer:            record.Layer,
		EvaluationMethod: record.EvaluationMethod,
		Precision:        record.Report.Overall.Precision,
		Recall:           record.Report.Overall.Recall,
		F1:               record.Report.Overall.F1,
		TruePositives:    record.Report.Overall.TruePositives,
		FalsePositives:   record.Report.Overall.FalsePositives,
		FalseNegatives:   record.Report.Overall.FalseNegatives,
		Breakdown:        string(breakdown),
		DurationMs:       record.Duration.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}

	if len(s.buffer) >= s.batchSize {
		return s.flush()
	}
	return nil
}

// flush writes the current buffer to a new Parquet file. Caller must hold
// the lock.
func (s *ParquetSink) flush() error {
	if len(s.buffer) == 0 {
		return nil
	}

	rows := make([]parquetRecord, 0, len(s.buffer))
	for _, row := range s.buffer {
		rows = append(rows, row)
	}

	filename := fmt.Sprintf("evaluation_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	if err := parquet.WriteFile(filepath.Join(s.outputDir, filename), rows); err != nil {
		return fmt.Errorf("failed to write metrics parquet file: %w", err)
	}

	s.buffer = make(map[string]parquetRecord)
	return nil
}

// Close flushes any buffered records.
func (s *ParquetSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

func typeBreakdown(report Report) map[string]Metrics {
	out := make(map[string]Metrics, len(report.ByType))
	for relType, m := range report.ByType {
		out[string(relType)] = m
	}
	return out
}

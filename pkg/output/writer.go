package output

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Writer outputs JSONL records for translation results.
//
// Implementations must be safe for concurrent use from multiple goroutines.
// Each Write* method emits a complete record as a single line of JSON
// followed by a newline.
type Writer interface {
	// WriteEntry emits one unique translated text.
	WriteEntry(ctx context.Context, entry *EntryRecord) error

	// WriteSummary emits the closing summary record.
	WriteSummary(ctx context.Context, sum *SummaryRecord) error

	// Close flushes any buffered output and releases resources.
	Close() error
}

// JSONLWriter writes records as newline-delimited JSON to an io.Writer.
//
// JSONLWriter is safe for concurrent use. Writes are serialized with a
// mutex so lines never interleave.
type JSONLWriter struct {
	w     io.Writer
	jobID string
	mu    sync.Mutex

	closed bool
}

var _ Writer = (*JSONLWriter)(nil)

// NewJSONLWriter creates a writer emitting records for the given job.
func NewJSONLWriter(w io.Writer, jobID string) *JSONLWriter {
	return &JSONLWriter{w: w, jobID: jobID}
}

// WriteEntry emits one unique translated text.
func (jw *JSONLWriter) WriteEntry(ctx context.Context, entry *EntryRecord) error {
	return jw.writeRecord(ctx, TypeEntry, entry)
}

// WriteSummary emits the closing summary record.
func (jw *JSONLWriter) WriteSummary(ctx context.Context, sum *SummaryRecord) error {
	return jw.writeRecord(ctx, TypeSummary, sum)
}

// Close marks the writer as closed.
//
// If the underlying writer implements io.Closer, it is NOT closed.
// The caller owns the underlying writer.
func (jw *JSONLWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	jw.closed = true
	return nil
}

func (jw *JSONLWriter) writeRecord(ctx context.Context, recordType string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return &WriteError{Op: "marshal_data", Err: err}
	}

	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.closed {
		return ErrWriterClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	record := Record{
		Type:  recordType,
		TS:    time.Now().UTC(),
		JobID: jw.jobID,
		Data:  dataBytes,
	}
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return &WriteError{Op: "marshal_record", Err: err}
	}

	// io.Writer may return n < len(p) with nil error; a short write would
	// truncate a JSONL line and corrupt the export.
	recordBytes = append(recordBytes, '\n')
	if err := writeAll(jw.w, recordBytes); err != nil {
		return &WriteError{Op: "write", Err: err}
	}
	return nil
}

func writeAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

package output

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLWriter_EntryAndSummary(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-1")

	require.NoError(t, w.WriteEntry(context.Background(), &EntryRecord{
		SourceText:  "りんご",
		Translation: "apple",
		Origin:      OriginBatch,
	}))
	require.NoError(t, w.WriteSummary(context.Background(), &SummaryRecord{
		TotalCells:        50,
		TranslatableCells: 35,
		UniqueTexts:       12,
		BatchCount:        3,
		TranslatedCells:   35,
	}))
	require.NoError(t, w.Close())

	scanner := bufio.NewScanner(&buf)

	require.True(t, scanner.Scan())
	var rec Record
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
	assert.Equal(t, TypeEntry, rec.Type)
	assert.Equal(t, "job-1", rec.JobID)
	assert.WithinDuration(t, time.Now(), rec.TS, time.Minute)

	var entry EntryRecord
	require.NoError(t, json.Unmarshal(rec.Data, &entry))
	assert.Equal(t, "りんご", entry.SourceText)
	assert.Equal(t, "apple", entry.Translation)
	assert.Equal(t, OriginBatch, entry.Origin)

	require.True(t, scanner.Scan())
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
	assert.Equal(t, TypeSummary, rec.Type)

	var sum SummaryRecord
	require.NoError(t, json.Unmarshal(rec.Data, &sum))
	assert.Equal(t, 35, sum.TranslatedCells)
	assert.Equal(t, 3, sum.BatchCount)

	assert.False(t, scanner.Scan())
}

func TestJSONLWriter_WriteAfterClose(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-1")
	require.NoError(t, w.Close())

	err := w.WriteEntry(context.Background(), &EntryRecord{SourceText: "x"})
	assert.ErrorIs(t, err, ErrWriterClosed)
	assert.Zero(t, buf.Len())
}

func TestJSONLWriter_CanceledContext(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.WriteEntry(ctx, &EntryRecord{SourceText: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("pipe broken")
}

func TestJSONLWriter_WriteFailure(t *testing.T) {
	w := NewJSONLWriter(failWriter{}, "job-1")

	err := w.WriteEntry(context.Background(), &EntryRecord{SourceText: "x"})
	require.Error(t, err)

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "write", we.Op)
	assert.Contains(t, err.Error(), "pipe broken")
}

// shortWriter writes a single byte per call. Valid io.Writer behavior that
// would corrupt output if the writer ignored partial writes.
type shortWriter struct {
	buf bytes.Buffer
}

func (s *shortWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return s.buf.Write(p[:1])
}

func TestJSONLWriter_ShortWrites(t *testing.T) {
	var sw shortWriter
	w := NewJSONLWriter(&sw, "job-1")

	require.NoError(t, w.WriteEntry(context.Background(), &EntryRecord{
		SourceText:  "banana",
		Translation: "バナナ",
		Origin:      OriginInline,
	}))

	var rec Record
	require.NoError(t, json.Unmarshal(bytes.TrimSuffix(sw.buf.Bytes(), []byte("\n")), &rec))
	assert.Equal(t, TypeEntry, rec.Type)
}

func TestJSONLWriter_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-1")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry := &EntryRecord{
				SourceText:  fmt.Sprintf("text-%d", i),
				Translation: fmt.Sprintf("out-%d", i),
				Origin:      OriginBatch,
			}
			assert.NoError(t, w.WriteEntry(context.Background(), entry))
		}(i)
	}
	wg.Wait()
	require.NoError(t, w.Close())

	scanner := bufio.NewScanner(&buf)
	count := 0
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		count++
	}
	assert.Equal(t, 20, count)
}

// Package dedup builds the unique-text universe for a document and splits it
// into bounded translation batches.
//
// The same text often appears in hundreds of cells (headers, repeated labels,
// boilerplate). Translating each occurrence would multiply inference cost for
// no benefit, so the scanner records where every translatable text lives and
// keeps exactly one copy of each distinct string for the batch stage.
package dedup

import (
	"github.com/vellumworks/sheetglot/pkg/classify"
	"github.com/vellumworks/sheetglot/pkg/workbook"
)

// DefaultBatchSize is the number of unique texts per batch when not configured.
const DefaultBatchSize = 100

// CellRef locates one translatable cell and carries its source text.
//
// Produced once during Prepare and read-only afterward; Merge must resolve
// every CellRef to an output value.
type CellRef struct {
	Sheet      string `json:"sheet"`
	Coordinate string `json:"coord"`
	Text       string `json:"text"`
}

// ScanResult is the outcome of one full pass over a document.
type ScanResult struct {
	// Cells lists every translatable cell in document order.
	Cells []CellRef

	// UniqueTexts holds each distinct translatable text once, in first-seen
	// order. Uniqueness is exact string equality: no trimming, no case folding.
	UniqueTexts []string

	// TotalCells counts every cell visited, translatable or not.
	TotalCells int

	// Sheets counts the sheets visited.
	Sheets int
}

// Scan walks every sheet and cell once, classifying each value.
//
// Identical input and an identical classifier yield an identical result on
// every run, which is what makes re-running Prepare safe.
func Scan(wb workbook.Workbook) ScanResult {
	return ScanFiltered(wb, nil)
}

// ScanFiltered is Scan restricted to sheets accepted by include.
//
// A nil include accepts every sheet. Skipped sheets contribute nothing to the
// result, not even to TotalCells or Sheets, so job stats reflect only the
// sheets actually in scope.
func ScanFiltered(wb workbook.Workbook, include func(string) bool) ScanResult {
	var res ScanResult
	seen := make(map[string]struct{})

	for _, sheet := range wb.Sheets() {
		if include != nil && !include(sheet.Name()) {
			continue
		}
		res.Sheets++
		name := sheet.Name()
		for _, cell := range sheet.Cells() {
			res.TotalCells++
			if !classify.Translatable(cell.Value) {
				continue
			}
			res.Cells = append(res.Cells, CellRef{
				Sheet:      name,
				Coordinate: cell.Coordinate,
				Text:       cell.Value,
			})
			if _, ok := seen[cell.Value]; !ok {
				seen[cell.Value] = struct{}{}
				res.UniqueTexts = append(res.UniqueTexts, cell.Value)
			}
		}
	}

	return res
}

// Batch is one bounded group of unique texts with a sequential id.
type Batch struct {
	ID    int      `json:"batchId"`
	Texts []string `json:"texts"`
}

// Partition splits texts into ordered batches of at most size elements.
//
// The partition is total and disjoint: every text lands in exactly one batch,
// batch ids are sequential from zero, and order within and across batches
// follows the input order.
func Partition(texts []string, size int) []Batch {
	if size <= 0 {
		size = DefaultBatchSize
	}

	var batches []Batch
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		chunk := make([]string, end-start)
		copy(chunk, texts[start:end])
		batches = append(batches, Batch{ID: len(batches), Texts: chunk})
	}
	return batches
}

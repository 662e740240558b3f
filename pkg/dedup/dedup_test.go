package dedup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellumworks/sheetglot/pkg/workbook"
)

func buildWorkbook() *workbook.MemoryWorkbook {
	wb := workbook.NewMemoryWorkbook()

	s1 := wb.AddSheet("Summary")
	s1.SetCell("A1", "売上は前年比で増加しました")
	s1.SetCell("A2", "1234")
	s1.SetCell("A3", "経費の内訳は以下のとおりです")
	s1.SetCell("B1", "売上は前年比で増加しました") // duplicate of A1

	s2 := wb.AddSheet("Detail")
	s2.SetCell("A1", "=SUM(B1:B9)")
	s2.SetCell("A2", "経費の内訳は以下のとおりです") // duplicate across sheets
	s2.SetCell("A3", "https://example.com")
	s2.SetCell("A4", "担当者に確認してください")

	return wb
}

func TestScan(t *testing.T) {
	res := Scan(buildWorkbook())

	assert.Equal(t, 2, res.Sheets)
	assert.Equal(t, 8, res.TotalCells)
	assert.Len(t, res.Cells, 5)

	// First-seen order, exact equality, one entry per distinct text.
	require.Equal(t, []string{
		"売上は前年比で増加しました",
		"経費の内訳は以下のとおりです",
		"担当者に確認してください",
	}, res.UniqueTexts)

	// Every translatable cell's text is a member of the unique set.
	unique := make(map[string]bool)
	for _, text := range res.UniqueTexts {
		unique[text] = true
	}
	for _, cell := range res.Cells {
		assert.True(t, unique[cell.Text], "cell %s!%s text missing from unique set", cell.Sheet, cell.Coordinate)
	}
}

func TestScanFiltered(t *testing.T) {
	res := ScanFiltered(buildWorkbook(), func(name string) bool {
		return name == "Summary"
	})

	assert.Equal(t, 1, res.Sheets)
	assert.Equal(t, 4, res.TotalCells)
	assert.Len(t, res.Cells, 3)
	assert.Equal(t, []string{
		"売上は前年比で増加しました",
		"経費の内訳は以下のとおりです",
	}, res.UniqueTexts)
	for _, cell := range res.Cells {
		assert.Equal(t, "Summary", cell.Sheet)
	}
}

func TestScanFiltered_NilIncludesAll(t *testing.T) {
	assert.Equal(t, Scan(buildWorkbook()), ScanFiltered(buildWorkbook(), nil))
}

func TestScanIsDeterministic(t *testing.T) {
	first := Scan(buildWorkbook())
	for i := 0; i < 5; i++ {
		again := Scan(buildWorkbook())
		assert.Equal(t, first.UniqueTexts, again.UniqueTexts)
		assert.Equal(t, first.Cells, again.Cells)
	}
}

func TestPartition(t *testing.T) {
	texts := make([]string, 12)
	for i := range texts {
		texts[i] = fmt.Sprintf("text-%02d", i)
	}

	batches := Partition(texts, 5)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0].Texts, 5)
	assert.Len(t, batches[1].Texts, 5)
	assert.Len(t, batches[2].Texts, 2)

	// Sequential ids, total and disjoint coverage in input order.
	var flat []string
	for i, b := range batches {
		assert.Equal(t, i, b.ID)
		flat = append(flat, b.Texts...)
	}
	assert.Equal(t, texts, flat)
}

func TestPartitionEdgeCases(t *testing.T) {
	assert.Nil(t, Partition(nil, 5))
	assert.Nil(t, Partition([]string{}, 5))

	one := Partition([]string{"a"}, 5)
	require.Len(t, one, 1)
	assert.Equal(t, []string{"a"}, one[0].Texts)

	exact := Partition([]string{"a", "b", "c"}, 3)
	require.Len(t, exact, 1)

	// Non-positive size falls back to the default.
	many := make([]string, DefaultBatchSize+1)
	for i := range many {
		many[i] = fmt.Sprintf("t%d", i)
	}
	assert.Len(t, Partition(many, 0), 2)
}

package workbook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellumworks/sheetglot/pkg/blobstore"
)

func buildWorkbook() *MemoryWorkbook {
	wb := NewMemoryWorkbook()
	s := wb.AddSheet("Sheet1")
	s.SetCell("A1", "こんにちは")
	s.SetCell("B2", "123")
	wb.AddSheet("Sheet2").SetCell("A1", "さようなら")
	return wb
}

func TestMemoryService_LoadIsIndependentCopy(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	svc.Put("doc", buildWorkbook())

	loaded, err := svc.Load(ctx, "doc")
	require.NoError(t, err)
	loaded.(*MemoryWorkbook).Sheet("Sheet1").SetCell("A1", "mutated")

	again, err := svc.Load(ctx, "doc")
	require.NoError(t, err)
	v, _ := again.(*MemoryWorkbook).Sheet("Sheet1").Value("A1")
	assert.Equal(t, "こんにちは", v)
}

func TestMemoryService_LoadMissing(t *testing.T) {
	svc := NewMemoryService()
	_, err := svc.Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySheet_OrderAndOverwrite(t *testing.T) {
	s := NewMemoryWorkbook().AddSheet("S")
	s.SetCell("A1", "one")
	s.SetCell("B1", "two")
	s.SetCell("A1", "replaced")

	cells := s.Cells()
	require.Len(t, cells, 2)
	assert.Equal(t, "A1", cells[0].Coordinate)
	assert.Equal(t, "replaced", cells[0].Value)
	assert.Equal(t, "B1", cells[1].Coordinate)
}

func TestBlobService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewBlobService(blobstore.NewMemoryStore())

	require.NoError(t, svc.Save(ctx, buildWorkbook(), "docs/a.json"))

	loaded, err := svc.Load(ctx, "docs/a.json")
	require.NoError(t, err)

	sheets := loaded.Sheets()
	require.Len(t, sheets, 2)
	assert.Equal(t, "Sheet1", sheets[0].Name())
	assert.Equal(t, "Sheet2", sheets[1].Name())

	cells := sheets[0].Cells()
	require.Len(t, cells, 2)
	assert.Equal(t, Cell{Coordinate: "A1", Value: "こんにちは"}, cells[0])
}

func TestBlobService_LoadMissing(t *testing.T) {
	svc := NewBlobService(blobstore.NewMemoryStore())
	_, err := svc.Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

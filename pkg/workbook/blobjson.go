package workbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vellumworks/sheetglot/pkg/blobstore"
)

// BlobService stores documents as JSON blobs in a blob store.
//
// The wire form keeps sheets and cells in arrays, so enumeration order
// survives a round trip. Binary spreadsheet formats are handled by richer
// Service implementations; this one covers the pipeline's own needs and
// S3-backed local runs.
type BlobService struct {
	store blobstore.Store
}

var _ Service = (*BlobService)(nil)

// NewBlobService creates a document service over the given store.
func NewBlobService(store blobstore.Store) *BlobService {
	return &BlobService{store: store}
}

type blobDocument struct {
	Sheets []blobSheet `json:"sheets"`
}

type blobSheet struct {
	Name  string     `json:"name"`
	Cells []blobCell `json:"cells"`
}

type blobCell struct {
	Coord string `json:"coord"`
	Value string `json:"value"`
}

// Load fetches and decodes the document stored under key.
func (s *BlobService) Load(ctx context.Context, key string) (Workbook, error) {
	body, err := s.store.Get(ctx, key)
	if err != nil {
		if blobstore.IsNotFound(err) {
			return nil, fmt.Errorf("document %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("load document %s: %w", key, err)
	}

	var doc blobDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", key, err)
	}

	wb := NewMemoryWorkbook()
	for _, sheet := range doc.Sheets {
		dst := wb.AddSheet(sheet.Name)
		for _, cell := range sheet.Cells {
			dst.SetCell(cell.Coord, cell.Value)
		}
	}
	return wb, nil
}

// Save encodes and persists the document under key.
func (s *BlobService) Save(ctx context.Context, wb Workbook, key string) error {
	if wb == nil {
		return errors.New("workbook is nil")
	}

	doc := blobDocument{}
	for _, sheet := range wb.Sheets() {
		bs := blobSheet{Name: sheet.Name()}
		for _, cell := range sheet.Cells() {
			bs.Cells = append(bs.Cells, blobCell{Coord: cell.Coordinate, Value: cell.Value})
		}
		doc.Sheets = append(doc.Sheets, bs)
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", key, err)
	}
	if err := s.store.Put(ctx, key, body); err != nil {
		return fmt.Errorf("save document %s: %w", key, err)
	}
	return nil
}

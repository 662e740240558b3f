package workbook

import (
	"context"
	"sync"
)

// MemoryService is an in-process Service used by tests and local runs.
//
// Load returns a deep copy, so a pipeline mutating its loaded workbook never
// affects the stored original until Save.
type MemoryService struct {
	mu   sync.RWMutex
	docs map[string]*MemoryWorkbook
}

var _ Service = (*MemoryService)(nil)

// NewMemoryService creates an empty in-memory document service.
func NewMemoryService() *MemoryService {
	return &MemoryService{docs: make(map[string]*MemoryWorkbook)}
}

// Put stores a workbook under key without going through Save.
func (s *MemoryService) Put(key string, wb *MemoryWorkbook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = wb.clone()
}

// Load fetches a deep copy of the document stored under key.
func (s *MemoryService) Load(ctx context.Context, key string) (Workbook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wb, ok := s.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return wb.clone(), nil
}

// Save persists the document under key.
func (s *MemoryService) Save(ctx context.Context, wb Workbook, key string) error {
	mwb, ok := wb.(*MemoryWorkbook)
	if !ok {
		// Rebuild from the generic interface.
		mwb = NewMemoryWorkbook()
		for _, sheet := range wb.Sheets() {
			dst := mwb.AddSheet(sheet.Name())
			for _, cell := range sheet.Cells() {
				dst.SetCell(cell.Coordinate, cell.Value)
			}
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = mwb.clone()
	return nil
}

// MemoryWorkbook is the Workbook implementation backing MemoryService.
type MemoryWorkbook struct {
	sheets []*MemorySheet
}

var _ Workbook = (*MemoryWorkbook)(nil)

// NewMemoryWorkbook creates an empty workbook.
func NewMemoryWorkbook() *MemoryWorkbook {
	return &MemoryWorkbook{}
}

// AddSheet appends a sheet and returns it for cell population.
func (wb *MemoryWorkbook) AddSheet(name string) *MemorySheet {
	sheet := &MemorySheet{name: name, index: make(map[string]int)}
	wb.sheets = append(wb.sheets, sheet)
	return sheet
}

// Sheets returns the sheets in insertion order.
func (wb *MemoryWorkbook) Sheets() []Sheet {
	out := make([]Sheet, len(wb.sheets))
	for i, s := range wb.sheets {
		out[i] = s
	}
	return out
}

// Sheet returns the named sheet, or nil if absent.
func (wb *MemoryWorkbook) Sheet(name string) *MemorySheet {
	for _, s := range wb.sheets {
		if s.name == name {
			return s
		}
	}
	return nil
}

func (wb *MemoryWorkbook) clone() *MemoryWorkbook {
	out := NewMemoryWorkbook()
	for _, s := range wb.sheets {
		dst := out.AddSheet(s.name)
		for _, c := range s.cells {
			dst.SetCell(c.Coordinate, c.Value)
		}
	}
	return out
}

// MemorySheet stores cells in insertion order with O(1) coordinate lookup.
type MemorySheet struct {
	name  string
	cells []Cell
	index map[string]int
}

var _ Sheet = (*MemorySheet)(nil)

// Name returns the sheet name.
func (s *MemorySheet) Name() string { return s.name }

// Cells returns a copy of every populated cell in insertion order.
func (s *MemorySheet) Cells() []Cell {
	out := make([]Cell, len(s.cells))
	copy(out, s.cells)
	return out
}

// SetCell replaces the value at coord, creating the cell if needed.
func (s *MemorySheet) SetCell(coord, value string) {
	if i, ok := s.index[coord]; ok {
		s.cells[i].Value = value
		return
	}
	s.index[coord] = len(s.cells)
	s.cells = append(s.cells, Cell{Coordinate: coord, Value: value})
}

// Value returns the value at coord and whether the cell exists.
func (s *MemorySheet) Value(coord string) (string, bool) {
	i, ok := s.index[coord]
	if !ok {
		return "", false
	}
	return s.cells[i].Value, true
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"lot-dispatch-service/internal/domain"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
)

const historySheet = "Historial"

var historyHeader = []string{
	"ID", "Fecha", "Hora", "LotesIngresados", "Lotes_CamionA", "Lotes_CamionB",
	"Km_CamionA", "Km_CamionB", "Km Totales",
}

// XLSXHistoryRepository appends dispatch history to a workbook that operators
// open in a spreadsheet. Date and time columns are written in Location.
type XLSXHistoryRepository struct {
	Path     string
	Location *time.Location

	mu sync.Mutex
}

func NewXLSXHistoryRepository(path string, loc *time.Location) *XLSXHistoryRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &XLSXHistoryRepository{Path: path, Location: loc}
}

func (x *XLSXHistoryRepository) AppendRecord(ctx context.Context, rec domain.HistoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	f, err := x.openOrCreate()
	if err != nil {
		return fmt.Errorf("append xlsx history: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(historySheet)
	if err != nil {
		return fmt.Errorf("append xlsx history: read rows: %w", err)
	}

	local := rec.CreatedAt.In(x.Location)
	values := []any{
		rec.ID,
		local.Format("2006-01-02"),
		local.Format("15:04:05"),
		strings.Join(rec.RequestedLots, ", "),
		strings.Join(rec.LotsA, ", "),
		strings.Join(rec.LotsB, ", "),
		rec.KmA,
		rec.KmB,
		rec.KmTotal,
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("append xlsx history: cell name: %w", err)
	}
	if err := f.SetSheetRow(historySheet, cell, &values); err != nil {
		return fmt.Errorf("append xlsx history: write row: %w", err)
	}

	if err := f.SaveAs(x.Path); err != nil {
		return fmt.Errorf("append xlsx history: save %q: %w", x.Path, err)
	}

	return nil
}

func (x *XLSXHistoryRepository) ListRecords(ctx context.Context) ([]domain.HistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	f, err := excelize.OpenFile(x.Path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.HistoryRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list xlsx history: open %q: %w", x.Path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(historySheet)
	if err != nil {
		return nil, fmt.Errorf("list xlsx history: read rows: %w", err)
	}

	out := make([]domain.HistoryRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		rec, err := x.parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("list xlsx history: row %d: %w", i+1, err)
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return out, nil
}

func (x *XLSXHistoryRepository) openOrCreate() (*excelize.File, error) {
	f, err := excelize.OpenFile(x.Path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open %q: %w", x.Path, err)
	}

	f = excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), historySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, 0, len(historyHeader))
	for _, h := range historyHeader {
		header = append(header, h)
	}
	if err := f.SetSheetRow(historySheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return f, nil
}

func (x *XLSXHistoryRepository) parseRow(row []string) (domain.HistoryRecord, error) {
	cols := make([]string, len(historyHeader))
	copy(cols, row)

	createdAt, err := time.ParseInLocation("2006-01-02 15:04:05", cols[1]+" "+cols[2], x.Location)
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("parse timestamp: %w", err)
	}

	km := make([]float64, 3)
	for i, raw := range cols[6:9] {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return domain.HistoryRecord{}, fmt.Errorf("parse %s: %w", historyHeader[6+i], err)
		}
		km[i] = v
	}

	return domain.HistoryRecord{
		ID:            cols[0],
		CreatedAt:     createdAt.UTC(),
		RequestedLots: splitCell(cols[3]),
		LotsA:         splitCell(cols[4]),
		LotsB:         splitCell(cols[5]),
		KmA:           km[0],
		KmB:           km[1],
		KmTotal:       km[2],
	}, nil
}

func splitCell(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

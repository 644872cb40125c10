package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"sweetshop/internal/domain"
)

type SweetWriter interface {
	Import(ctx context.Context, in domain.SweetInput) (*domain.Sweet, error)
}

// CSVImporter reads name,category,price,quantity,description rows and upserts sweets
// by name. Columns are matched by header, case-insensitively.
type CSVImporter struct {
	reader *csv.Reader
	sweets SweetWriter
}

func NewCSVImporter(r io.Reader, sweets SweetWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{reader: csvr, sweets: sweets}
}

var requiredColumns = []string{"name", "category", "price"}

// Run imports every row and returns how many sweets were written. It stops at the
// first invalid row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing column %q", col)
		}
	}

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		in, skip, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if skip {
			continue
		}
		if _, err := i.sweets.Import(ctx, in); err != nil {
			return imported, fmt.Errorf("line %d: upsert sweet %q: %w", line, in.Name, err)
		}
		imported++
	}
	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (domain.SweetInput, bool, error) {
	in := domain.SweetInput{
		Name:        pick(record, index, "name"),
		Category:    pick(record, index, "category"),
		Description: pick(record, index, "description"),
	}
	priceStr := pick(record, index, "price")
	qtyStr := pick(record, index, "quantity")

	if in.Name == "" && in.Category == "" && priceStr == "" {
		return in, true, nil
	}
	if in.Name == "" || in.Category == "" || priceStr == "" {
		return in, false, errors.New("name, category and price are required")
	}

	price, err := decimal.NewFromString(strings.TrimPrefix(priceStr, "$"))
	if err != nil {
		return in, false, fmt.Errorf("invalid price %q", priceStr)
	}
	in.Price = price

	if qtyStr != "" {
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			return in, false, fmt.Errorf("invalid quantity %q", qtyStr)
		}
		in.Quantity = qty
	}
	return in, false, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

package importer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chegemaina/askdata/models"
)

// DefaultBatchSize is the number of rows committed per transaction.
const DefaultBatchSize = 500

// ImportConfig describes one seed-data import: a CSV file, the
// destination table with its column list, and a transform that turns a
// CSV record into typed insert values.
type ImportConfig struct {
	Table      string
	SourceFile string
	Columns    []string
	BatchSize  int
	Transform  func(record []string) ([]interface{}, error)
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Imported int
	Failed   int
}

// UsersConfig imports id,name,email rows into users.
func UsersConfig(sourceFile string) ImportConfig {
	return ImportConfig{
		Table:      "users",
		SourceFile: sourceFile,
		Columns:    []string{"id", "name", "email"},
		Transform: func(rec []string) ([]interface{}, error) {
			if len(rec) < 3 {
				return nil, fmt.Errorf("expected 3 fields, got %d", len(rec))
			}
			id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid user id %q", rec[0])
			}
			u := models.User{ID: id, Name: strings.TrimSpace(rec[1]), Email: strings.TrimSpace(rec[2])}
			return []interface{}{u.ID, u.Name, u.Email}, nil
		},
	}
}

// ProductsConfig imports id,name,category,price rows into products.
func ProductsConfig(sourceFile string) ImportConfig {
	return ImportConfig{
		Table:      "products",
		SourceFile: sourceFile,
		Columns:    []string{"id", "name", "category", "price"},
		Transform: func(rec []string) ([]interface{}, error) {
			if len(rec) < 4 {
				return nil, fmt.Errorf("expected 4 fields, got %d", len(rec))
			}
			id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid product id %q", rec[0])
			}
			price, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid price %q", rec[3])
			}
			p := models.Product{ID: id, Name: strings.TrimSpace(rec[1]), Category: strings.TrimSpace(rec[2]), Price: price}
			return []interface{}{p.ID, p.Name, p.Category, p.Price}, nil
		},
	}
}

// OrdersConfig imports id,user_id,product_id,quantity,order_date rows
// into orders. Dates use YYYY-MM-DD.
func OrdersConfig(sourceFile string) ImportConfig {
	return ImportConfig{
		Table:      "orders",
		SourceFile: sourceFile,
		Columns:    []string{"id", "user_id", "product_id", "quantity", "order_date"},
		Transform: func(rec []string) ([]interface{}, error) {
			if len(rec) < 5 {
				return nil, fmt.Errorf("expected 5 fields, got %d", len(rec))
			}
			ints := make([]int, 4)
			for i := 0; i < 4; i++ {
				v, err := strconv.Atoi(strings.TrimSpace(rec[i]))
				if err != nil {
					return nil, fmt.Errorf("invalid integer %q", rec[i])
				}
				ints[i] = v
			}
			date, err := time.Parse("2006-01-02", strings.TrimSpace(rec[4]))
			if err != nil {
				return nil, fmt.Errorf("invalid order_date %q", rec[4])
			}
			o := models.Order{ID: ints[0], UserID: ints[1], ProductID: ints[2], Quantity: ints[3], OrderDate: date}
			return []interface{}{o.ID, o.UserID, o.ProductID, o.Quantity, o.OrderDate}, nil
		},
	}
}

// ImportCSV streams the configured CSV into its table in batched
// transactions. Rows that fail to parse are counted and skipped; a
// failed insert aborts the run.
func ImportCSV(ctx context.Context, db *sql.DB, cfg ImportConfig) (*ImportResult, error) {
	file, err := os.Open(cfg.SourceFile)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.SourceFile, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	// Skip header row.
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	insertSQL := buildInsertSQL(cfg.Table, cfg.Columns)
	result := &ImportResult{}

	var tx *sql.Tx
	inBatch := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", cfg.SourceFile, err)
		}

		values, err := cfg.Transform(record)
		if err != nil {
			log.Printf("Skipping row %v: %v", record, err)
			result.Failed++
			continue
		}

		if tx == nil {
			if tx, err = db.BeginTx(ctx, nil); err != nil {
				return nil, err
			}
		}
		if _, err := tx.ExecContext(ctx, insertSQL, values...); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("inserting into %s: %w", cfg.Table, err)
		}
		result.Imported++
		inBatch++

		if inBatch >= batchSize {
			if err := tx.Commit(); err != nil {
				return nil, err
			}
			tx = nil
			inBatch = 0
		}
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func buildInsertSQL(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO NOTHING",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

package nlquery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
)

// ErrNoGenerator is returned when no rule matched the question and no
// text generator is configured, so no SQL could be derived at all. The
// caller should surface it as an informational message, not execute
// anything.
var ErrNoGenerator = errors.New("no rule matched and no generator is configured")

// Answer is the outcome of a fully resolved question.
type Answer struct {
	Query     string
	Rule      string // matched rule name, "" when generated
	Generated bool   // query came from the fallback model
	Defaulted bool   // fallback degraded to DefaultQuery
	Rows      []map[string]interface{}
}

// NLQueryEngine resolves free-text questions to SQL and executes the
// result. The database handle and generator are injected; the engine
// keeps no state of its own between questions, so one instance is safe
// for concurrent use.
type NLQueryEngine struct {
	db       *sql.DB
	fallback *Fallback
}

// NewNLQueryEngine builds an engine. gen may be nil, in which case
// unmatched questions return ErrNoGenerator instead of falling back.
func NewNLQueryEngine(db *sql.DB, gen TextGenerator) *NLQueryEngine {
	e := &NLQueryEngine{db: db}
	if gen != nil {
		e.fallback = NewFallback(gen)
	}
	return e
}

// Resolve exposes rule-only resolution. It never touches the database.
func (e *NLQueryEngine) Resolve(question string) MatchResult {
	return Resolve(question)
}

// Answer runs the full pipeline: resolve, fall back to generation on
// NoMatch, then execute the query. Rule-matched questions never touch
// schema introspection, so they resolve even when the database is only
// reachable for execution.
func (e *NLQueryEngine) Answer(ctx context.Context, question string) (*Answer, error) {
	answer := &Answer{}

	result := Resolve(question)
	if result.Matched {
		answer.Query = result.Query
		answer.Rule = result.Rule
	} else {
		if e.fallback == nil {
			return nil, fmt.Errorf("%w: %q", ErrNoGenerator, question)
		}
		schema, err := DescribeSchema(ctx, e.db)
		if err != nil {
			return nil, err
		}
		generated := e.fallback.Generate(ctx, question, schema)
		answer.Query = generated.Query
		answer.Generated = true
		answer.Defaulted = generated.Defaulted
	}

	rows, err := e.executeQuery(ctx, answer.Query)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	answer.Rows = rows
	return answer, nil
}

// executeQuery runs the final query text and flattens the rows into
// column-keyed maps.
func (e *NLQueryEngine) executeQuery(ctx context.Context, query string) ([]map[string]interface{}, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := e.db.QueryContext(queryCtx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		result := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				result[column] = string(b)
			} else {
				result[column] = values[i]
			}
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// DisplayResults renders rows as a plain table on stdout.
func (e *NLQueryEngine) DisplayResults(answer *Answer) {
	if len(answer.Rows) == 0 {
		fmt.Println("No results found")
		return
	}

	var columns []string
	for column := range answer.Rows[0] {
		columns = append(columns, column)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	for _, result := range answer.Rows {
		var row []string
		for _, column := range columns {
			value := result[column]
			if value == nil {
				row = append(row, "NULL")
			} else {
				row = append(row, fmt.Sprintf("%v", value))
			}
		}
		table.Append(row)
	}

	table.Render()
}

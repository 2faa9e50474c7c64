package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/fixture-sync/internal/domain/match"
	qb "github.com/riskibarqy/fixture-sync/internal/platform/querybuilder"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// matchAssignments turns patch columns into bind values. Scores become
// JSON text for the jsonb column and times are stored in UTC.
func matchAssignments(columns []match.Column) ([]qb.Assignment, error) {
	out := make([]qb.Assignment, 0, len(columns))
	for _, col := range columns {
		value, err := matchColumnValue(col)
		if err != nil {
			return nil, err
		}
		out = append(out, qb.Assignment{Column: col.Name, Value: value})
	}
	return out, nil
}

func matchColumnValue(col match.Column) (any, error) {
	switch v := col.Value.(type) {
	case nil:
		return nil, nil
	case match.Score:
		raw, err := jsoniter.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", col.Name, err)
		}
		return string(raw), nil
	case time.Time:
		return v.UTC(), nil
	case string, int, bool:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported value %T for column %s", col.Value, col.Name)
	}
}

func assignmentColumns(assignments []qb.Assignment) []string {
	out := make([]string, 0, len(assignments))
	for _, item := range assignments {
		out = append(out, item.Column)
	}
	return out
}

func hasColumn(assignments []qb.Assignment, column string) bool {
	for _, item := range assignments {
		if item.Column == column {
			return true
		}
	}
	return false
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: v.UTC(), Valid: true}
}

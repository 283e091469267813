package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sisu-network/sentinel/config"
)

// dialect hides the few sql differences between the supported drivers. Queries are written with
// `?` placeholders and rebound for postgres.
type dialect struct {
	driver string
}

func (d dialect) rebind(query string) string {
	if d.driver != config.DbDriverPostgres {
		return query
	}

	sb := strings.Builder{}
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(c)
	}

	return sb.String()
}

// insertIgnore builds an insert statement that silently skips rows hitting a unique constraint.
func (d dialect) insertIgnore(table string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	cols := strings.Join(columns, ", ")

	var query string
	switch d.driver {
	case config.DbDriverMysql:
		query = fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES (%s)", table, cols, placeholders)
	case config.DbDriverSqlite:
		query = fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)", table, cols, placeholders)
	default:
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING", table, cols, placeholders)
	}

	return d.rebind(query)
}

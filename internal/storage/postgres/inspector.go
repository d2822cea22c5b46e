package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/wisha-api/internal/logger"
)

// Tables are the tables owned by the service
var Tables = []string{"users", "auth_identities", "events", "messages", "activities", "items"}

// IndexHint is an index the board queries rely on that the database lacks
type IndexHint struct {
	Table      string `json:"table"`
	Columns    string `json:"columns"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion"`
}

// TableStats represents table statistics
type TableStats struct {
	TableName    string     `json:"table_name"`
	LiveRows     int64      `json:"live_rows"`
	TableSize    string     `json:"table_size"`
	IndexSize    string     `json:"index_size"`
	LastAnalyzed *time.Time `json:"last_analyzed"`
}

type expectedIndex struct {
	table   string
	columns string
	reason  string
}

// access paths of the hot queries: board load, timelines, wishlist, dashboard
var expectedIndexes = []expectedIndex{
	{"messages", "(event_id, created_at DESC)", "board load, newest first"},
	{"activities", "(event_id, created_at DESC)", "event and dashboard timelines"},
	{"items", "(event_id)", "wishlist per event"},
	{"events", "(creator_id)", "dashboard and ?creator=me"},
	{"auth_identities", "(email)", "sign-in and email probe"},
}

// Inspector reads catalog statistics for the service tables
type Inspector struct {
	db  *gorm.DB
	log *log.Logger
}

func NewInspector(db *gorm.DB) *Inspector {
	return &Inspector{
		db:  db,
		log: logger.Repository("inspector"),
	}
}

// TableStats returns size and row estimates of the service tables, largest first
func (i *Inspector) TableStats(ctx context.Context) ([]TableStats, error) {
	rows, err := i.db.WithContext(ctx).Raw(`
		SELECT
			relname,
			n_live_tup,
			pg_size_pretty(pg_total_relation_size(relid)),
			pg_size_pretty(pg_indexes_size(relid)),
			GREATEST(last_analyze, last_autoanalyze)
		FROM pg_stat_user_tables
		WHERE relname IN ?
		ORDER BY pg_total_relation_size(relid) DESC
	`, Tables).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to read table stats: %w", err)
	}
	defer rows.Close()

	var stats []TableStats
	for rows.Next() {
		var s TableStats
		if err := rows.Scan(&s.TableName, &s.LiveRows, &s.TableSize, &s.IndexSize, &s.LastAnalyzed); err != nil {
			i.log.Warn("skipping unreadable stats row", "error", err)
			continue
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// MissingIndexes lists the expected indexes that pg_indexes does not show
func (i *Inspector) MissingIndexes(ctx context.Context) ([]IndexHint, error) {
	var hints []IndexHint
	for _, idx := range expectedIndexes {
		var count int64
		err := i.db.WithContext(ctx).Raw(
			`SELECT COUNT(*) FROM pg_indexes WHERE tablename = ? AND indexdef ILIKE ?`,
			idx.table, "%"+indexColumnsPattern(idx.columns)+"%",
		).Scan(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check index on %s: %w", idx.table, err)
		}
		if count == 0 {
			hints = append(hints, newIndexHint(idx))
		}
	}

	i.log.Info("Index check completed", "missing", len(hints))
	return hints, nil
}

func newIndexHint(idx expectedIndex) IndexHint {
	return IndexHint{
		Table:   idx.table,
		Columns: idx.columns,
		Reason:  idx.reason,
		Suggestion: fmt.Sprintf("CREATE INDEX CONCURRENTLY idx_%s_%s ON %s %s",
			idx.table, sanitizeIndexName(idx.columns), idx.table, idx.columns),
	}
}

// indexColumnsPattern matches how pg_indexes prints the leading column
func indexColumnsPattern(columns string) string {
	inner := strings.Trim(columns, "()")
	first := strings.TrimSpace(strings.SplitN(inner, ",", 2)[0])
	return "(" + strings.Fields(first)[0]
}

// sanitizeIndexName creates a safe index name from column specification
func sanitizeIndexName(columns string) string {
	name := strings.ToLower(columns)
	name = strings.NewReplacer("(", "", ")", "", " desc", "", " asc", "", ",", "", " ", "_").Replace(name)
	return name
}

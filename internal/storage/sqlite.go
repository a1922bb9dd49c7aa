package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dtobolski/sitecv/internal/publication"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection holding the publication index.
type DB struct {
	db *sql.DB
}

// selectFields is the column list read back into publication.Fields.
const selectFields = `record_type, year, category, subtype, citation, doi,
	mnicsw_points, impact_factor, start_date, end_date, city, country, award`

// metaSourceDigest is the meta key holding the digest of the indexed CSV.
const metaSourceDigest = "source_digest"

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Raw CSV columns plus the parsed values used for filtering and ordering
		CREATE TABLE IF NOT EXISTS publications (
			seq INTEGER PRIMARY KEY,
			record_type TEXT NOT NULL,
			year TEXT NOT NULL,
			category TEXT NOT NULL,
			subtype TEXT NOT NULL,
			citation TEXT NOT NULL,
			doi TEXT NOT NULL,
			mnicsw_points TEXT NOT NULL,
			impact_factor TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			city TEXT NOT NULL,
			country TEXT NOT NULL,
			award TEXT NOT NULL,
			year_value INTEGER,
			start_unix INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_publications_year ON publications(year_value);

		-- Full-text search over citation text
		CREATE VIRTUAL TABLE IF NOT EXISTS publications_fts USING fts5(
			seq UNINDEXED,
			citation
		);

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the index and inserts records in order. digest identifies
// the source the records came from and is returned by SourceDigest.
func (d *DB) Rebuild(records []publication.Record, digest string) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"publications", "publications_fts", "meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	pubStmt, err := tx.Prepare(`
		INSERT INTO publications (
			seq, record_type, year, category, subtype, citation, doi,
			mnicsw_points, impact_factor, start_date, end_date, city, country, award,
			year_value, start_unix
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing publications insert: %w", err)
	}
	defer pubStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO publications_fts (seq, citation) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i, r := range records {
		var year, start sql.NullInt64
		if r.YearValue != nil {
			year = sql.NullInt64{Int64: int64(*r.YearValue), Valid: true}
		}
		if r.Start != nil {
			start = sql.NullInt64{Int64: r.Start.Unix(), Valid: true}
		}

		f := r.Fields
		_, err := pubStmt.Exec(
			i, f.RecordType, f.Year, f.Category, f.Subtype, f.Citation, f.DOI,
			f.Points, f.ImpactFactor, f.StartDate, f.EndDate, f.City, f.Country, f.Award,
			year, start,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting record %d: %w", i+1, err)
		}
		if _, err := ftsStmt.Exec(i, f.Citation); err != nil {
			return 0, fmt.Errorf("inserting fts for record %d: %w", i+1, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, metaSourceDigest, digest); err != nil {
		return 0, fmt.Errorf("saving source digest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(records), nil
}

// SourceDigest returns the digest recorded by the last Rebuild, or "" if the
// index has never been built.
func (d *DB) SourceDigest() (string, error) {
	var digest string
	err := d.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaSourceDigest).Scan(&digest)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading source digest: %w", err)
	}
	return digest, nil
}

// Filter narrows List results. Zero values mean no constraint.
type Filter struct {
	Category   string // case-insensitive exact match
	RecordType string // exact match
	Year       int
	Search     string // full-text match against citation
	Limit      int
}

// List returns the records matching filter, newest year first. Records
// without a year come last; ties keep CSV order.
func (d *DB) List(filter Filter) ([]publication.Record, error) {
	query := `SELECT ` + selectFields + ` FROM publications WHERE 1=1`
	var args []interface{}

	if filter.Category != "" {
		query += " AND UPPER(category) = UPPER(?)"
		args = append(args, filter.Category)
	}
	if filter.RecordType != "" {
		query += " AND record_type = ?"
		args = append(args, filter.RecordType)
	}
	if filter.Year != 0 {
		query += " AND year_value = ?"
		args = append(args, filter.Year)
	}
	if strings.TrimSpace(filter.Search) != "" {
		query += " AND seq IN (SELECT seq FROM publications_fts WHERE publications_fts MATCH ?)"
		args = append(args, prepareFTSQuery(filter.Search))
	}

	query += " ORDER BY year_value IS NULL, year_value DESC, seq"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}
	defer rows.Close()

	var records []publication.Record
	for rows.Next() {
		var f publication.Fields
		err := rows.Scan(
			&f.RecordType, &f.Year, &f.Category, &f.Subtype, &f.Citation, &f.DOI,
			&f.Points, &f.ImpactFactor, &f.StartDate, &f.EndDate, &f.City, &f.Country, &f.Award,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning publication: %w", err)
		}
		records = append(records, publication.New(f))
	}
	return records, rows.Err()
}

// Count returns the total number of indexed records.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM publications").Scan(&count)
	return count, err
}

// prepareFTSQuery quotes each word so FTS5 operators in user input are
// treated as text. Words are ANDed.
func prepareFTSQuery(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}

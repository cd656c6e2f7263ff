package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/quotevault/internal/domain"
)

// SQLiteQuoteRepository implements domain.QuoteRepository on SQLite.
// It holds no in-memory state beyond the shared pool; every read reflects
// the latest committed write.
type SQLiteQuoteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteQuoteRepository creates a new quote repository
func NewSQLiteQuoteRepository(db *sql.DB, logger *slog.Logger) *SQLiteQuoteRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteQuoteRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a quote and its tags in one transaction. Text and source
// must be non-empty after trimming.
func (r *SQLiteQuoteRepository) Create(text, source string, tags []string) (*domain.Quote, error) {
	text = strings.TrimSpace(text)
	source = strings.TrimSpace(source)
	if text == "" {
		return nil, fmt.Errorf("%w: quote text cannot be empty", domain.ErrValidation)
	}
	if source == "" {
		return nil, fmt.Errorf("%w: quote source cannot be empty", domain.ErrValidation)
	}

	now := time.Now().UTC()

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO quotes (quote, source, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		text, source, now, now,
	)
	if err != nil {
		r.logger.Error("failed to insert quote", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to insert quote: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read quote id: %w", err)
	}

	inserted, err := insertTags(tx, id, tags, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit quote: %w", err)
	}

	return &domain.Quote{
		ID:        id,
		Text:      text,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
		Tags:      inserted,
	}, nil
}

// GetByID retrieves a quote and its full tag set, tags ordered by tag id
func (r *SQLiteQuoteRepository) GetByID(id int64) (*domain.Quote, error) {
	q := &domain.Quote{}
	err := r.db.QueryRow(
		`SELECT id, quote, source, created_at, updated_at FROM quotes WHERE id = ?`,
		id,
	).Scan(&q.ID, &q.Text, &q.Source, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("quote %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	tags, err := r.tagsFor(q.ID)
	if err != nil {
		return nil, err
	}
	q.Tags = tags

	return q, nil
}

// List returns every quote matching the filter, ordered by id ascending.
// The result is fully materialized; an empty filter matches everything.
func (r *SQLiteQuoteRepository) List(filter domain.SearchFilter) ([]*domain.Quote, error) {
	query := `SELECT id, quote, source, created_at, updated_at FROM quotes`
	var conds []string
	var args []any

	if filter.Text != nil {
		conds = append(conds, `LOWER(quote) LIKE '%' || LOWER(?) || '%'`)
		args = append(args, *filter.Text)
	}
	if filter.Source != nil {
		conds = append(conds, `LOWER(source) LIKE '%' || LOWER(?) || '%'`)
		args = append(args, *filter.Source)
	}
	if filter.Tag != nil {
		// Existential: one matching tag qualifies the whole quote.
		conds = append(conds, `EXISTS (
			SELECT 1 FROM tags t
			WHERE t.quote_id = quotes.id
			AND LOWER(t.name) LIKE '%' || LOWER(?) || '%'
		)`)
		args = append(args, *filter.Tag)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to list quotes", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*domain.Quote
	for rows.Next() {
		q := &domain.Quote{}
		if err := rows.Scan(&q.ID, &q.Text, &q.Source, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}

	// The full tag set is returned even when only one tag matched.
	for _, q := range quotes {
		tags, err := r.tagsFor(q.ID)
		if err != nil {
			return nil, err
		}
		q.Tags = tags
	}

	return quotes, nil
}

// Update applies only the supplied fields. A non-nil Tags replaces the
// entire tag set in the same transaction; a failed replacement leaves the
// prior set untouched. updated_at is refreshed regardless.
func (r *SQLiteQuoteRepository) Update(id int64, update domain.QuoteUpdate) (*domain.Quote, error) {
	if update.Text != nil && strings.TrimSpace(*update.Text) == "" {
		return nil, fmt.Errorf("%w: quote text cannot be empty", domain.ErrValidation)
	}
	if update.Source != nil && strings.TrimSpace(*update.Source) == "" {
		return nil, fmt.Errorf("%w: quote source cannot be empty", domain.ErrValidation)
	}

	now := time.Now().UTC()

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := &domain.Quote{ID: id, UpdatedAt: now}
	err = tx.QueryRow(
		`SELECT quote, source, created_at FROM quotes WHERE id = ?`,
		id,
	).Scan(&q.Text, &q.Source, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("quote %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get quote for update: %w", err)
	}

	if update.Text != nil {
		q.Text = strings.TrimSpace(*update.Text)
	}
	if update.Source != nil {
		q.Source = strings.TrimSpace(*update.Source)
	}

	_, err = tx.Exec(
		`UPDATE quotes SET quote = ?, source = ?, updated_at = ? WHERE id = ?`,
		q.Text, q.Source, now, id,
	)
	if err != nil {
		r.logger.Error("failed to update quote",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	if update.Tags != nil {
		if _, err := tx.Exec(`DELETE FROM tags WHERE quote_id = ?`, id); err != nil {
			return nil, fmt.Errorf("failed to clear tags: %w", err)
		}
		tags, err := insertTags(tx, id, *update.Tags, now)
		if err != nil {
			return nil, err
		}
		q.Tags = tags
	} else {
		tags, err := tagsForTx(tx, id)
		if err != nil {
			return nil, err
		}
		q.Tags = tags
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}

	return q, nil
}

// Delete removes the quote row; the tag rows go with it via the schema's
// ON DELETE CASCADE. Deleting an absent id fails with NotFound.
func (r *SQLiteQuoteRepository) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("quote %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Count returns the current catalog cardinality
func (r *SQLiteQuoteRepository) Count() (int64, error) {
	var n int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM quotes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return n, nil
}

// GetByOffset returns the quote at ordinal position k under id-ascending
// order. Ids may have gaps from deletions, so position indexing (not id
// value) is what keeps random selection uniform.
func (r *SQLiteQuoteRepository) GetByOffset(k int64) (*domain.Quote, error) {
	q := &domain.Quote{}
	err := r.db.QueryRow(
		`SELECT id, quote, source, created_at, updated_at FROM quotes ORDER BY id ASC LIMIT 1 OFFSET ?`,
		k,
	).Scan(&q.ID, &q.Text, &q.Source, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("offset %d: %w", k, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get quote by offset: %w", err)
	}

	tags, err := r.tagsFor(q.ID)
	if err != nil {
		return nil, err
	}
	q.Tags = tags

	return q, nil
}

func (r *SQLiteQuoteRepository) tagsFor(quoteID int64) ([]string, error) {
	return scanTags(r.db.Query(
		`SELECT name FROM tags WHERE quote_id = ? ORDER BY id ASC`,
		quoteID,
	))
}

func tagsForTx(tx *sql.Tx, quoteID int64) ([]string, error) {
	return scanTags(tx.Query(
		`SELECT name FROM tags WHERE quote_id = ? ORDER BY id ASC`,
		quoteID,
	))
}

func scanTags(rows *sql.Rows, err error) ([]string, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// insertTags inserts the tag rows for a quote inside the caller's
// transaction, preserving insertion order. Blank names are skipped;
// duplicates are kept.
func insertTags(tx *sql.Tx, quoteID int64, tags []string, now time.Time) ([]string, error) {
	inserted := []string{}
	for _, tag := range tags {
		name := strings.TrimSpace(tag)
		if name == "" {
			continue
		}
		_, err := tx.Exec(
			`INSERT INTO tags (quote_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			quoteID, name, now, now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert tag: %w", err)
		}
		inserted = append(inserted, name)
	}
	return inserted, nil
}

package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultPageSize is used when a filter carries no limit.
const DefaultPageSize = 10

// Fixed width keeps lexical and chronological order the same.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists articles in SQLite.
type Store struct {
	conn *sql.DB
	now  func() time.Time
}

// NewStore opens the database and initializes the schema.
func NewStore(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows a single writer.
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, now: time.Now}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'general',
		tags TEXT NOT NULL DEFAULT '[]',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		is_published INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_articles_created ON articles(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(is_published);
	CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);
	`

	_, err := s.conn.Exec(schema)
	return err
}

const articleColumns = `id, title, content, summary, category, tags, thumbnail_url, is_published, created_at, updated_at`

// Create validates and inserts a new article, assigning its id and timestamps.
func (s *Store) Create(ctx context.Context, a *Article) error {
	if err := a.Validate(); err != nil {
		return err
	}

	now := s.now().UTC()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now

	tags, err := encodeTags(a.Tags)
	if err != nil {
		return err
	}

	_, err = s.conn.ExecContext(ctx, `
	INSERT INTO articles (`+articleColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Content, a.Summary, string(a.Category), tags, a.ThumbnailURL,
		boolToInt(a.IsPublished), now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting article: %w", err)
	}
	return nil
}

// Get returns an article regardless of its publication state.
func (s *Store) Get(ctx context.Context, id string) (*Article, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	return scanArticle(row)
}

// GetPublished returns an article only if it is published.
func (s *Store) GetPublished(ctx context.Context, id string) (*Article, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ? AND is_published = 1`, id)
	return scanArticle(row)
}

// Update overwrites an existing article's editable fields.
func (s *Store) Update(ctx context.Context, a *Article) error {
	if err := a.Validate(); err != nil {
		return err
	}

	tags, err := encodeTags(a.Tags)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	res, err := s.conn.ExecContext(ctx, `
	UPDATE articles
	SET title = ?, content = ?, summary = ?, category = ?, tags = ?, thumbnail_url = ?,
		is_published = ?, updated_at = ?
	WHERE id = ?`,
		a.Title, a.Content, a.Summary, string(a.Category), tags, a.ThumbnailURL,
		boolToInt(a.IsPublished), now.Format(timeLayout), a.ID)
	if err != nil {
		return fmt.Errorf("updating article: %w", err)
	}
	if err := expectRow(res); err != nil {
		return err
	}

	a.UpdatedAt = now
	return nil
}

// SetPublished toggles the publication state.
func (s *Store) SetPublished(ctx context.Context, id string, published bool) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE articles SET is_published = ?, updated_at = ? WHERE id = ?`,
		boolToInt(published), s.now().UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("updating article: %w", err)
	}
	return expectRow(res)
}

// Delete removes an article.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}
	return expectRow(res)
}

// List returns every article matching status, newest first.
func (s *Store) List(ctx context.Context, status Status) ([]*Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles`
	switch status {
	case StatusPublished:
		query += ` WHERE is_published = 1`
	case StatusDraft:
		query += ` WHERE is_published = 0`
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

// Filter narrows a page fetch.
type Filter struct {
	Search        string
	Category      string // empty or "all" matches every category
	PublishedOnly bool
	Limit         int
}

// Page is one slice of a listing.
type Page struct {
	Items      []*Article `json:"items"`
	Offset     int        `json:"offset"`
	NextOffset int        `json:"nextOffset"`
	HasMore    bool       `json:"hasMore"`
}

// FetchPage returns rows [offset, offset+limit) of the filtered listing,
// newest first. HasMore is true when the page came back full.
func (s *Store) FetchPage(ctx context.Context, offset int, f Filter) (Page, error) {
	if offset < 0 {
		offset = 0
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	var (
		where []string
		args  []any
	)
	if f.PublishedOnly {
		where = append(where, `is_published = 1`)
	}
	if c := strings.TrimSpace(f.Category); c != "" && c != "all" {
		where = append(where, `category = ?`)
		args = append(args, c)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		where = append(where,
			`(title LIKE ? OR summary LIKE ? OR EXISTS (SELECT 1 FROM json_each(articles.tags) WHERE json_each.value = ?))`)
		like := "%" + q + "%"
		args = append(args, like, like, q)
	}

	query := `SELECT ` + articleColumns + ` FROM articles`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return Page{}, fmt.Errorf("fetching articles: %w", err)
	}
	defer rows.Close()

	items, err := scanArticles(rows)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Items:      items,
		Offset:     offset,
		NextOffset: offset + len(items),
		HasMore:    len(items) == limit,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (*Article, error) {
	var (
		a                    Article
		category, tags       string
		published            int
		createdAt, updatedAt string
	)
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Summary, &category, &tags,
		&a.ThumbnailURL, &published, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning article: %w", err)
	}

	a.Category = Category(category)
	a.IsPublished = published != 0
	if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags of %s: %w", a.ID, err)
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at of %s: %w", a.ID, err)
	}
	if a.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at of %s: %w", a.ID, err)
	}
	return &a, nil
}

func scanArticles(rows *sql.Rows) ([]*Article, error) {
	articles := []*Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}
	return articles, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(data), nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

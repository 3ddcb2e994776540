// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blogpress/internal/models"
)

// ArticleStore handles all article-related database operations, including
// the article_tags association table.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleColumns = `
	a.id, a.title, a.content, a.author_id, a.category_id, a.created_at, a.updated_at,
	u.username, u.full_name, c.name`

const articleFrom = `
	FROM articles a
	JOIN users u ON u.id = a.author_id
	JOIN categories c ON c.id = a.category_id`

// scanArticle scans a joined article row, populating the virtual Author
// and Category fields.
func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	var art models.Article
	var author models.User
	var cat models.Category
	err := scanner.Scan(
		&art.ID, &art.Title, &art.Content, &art.AuthorID, &art.CategoryID,
		&art.CreatedAt, &art.UpdatedAt,
		&author.Username, &author.FullName, &cat.Name,
	)
	if err != nil {
		return nil, err
	}
	author.ID = art.AuthorID
	cat.ID = art.CategoryID
	art.Author = &author
	art.Category = &cat
	return &art, nil
}

// List returns all articles with author, category, and tags loaded,
// ordered by creation date descending.
func (s *ArticleStore) List() ([]models.Article, error) {
	rows, err := s.db.Query(`SELECT ` + articleColumns + articleFrom + `
		ORDER BY a.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		art, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *art)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		tags, err := s.loadTags(items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Tags = tags
	}
	return items, nil
}

// FindByID retrieves an article with author, category, and tags loaded.
// Returns nil if not found.
func (s *ArticleStore) FindByID(id uuid.UUID) (*models.Article, error) {
	row := s.db.QueryRow(`SELECT `+articleColumns+articleFrom+`
		WHERE a.id = $1`, id)
	art, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}

	art.Tags, err = s.loadTags(art.ID)
	if err != nil {
		return nil, err
	}
	return art, nil
}

// Create inserts a new article and attaches the given tag names inside a
// single transaction, then returns the article fully loaded. tagNames must
// already be parsed (lower-cased, deduplicated, in attachment order).
func (s *ArticleStore) Create(a *models.Article, tagNames []string) (*models.Article, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO articles (title, content, author_id, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, a.Title, a.Content, a.AuthorID, a.CategoryID).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	if err := replaceTags(tx, a.ID, tagNames); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create article: %w", err)
	}
	return s.FindByID(a.ID)
}

// Update overwrites an article's title, content, and category, and
// recomputes its tag associations from tagNames, in one transaction.
func (s *ArticleStore) Update(a *models.Article, tagNames []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE articles SET title = $1, content = $2, category_id = $3, updated_at = NOW()
		WHERE id = $4
	`, a.Title, a.Content, a.CategoryID, a.ID)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}

	if err := replaceTags(tx, a.ID, tagNames); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update article: %w", err)
	}
	return nil
}

// Delete removes an article by ID. Its tag associations go with it;
// the tags themselves are never deleted.
func (s *ArticleStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// CountByAuthor returns the number of articles authored by the given user.
// Shown on the user delete confirmation so the admin sees what the cascade
// will remove.
func (s *ArticleStore) CountByAuthor(authorID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM articles WHERE author_id = $1`, authorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count articles by author: %w", err)
	}
	return count, nil
}

// loadTags returns an article's tags in attachment order.
func (s *ArticleStore) loadTags(articleID uuid.UUID) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name
		FROM tags t
		JOIN article_tags atg ON atg.tag_id = t.id
		WHERE atg.article_id = $1
		ORDER BY atg.position
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("load article tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// replaceTags clears an article's tag associations and re-attaches the
// given names in order, creating missing tags on the fly. The upsert keeps
// tag names unique even when two requests race on the same new name.
func replaceTags(tx *sql.Tx, articleID uuid.UUID, names []string) error {
	if _, err := tx.Exec(`DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("clear article tags: %w", err)
	}

	for pos, name := range names {
		var tagID uuid.UUID
		// DO UPDATE instead of DO NOTHING so RETURNING always yields the id.
		err := tx.QueryRow(`
			INSERT INTO tags (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, name).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("resolve tag %q: %w", name, err)
		}

		if _, err := tx.Exec(`
			INSERT INTO article_tags (article_id, tag_id, position)
			VALUES ($1, $2, $3)
		`, articleID, tagID, pos); err != nil {
			return fmt.Errorf("attach tag %q: %w", name, err)
		}
	}
	return nil
}

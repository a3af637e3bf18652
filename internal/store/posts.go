package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/models"
)

const postSummarySelect = `
	SELECT p.id, p.title, p.content, p.image_url, p.created_on, p.is_active, p.author_id,
	       TRIM(u.first_name || ' ' || u.last_name) AS author_name,
	       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id AND c.is_active = ?) AS comment_count
	FROM posts p
	JOIN users u ON u.id = p.author_id
`

func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedOn.IsZero() {
		p.CreatedOn = now()
	}
	query := `
		INSERT INTO posts (id, title, content, image_url, created_on, is_active, author_id)
		VALUES (:id, :title, :content, :image_url, :created_on, :is_active, :author_id)
	`
	_, err := s.DB.NamedExecContext(ctx, query, p)
	return err
}

func (s *Store) GetPost(ctx context.Context, id uuid.UUID) (*models.PostSummary, error) {
	var p models.PostSummary
	err := s.DB.GetContext(ctx, &p, s.rebind(postSummarySelect+` WHERE p.id = ?`), true, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPosts returns active posts newest first; limit <= 0 means all.
func (s *Store) ListPosts(ctx context.Context, limit int) ([]models.PostSummary, error) {
	query := postSummarySelect + ` WHERE p.is_active = ? ORDER BY p.created_on DESC`
	args := []interface{}{true, true}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	posts := []models.PostSummary{}
	err := s.DB.SelectContext(ctx, &posts, s.rebind(query), args...)
	return posts, err
}

func (s *Store) SetPostActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.DB.ExecContext(ctx, s.rebind(`UPDATE posts SET is_active = ? WHERE id = ?`), active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedOn.IsZero() {
		c.CreatedOn = now()
	}
	query := `
		INSERT INTO comments (id, content, created_on, is_active, post_id, author_id)
		VALUES (:id, :content, :created_on, :is_active, :post_id, :author_id)
	`
	_, err := s.DB.NamedExecContext(ctx, query, c)
	return err
}

func (s *Store) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var c models.Comment
	query := `SELECT id, content, created_on, is_active, post_id, author_id FROM comments WHERE id = ?`
	err := s.DB.GetContext(ctx, &c, s.rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CommentsByPost(ctx context.Context, postID uuid.UUID) ([]models.CommentView, error) {
	query := `
		SELECT c.id, c.content, c.created_on, c.is_active, c.post_id, c.author_id,
		       TRIM(u.first_name || ' ' || u.last_name) AS author_name
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ? AND c.is_active = ?
		ORDER BY c.created_on
	`
	comments := []models.CommentView{}
	err := s.DB.SelectContext(ctx, &comments, s.rebind(query), postID, true)
	return comments, err
}

func (s *Store) SetCommentActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := s.DB.ExecContext(ctx, s.rebind(`UPDATE comments SET is_active = ? WHERE id = ?`), active, id)
	return err
}

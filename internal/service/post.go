package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/savethebee/honeyweb/internal/store"
)

type PostForm struct {
	Title    string
	Content  string
	ImageURL string
}

func (f PostForm) validate() error {
	v := &ValidationError{}
	if !lengthBetween(f.Title, 5, 100) {
		v.add("title", "Title must be between 5 and 100 characters.")
	}
	if !lengthBetween(f.Content, 20, 10000) {
		v.add("content", "Content must be between 20 and 10000 characters.")
	}
	return v.orNil()
}

type PostService struct {
	Store *store.Store
}

func (s *PostService) LastThree(ctx context.Context) ([]models.PostSummary, error) {
	return s.Store.ListPosts(ctx, 3)
}

func (s *PostService) All(ctx context.Context) ([]models.PostSummary, error) {
	return s.Store.ListPosts(ctx, 0)
}

func (s *PostService) Details(ctx context.Context, id uuid.UUID) (*models.PostDetails, error) {
	p, err := s.Store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, ErrNotFound
	}
	comments, err := s.Store.CommentsByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.PostDetails{PostSummary: *p, Comments: comments}, nil
}

func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, f PostForm) (*models.Post, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	p := &models.Post{
		Title:    strings.TrimSpace(f.Title),
		Content:  strings.TrimSpace(f.Content),
		ImageURL: f.ImageURL,
		IsActive: true,
		AuthorID: authorID,
	}
	if err := s.Store.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.Store.SetPostActive(ctx, id, false))
}

func (s *PostService) AddComment(ctx context.Context, authorID, postID uuid.UUID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if !lengthBetween(content, 2, 1000) {
		return nil, &ValidationError{Fields: map[string]string{"content": "Comment must be between 2 and 1000 characters."}}
	}
	p, err := s.Store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, ErrNotFound
	}
	c := &models.Comment{
		Content:  content,
		IsActive: true,
		PostID:   postID,
		AuthorID: authorID,
	}
	if err := s.Store.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteComment soft-deletes a comment; only its author or an admin may do so.
func (s *PostService) DeleteComment(ctx context.Context, userID uuid.UUID, isAdmin bool, commentID uuid.UUID) (*models.Comment, error) {
	c, err := s.Store.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.IsActive {
		return nil, ErrNotFound
	}
	if !isAdmin && c.AuthorID != userID {
		return nil, ErrForbidden
	}
	if err := s.Store.SetCommentActive(ctx, commentID, false); err != nil {
		return nil, err
	}
	return c, nil
}

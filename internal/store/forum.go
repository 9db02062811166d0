package store

import (
	"database/sql"
	"fmt"

	"github.com/pawhaven/pawhaven/internal/model"
)

type ForumStore struct {
	db *sql.DB
}

func NewForumStore(db *sql.DB) *ForumStore {
	return &ForumStore{db: db}
}

func scanPost(scanner interface{ Scan(...any) error }) (*model.ForumPost, error) {
	var p model.ForumPost
	err := scanner.Scan(&p.ID, &p.UserID, &p.Title, &p.Body, &p.CommentCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const postCols = `p.id, p.user_id, p.title, p.body,
	(SELECT COUNT(*) FROM forum_comments c WHERE c.post_id = p.id),
	p.created_at, p.updated_at`

func (s *ForumStore) CreatePost(userID int64, title, body string) (*model.ForumPost, error) {
	result, err := s.db.Exec(
		`INSERT INTO forum_posts (user_id, title, body) VALUES (?, ?, ?)`,
		userID, title, body,
	)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetPost(id)
}

func (s *ForumStore) GetPost(id int64) (*model.ForumPost, error) {
	row := s.db.QueryRow(`SELECT `+postCols+` FROM forum_posts p WHERE p.id = ?`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func (s *ForumStore) ListPosts() ([]model.ForumPost, error) {
	rows, err := s.db.Query(`SELECT ` + postCols + ` FROM forum_posts p ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []model.ForumPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (s *ForumStore) UpdatePost(id int64, title, body string) (*model.ForumPost, error) {
	_, err := s.db.Exec(
		`UPDATE forum_posts SET title = ?, body = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, body, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return s.GetPost(id)
}

func (s *ForumStore) DeletePost(id int64) error {
	_, err := s.db.Exec(`DELETE FROM forum_posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func scanComment(scanner interface{ Scan(...any) error }) (*model.ForumComment, error) {
	var c model.ForumComment
	err := scanner.Scan(&c.ID, &c.PostID, &c.UserID, &c.Body, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const commentCols = `id, post_id, user_id, body, created_at`

func (s *ForumStore) CreateComment(postID, userID int64, body string) (*model.ForumComment, error) {
	result, err := s.db.Exec(
		`INSERT INTO forum_comments (post_id, user_id, body) VALUES (?, ?, ?)`,
		postID, userID, body,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+commentCols+` FROM forum_comments WHERE id = ?`, id)
	return scanComment(row)
}

func (s *ForumStore) ListComments(postID int64) ([]model.ForumComment, error) {
	rows, err := s.db.Query(
		`SELECT `+commentCols+` FROM forum_comments WHERE post_id = ? ORDER BY created_at ASC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []model.ForumComment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func (s *ForumStore) GetComment(id int64) (*model.ForumComment, error) {
	row := s.db.QueryRow(`SELECT `+commentCols+` FROM forum_comments WHERE id = ?`, id)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func (s *ForumStore) DeleteComment(id int64) error {
	_, err := s.db.Exec(`DELETE FROM forum_comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

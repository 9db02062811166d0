package store

import "testing"

func TestForumPostsAndComments(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	fs := NewForumStore(db)

	post, err := fs.CreatePost(user.ID, "Introducing new cat to resident dog?", "Any tips appreciated.")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.CommentCount != 0 {
		t.Errorf("comment count = %d, want 0", post.CommentCount)
	}

	if _, err := fs.CreateComment(post.ID, user.ID, "Slow introductions through a door worked for us."); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	got, err := fs.GetPost(post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got.CommentCount != 1 {
		t.Errorf("comment count = %d, want 1", got.CommentCount)
	}

	comments, err := fs.ListComments(post.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments))
	}

	// Deleting the post cascades its comments.
	if err := fs.DeletePost(post.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	comments, _ = fs.ListComments(post.ID)
	if len(comments) != 0 {
		t.Errorf("expected 0 comments after cascade, got %d", len(comments))
	}
}

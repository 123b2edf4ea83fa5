package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideanote/internal/models"
)

func (m *memRepo) AppendPost(ctx context.Context, username string, post *models.Post) error {
	user, ok := m.users[username]
	if !ok {
		return models.ErrNotFound
	}
	user.Posts = append(user.Posts, *post)
	return nil
}

func (m *memRepo) RemovePost(ctx context.Context, username, postID string) error {
	user, ok := m.users[username]
	if !ok {
		return models.ErrNotFound
	}
	kept := user.Posts[:0]
	for _, p := range user.Posts {
		if p.ID != postID {
			kept = append(kept, p)
		}
	}
	user.Posts = kept
	return nil
}

func (m *memRepo) CastVote(ctx context.Context, owner, postID, voter string, vote int) error {
	user, ok := m.users[owner]
	if !ok {
		return models.ErrNotFound
	}
	for i := range user.Posts {
		if user.Posts[i].ID != postID {
			continue
		}
		previous := 0
		kept := user.Posts[i].UWV[:0]
		for _, v := range user.Posts[i].UWV {
			if v.Username == voter {
				previous = v.Vote
			} else {
				kept = append(kept, v)
			}
		}
		if previous == vote {
			return nil
		}
		user.Posts[i].UWV = append(kept, models.Vote{Username: voter, Vote: vote})
		user.Posts[i].Rating += vote - previous
		return nil
	}
	return models.ErrNotFound
}

func (m *memRepo) AddFavorite(ctx context.Context, username string, ref models.PostRef) error {
	user, ok := m.users[username]
	if !ok {
		return models.ErrNotFound
	}
	for _, existing := range user.Favorites {
		if existing == ref {
			return nil
		}
	}
	user.Favorites = append(user.Favorites, ref)
	return nil
}

func (m *memRepo) GetFavorites(ctx context.Context, username string) ([]models.PostRef, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	return user.Favorites, nil
}

func seedUser(repo *memRepo, username string) {
	u := &models.User{Username: username}
	u.ApplyDefaults()
	repo.users[username] = u
}

func TestPostIdea(t *testing.T) {
	repo := newMemRepo()
	seedUser(repo, "alice")
	svc := NewPostService(repo)

	post, err := svc.PostIdea(context.Background(), "alice", []interface{}{"an idea"}, "tech", false)
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "alice", post.Username)
	assert.Equal(t, 0, post.Rating)

	require.Len(t, repo.users["alice"].Posts, 1)
	assert.Equal(t, post.ID, repo.users["alice"].Posts[0].ID)
}

func TestPostIdea_EmptyContents(t *testing.T) {
	repo := newMemRepo()
	seedUser(repo, "alice")
	svc := NewPostService(repo)

	_, err := svc.PostIdea(context.Background(), "alice", nil, "tech", false)
	assert.Error(t, err)
}

func TestRemovePost(t *testing.T) {
	repo := newMemRepo()
	seedUser(repo, "alice")
	svc := NewPostService(repo)

	post, err := svc.PostIdea(context.Background(), "alice", []interface{}{"an idea"}, "", false)
	require.NoError(t, err)

	err = svc.RemovePost(context.Background(), "alice", post.ID)
	require.NoError(t, err)
	assert.Empty(t, repo.users["alice"].Posts)
}

func TestVoting(t *testing.T) {
	repo := newMemRepo()
	seedUser(repo, "alice")
	seedUser(repo, "bob")
	svc := NewPostService(repo)

	post, err := svc.PostIdea(context.Background(), "alice", []interface{}{"an idea"}, "", false)
	require.NoError(t, err)

	require.NoError(t, svc.Upvote(context.Background(), "alice", post.ID, "bob"))
	assert.Equal(t, 1, repo.users["alice"].Posts[0].Rating)

	// Re-voting the same direction is a no-op.
	require.NoError(t, svc.Upvote(context.Background(), "alice", post.ID, "bob"))
	assert.Equal(t, 1, repo.users["alice"].Posts[0].Rating)

	// Switching direction replaces the previous vote.
	require.NoError(t, svc.Downvote(context.Background(), "alice", post.ID, "bob"))
	assert.Equal(t, -1, repo.users["alice"].Posts[0].Rating)
	assert.Len(t, repo.users["alice"].Posts[0].UWV, 1)
}

func TestUpvote_NotifiesOwner(t *testing.T) {
	repo := newMemRepo()
	seedUser(repo, "alice")
	seedUser(repo, "bob")
	svc := NewPostService(repo)

	post, err := svc.PostIdea(context.Background(), "alice", []interface{}{"an idea"}, "", false)
	require.NoError(t, err)

	require.NoError(t, svc.Upvote(context.Background(), "alice", post.ID, "bob"))
	require.Len(t, repo.users["alice"].Notifications, 1)
	assert.Equal(t, "upvote", repo.users["alice"].Notifications[0].Kind)

	// Voting on your own post stays quiet.
	require.NoError(t, svc.Downvote(context.Background(), "alice", post.ID, "alice"))
	assert.Len(t, repo.users["alice"].Notifications, 1)
}

func TestFavorites(t *testing.T) {
	repo := newMemRepo()
	seedUser(repo, "alice")
	seedUser(repo, "bob")
	svc := NewPostService(repo)

	ref := models.PostRef{Owner: "alice", PostID: "p1"}
	require.NoError(t, svc.Favorite(context.Background(), "bob", ref))
	require.NoError(t, svc.Favorite(context.Background(), "bob", ref))

	refs, err := svc.Favorites(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, []models.PostRef{ref}, refs)

	err = svc.Favorite(context.Background(), "bob", models.PostRef{Owner: "alice"})
	assert.Error(t, err, "favorite without a post ID must be rejected")
}

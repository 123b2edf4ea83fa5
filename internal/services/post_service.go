package services

import (
	"context"
	"fmt"
	"strings"

	"ideanote/internal/models"
)

type PostService struct {
	userRepo models.UserRepo
}

func NewPostService(userRepo models.UserRepo) *PostService {
	return &PostService{
		userRepo: userRepo,
	}
}

// PostIdea appends a new idea post to the owner's feed.
func (ps *PostService) PostIdea(ctx context.Context, owner string, contents []interface{}, category string, privacy bool) (*models.Post, error) {
	if len(contents) == 0 {
		return nil, fmt.Errorf("post contents cannot be empty")
	}

	post, err := models.NewPost(owner, contents, category, privacy)
	if err != nil {
		return nil, err
	}

	if err := ps.userRepo.AppendPost(ctx, owner, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (ps *PostService) RemovePost(ctx context.Context, owner, postID string) error {
	if strings.TrimSpace(postID) == "" {
		return fmt.Errorf("post ID cannot be empty")
	}
	return ps.userRepo.RemovePost(ctx, owner, postID)
}

// Upvote records a +1 by voter on owner's post and notifies the owner.
func (ps *PostService) Upvote(ctx context.Context, owner, postID, voter string) error {
	return ps.vote(ctx, owner, postID, voter, 1)
}

// Downvote records a -1 by voter on owner's post.
func (ps *PostService) Downvote(ctx context.Context, owner, postID, voter string) error {
	return ps.vote(ctx, owner, postID, voter, -1)
}

func (ps *PostService) vote(ctx context.Context, owner, postID, voter string, vote int) error {
	if strings.TrimSpace(postID) == "" {
		return fmt.Errorf("post ID cannot be empty")
	}

	if err := ps.userRepo.CastVote(ctx, owner, postID, voter, vote); err != nil {
		return err
	}

	if vote > 0 && voter != owner {
		note := models.NewNotification(voter, "upvote", fmt.Sprintf("%s upvoted your idea", voter))
		// Votes land even when the notification write fails.
		_ = ps.userRepo.AddNotification(ctx, owner, note)
	}

	return nil
}

func (ps *PostService) Favorite(ctx context.Context, username string, ref models.PostRef) error {
	if strings.TrimSpace(ref.Owner) == "" || strings.TrimSpace(ref.PostID) == "" {
		return fmt.Errorf("favorite needs both an owner and a post ID")
	}
	return ps.userRepo.AddFavorite(ctx, username, ref)
}

func (ps *PostService) Favorites(ctx context.Context, username string) ([]models.PostRef, error) {
	return ps.userRepo.GetFavorites(ctx, username)
}

// Discover returns recent public posts from other users.
func (ps *PostService) Discover(ctx context.Context, viewer string, limit int) ([]models.Post, error) {
	return ps.userRepo.Discover(ctx, viewer, limit)
}

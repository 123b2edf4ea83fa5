package models

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestFollow(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("both documents present", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		repo := MongodbNewRepo(mt.Client)
		if err := repo.Follow(context.Background(), "bob", "alice"); err != nil {
			mt.Fatalf("Follow returned error: %v", err)
		}
	})

	mt.Run("missing target", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		repo := MongodbNewRepo(mt.Client)
		err := repo.Follow(context.Background(), "bob", "ghost")
		if !errors.Is(err, ErrNotFound) {
			mt.Errorf("Follow error = %v; want ErrNotFound", err)
		}
	})

	// A follower document that vanished between auth and the second
	// update must surface as not-found rather than silently leaving
	// the two follow lists out of step.
	mt.Run("missing follower", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		repo := MongodbNewRepo(mt.Client)
		err := repo.Follow(context.Background(), "ghost", "alice")
		if !errors.Is(err, ErrNotFound) {
			mt.Errorf("Follow error = %v; want ErrNotFound", err)
		}
	})
}

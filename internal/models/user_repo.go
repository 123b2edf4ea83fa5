package models

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersDbName  = "ideanote"
	UsersColName = "users"
)

// UserRepo is the persistence boundary for the credential and profile
// store. The auth collaborator uses GetUserByUsername to fetch the
// stored hash before verification; everything else is profile and feed
// maintenance on the embedded document.
type UserRepo interface {
	EnsureUserIndexes(ctx context.Context) error
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByFederatedID(ctx context.Context, provider, id string) (*User, error)
	UpdateUserFields(ctx context.Context, username string, fields map[string]interface{}) (*User, error)
	UpdatePasswordHash(ctx context.Context, username, hash string) error
	ChangeUsername(ctx context.Context, oldName, newName string) error
	DeleteUser(ctx context.Context, username string) error

	AppendPost(ctx context.Context, username string, post *Post) error
	RemovePost(ctx context.Context, username, postID string) error
	CastVote(ctx context.Context, owner, postID, voter string, vote int) error
	AddFavorite(ctx context.Context, username string, ref PostRef) error
	GetFavorites(ctx context.Context, username string) ([]PostRef, error)
	Follow(ctx context.Context, follower, target string) error
	AddNotification(ctx context.Context, username string, note Notification) error
	GetNotifications(ctx context.Context, username string) ([]Notification, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]*User, error)
	Discover(ctx context.Context, viewer string, limit int) ([]Post, error)
}

// EnsureUserIndexes creates the unique username index. Concurrent
// signups with the same username both pass any optimistic pre-check and
// rely on this index to reject the second insert atomically.
func (mdb *MongodbRepo) EnsureUserIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return err
	}

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("username_unique"),
		},
		{
			Keys:    bson.D{{Key: "facebook.id", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("facebook_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "gmail.id", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("gmail_id_idx"),
		},
	}

	_, err = col.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("error creating user indexes: %v", err)
	}

	return nil
}

func (mdb *MongodbRepo) CreateUser(ctx context.Context, user *User) (*User, error) {
	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return nil, err
	}

	_, err = col.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("%w: error inserting user: %v", ErrStorageUnavailable, err)
	}

	return user, nil
}

func (mdb *MongodbRepo) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return nil, err
	}

	var user User
	err = col.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: error finding user: %v", ErrStorageUnavailable, err)
	}

	return &user, nil
}

func (mdb *MongodbRepo) GetUserByFederatedID(ctx context.Context, provider, id string) (*User, error) {
	if provider != "facebook" && provider != "gmail" {
		return nil, fmt.Errorf("unknown identity provider: %s", provider)
	}
	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return nil, err
	}

	var user User
	err = col.FindOne(ctx, bson.M{provider + ".id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: error finding user: %v", ErrStorageUnavailable, err)
	}

	return &user, nil
}

// UpdateUserFields applies a partial $set update to profile fields. It
// never touches local.password; password changes go through
// UpdatePasswordHash so an unrelated profile edit can never re-hash or
// clobber the stored credential.
func (mdb *MongodbRepo) UpdateUserFields(ctx context.Context, username string, fields map[string]interface{}) (*User, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	delete(fields, "local.password")
	delete(fields, "username")

	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return nil, err
	}

	fields["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated User
	err = col.FindOneAndUpdate(ctx, bson.M{"username": username}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: error updating user: %v", ErrStorageUnavailable, err)
	}

	return &updated, nil
}

func (mdb *MongodbRepo) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return err
	}

	res, err := col.UpdateOne(ctx, bson.M{"username": username}, bson.M{
		"$set": bson.M{
			"local.password": hash,
			"updated_at":     time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: error updating password: %v", ErrStorageUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// ChangeUsername renames a user and rewrites the denormalized owner
// field on their embedded posts. The unique index rejects a rename onto
// an existing name.
func (mdb *MongodbRepo) ChangeUsername(ctx context.Context, oldName, newName string) error {
	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return err
	}

	res, err := col.UpdateOne(ctx, bson.M{"username": oldName}, bson.M{
		"$set": bson.M{
			"username":           newName,
			"posts.$[].username": newName,
			"updated_at":         time.Now(),
		},
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("%w: error changing username: %v", ErrStorageUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteUser removes the document. Follower lists pointing at the
// deleted name are weak references and are left to external
// reconciliation.
func (mdb *MongodbRepo) DeleteUser(ctx context.Context, username string) error {
	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return err
	}

	res, err := col.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return fmt.Errorf("%w: error deleting user: %v", ErrStorageUnavailable, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (mdb *MongodbRepo) AppendPost(ctx context.Context, username string, post *Post) error {
	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return err
	}

	res, err := col.UpdateOne(ctx, bson.M{"username": username}, bson.M{
		"$push": bson.M{"posts": post},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("%w: error appending post: %v", ErrStorageUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (mdb *MongodbRepo) RemovePost(ctx context.Context, username, postID string) error {
	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return err
	}

	res, err := col.UpdateOne(ctx, bson.M{"username": username}, bson.M{
		"$pull": bson.M{"posts": bson.M{"_id": postID}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("%w: error removing post: %v", ErrStorageUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// CastVote applies an upvote (+1) or downvote (-1) by voter on one of
// owner's posts. Re-voting in the same direction is a no-op; switching
// direction replaces the previous vote and moves the rating by two.
//
// Mongo cannot $pull and $push the same array in one update, so this
// runs as a read followed by up to two updates. Two concurrent votes by
// the same voter can interleave and leave the rating off by their
// difference; the vote record itself stays last-write-wins.
func (mdb *MongodbRepo) CastVote(ctx context.Context, owner, postID, voter string, vote int) error {
	if vote != 1 && vote != -1 {
		return fmt.Errorf("vote must be +1 or -1, got %d", vote)
	}

	user, err := mdb.GetUserByUsername(ctx, owner)
	if err != nil {
		return err
	}

	previous := 0
	found := false
	for _, p := range user.Posts {
		if p.ID != postID {
			continue
		}
		found = true
		for _, v := range p.UWV {
			if v.Username == voter {
				previous = v.Vote
			}
		}
	}
	if !found {
		return ErrNotFound
	}
	if previous == vote {
		return nil
	}

	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return err
	}

	filter := bson.M{"username": owner, "posts._id": postID}

	// $pull and $push cannot target the same array in one update.
	if previous != 0 {
		_, err = col.UpdateOne(ctx, filter, bson.M{
			"$pull": bson.M{"posts.$.uwv": bson.M{"username": voter}},
		})
		if err != nil {
			return fmt.Errorf("%w: error clearing previous vote: %v", ErrStorageUnavailable, err)
		}
	}

	_, err = col.UpdateOne(ctx, filter, bson.M{
		"$inc":  bson.M{"posts.$.rating": vote - previous},
		"$push": bson.M{"posts.$.uwv": Vote{Username: voter, Vote: vote}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("%w: error casting vote: %v", ErrStorageUnavailable, err)
	}

	return nil
}

func (mdb *MongodbRepo) AddFavorite(ctx context.Context, username string, ref PostRef) error {
	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return err
	}

	res, err := col.UpdateOne(ctx, bson.M{"username": username}, bson.M{
		"$addToSet": bson.M{"favorites": ref},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("%w: error adding favorite: %v", ErrStorageUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (mdb *MongodbRepo) GetFavorites(ctx context.Context, username string) ([]PostRef, error) {
	user, err := mdb.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.Favorites, nil
}

// Follow adds follower to target's followers set and target to
// follower's following set. $addToSet keeps both idempotent.
func (mdb *MongodbRepo) Follow(ctx context.Context, follower, target string) error {
	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return err
	}

	res, err := col.UpdateOne(ctx, bson.M{"username": target}, bson.M{
		"$addToSet": bson.M{"followers": follower},
	})
	if err != nil {
		return fmt.Errorf("%w: error updating followers: %v", ErrStorageUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	res, err = col.UpdateOne(ctx, bson.M{"username": follower}, bson.M{
		"$addToSet": bson.M{"following": target},
	})
	if err != nil {
		return fmt.Errorf("%w: error updating following: %v", ErrStorageUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (mdb *MongodbRepo) AddNotification(ctx context.Context, username string, note Notification) error {
	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return err
	}

	res, err := col.UpdateOne(ctx, bson.M{"username": username}, bson.M{
		"$push": bson.M{"notifications": note},
	})
	if err != nil {
		return fmt.Errorf("%w: error adding notification: %v", ErrStorageUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (mdb *MongodbRepo) GetNotifications(ctx context.Context, username string) ([]Notification, error) {
	user, err := mdb.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.Notifications, nil
}

func (mdb *MongodbRepo) SearchUsers(ctx context.Context, query string, limit int) ([]*User, error) {
	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 20
	}

	filter := bson.M{"username": bson.M{
		"$regex":   "^" + regexp.QuoteMeta(query),
		"$options": "i",
	}}
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "username", Value: 1}})

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: error searching users: %v", ErrStorageUnavailable, err)
	}
	defer cursor.Close(ctx)

	var users []*User
	for cursor.Next(ctx) {
		var u User
		if err := cursor.Decode(&u); err != nil {
			return nil, fmt.Errorf("error decoding user: %v", err)
		}
		users = append(users, &u)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: cursor error: %v", ErrStorageUnavailable, err)
	}

	return users, nil
}

// Discover returns recent public posts authored by users other than the
// viewer, newest first.
func (mdb *MongodbRepo) Discover(ctx context.Context, viewer string, limit int) ([]Post, error) {
	col, err := mdb.GetCollection(ctx, UsersDbName, UsersColName)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": bson.M{"$ne": viewer}}}},
		{{Key: "$unwind", Value: "$posts"}},
		{{Key: "$match", Value: bson.M{"posts.privacy": false}}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$posts"}}},
		{{Key: "$sort", Value: bson.M{"date": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: error aggregating discover feed: %v", ErrStorageUnavailable, err)
	}
	defer cursor.Close(ctx)

	var posts []Post
	for cursor.Next(ctx) {
		var p Post
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("error decoding post: %v", err)
		}
		posts = append(posts, p)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: cursor error: %v", ErrStorageUnavailable, err)
	}

	return posts, nil
}

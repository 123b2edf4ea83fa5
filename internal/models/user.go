package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teris-io/shortid"
)

const (
	DefaultTheme    = "default"
	DefaultImageURL = "/img/gravatar.jpg"
)

// LocalCredentials holds the email/password identity for a user.
// Password carries a plaintext value only while the record is in flight
// during signup or a password change; after the prepare-for-storage step
// it holds a bcrypt hash and nothing else is ever persisted.
type LocalCredentials struct {
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
	Password string `bson:"password" json:"-"`
}

// FederatedIdentity is one provider slot (facebook, gmail).
type FederatedIdentity struct {
	ID    string `bson:"id,omitempty" json:"id,omitempty"`
	Token string `bson:"token,omitempty" json:"-"`
}

// Vote records a single upvote or downvote on a post. Vote is +1 or -1.
type Vote struct {
	Username string `bson:"username" json:"username"`
	Vote     int    `bson:"vote" json:"vote"`
}

// Post is an idea entry embedded in its owner's document.
type Post struct {
	ID       string        `bson:"_id" json:"id"`
	Contents []interface{} `bson:"contents" json:"contents"` // opaque rich body, owned by callers
	Username string        `bson:"username" json:"username"` // denormalized owner
	Date     time.Time     `bson:"date" json:"date"`
	Privacy  bool          `bson:"privacy" json:"privacy"`
	Rating   int           `bson:"rating" json:"rating"`
	Category string        `bson:"category" json:"category"`
	UWV      []Vote        `bson:"uwv" json:"uwv"`
}

// PostRef points at a post embedded in some user's document.
type PostRef struct {
	Owner  string `bson:"owner" json:"owner"`
	PostID string `bson:"post_id" json:"post_id"`
}

type Notification struct {
	ID   string    `bson:"id" json:"id"`
	From string    `bson:"from" json:"from"`
	Kind string    `bson:"kind" json:"kind"`
	Text string    `bson:"text" json:"text"`
	Date time.Time `bson:"date" json:"date"`
}

// User is the sole persisted entity. Posts, followers, favorites and
// notifications are embedded rather than stored in separate collections.
// Followers and following hold bare usernames: weak references, deleting
// the target user does not cascade here.
type User struct {
	ID            uuid.UUID         `bson:"_id" json:"id"`
	Username      string            `bson:"username" json:"username" validate:"required,min=2,max=32"`
	Local         LocalCredentials  `bson:"local" json:"local"`
	Facebook      FederatedIdentity `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Gmail         FederatedIdentity `bson:"gmail,omitempty" json:"gmail,omitempty"`
	Posts         []Post            `bson:"posts" json:"posts"`
	Followers     []string          `bson:"followers" json:"followers"`
	Following     []string          `bson:"following" json:"following"`
	Favorites     []PostRef         `bson:"favorites" json:"favorites"`
	Notifications []Notification    `bson:"notifications" json:"notifications"`
	Theme         string            `bson:"theme" json:"theme"`
	ImageURL      string            `bson:"imageUrl" json:"imageUrl"`
	CreatedAt     time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `bson:"updated_at" json:"updated_at"`

	// PendingPassword holds the plaintext submitted at signup or on a
	// password change. It is never written to the database; the prepare
	// step hashes it into Local.Password and clears it.
	PendingPassword string `bson:"-" json:"password,omitempty"`
}

// ApplyDefaults assigns the id and default profile fields expected at
// creation time.
func (u *User) ApplyDefaults() {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Theme == "" {
		u.Theme = DefaultTheme
	}
	if u.ImageURL == "" {
		u.ImageURL = DefaultImageURL
	}
	if u.Posts == nil {
		u.Posts = []Post{}
	}
	if u.Followers == nil {
		u.Followers = []string{}
	}
	if u.Following == nil {
		u.Following = []string{}
	}
	if u.Favorites == nil {
		u.Favorites = []PostRef{}
	}
	if u.Notifications == nil {
		u.Notifications = []Notification{}
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

// NewPost builds an idea post for the given owner with a freshly
// generated short id.
func NewPost(owner string, contents []interface{}, category string, privacy bool) (*Post, error) {
	id, err := shortid.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate post id: %v", err)
	}
	return &Post{
		ID:       id,
		Contents: contents,
		Username: owner,
		Date:     time.Now(),
		Privacy:  privacy,
		Category: category,
		UWV:      []Vote{},
	}, nil
}

// NewNotification builds a notification record addressed from one user
// to another.
func NewNotification(from, kind, text string) Notification {
	return Notification{
		ID:   uuid.New().String(),
		From: from,
		Kind: kind,
		Text: text,
		Date: time.Now(),
	}
}

// PublicPosts returns the posts visible to a viewer. Owners see all of
// their own posts; everyone else only sees non-private ones.
func (u *User) PublicPosts(viewer string) []Post {
	if viewer == u.Username {
		return u.Posts
	}
	visible := make([]Post, 0, len(u.Posts))
	for _, p := range u.Posts {
		if !p.Privacy {
			visible = append(visible, p)
		}
	}
	return visible
}

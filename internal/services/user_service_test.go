package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ideanote/internal/credentials"
	"ideanote/internal/models"
)

// memRepo is an in-memory UserRepo covering the flows the services
// exercise. The embedded interface satisfies the rest.
type memRepo struct {
	models.UserRepo
	users map[string]*models.User
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]*models.User)}
}

func (m *memRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, exists := m.users[user.Username]; exists {
		return nil, models.ErrDuplicateUsername
	}
	stored := *user
	m.users[user.Username] = &stored
	return user, nil
}

func (m *memRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memRepo) UpdateUserFields(ctx context.Context, username string, fields map[string]interface{}) (*models.User, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	delete(fields, "local.password")
	if theme, ok := fields["theme"].(string); ok {
		user.Theme = theme
	}
	if img, ok := fields["imageUrl"].(string); ok {
		user.ImageURL = img
	}
	copied := *user
	return &copied, nil
}

func (m *memRepo) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	user, ok := m.users[username]
	if !ok {
		return models.ErrNotFound
	}
	user.Local.Password = hash
	return nil
}

func (m *memRepo) DeleteUser(ctx context.Context, username string) error {
	if _, ok := m.users[username]; !ok {
		return models.ErrNotFound
	}
	delete(m.users, username)
	return nil
}

func (m *memRepo) Follow(ctx context.Context, follower, target string) error {
	t, ok := m.users[target]
	if !ok {
		return models.ErrNotFound
	}
	t.Followers = append(t.Followers, follower)
	if f, ok := m.users[follower]; ok {
		f.Following = append(f.Following, target)
	}
	return nil
}

func (m *memRepo) AddNotification(ctx context.Context, username string, note models.Notification) error {
	user, ok := m.users[username]
	if !ok {
		return models.ErrNotFound
	}
	user.Notifications = append(user.Notifications, note)
	return nil
}

func (m *memRepo) GetNotifications(ctx context.Context, username string) ([]models.Notification, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	return user.Notifications, nil
}

func newTestService(t *testing.T) (*UserService, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	pool := credentials.NewPool(credentials.NewBcryptHasherWithCost(bcrypt.MinCost), 2, 8)
	t.Cleanup(pool.Close)
	return NewUserService(repo, pool), repo
}

func signupAlice(t *testing.T, svc *UserService) *models.User {
	t.Helper()
	user := &models.User{Username: "alice", PendingPassword: "Correcthorse1"}
	created, err := svc.Signup(context.Background(), user)
	require.NoError(t, err)
	return created
}

func TestSignup_PersistsHashNotPlaintext(t *testing.T) {
	svc, repo := newTestService(t)
	signupAlice(t, svc)

	stored := repo.users["alice"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "Correcthorse1", stored.Local.Password)
	assert.NotEmpty(t, stored.Local.Password)
	assert.Empty(t, stored.PendingPassword, "plaintext must be cleared before persistence")

	// The stored value must be a verifiable hash of the original.
	err := bcrypt.CompareHashAndPassword([]byte(stored.Local.Password), []byte("Correcthorse1"))
	assert.NoError(t, err)
}

func TestSignup_PasswordContainingUsername(t *testing.T) {
	svc, repo := newTestService(t)

	user := &models.User{Username: "alice", PendingPassword: "Alice12345"}
	_, err := svc.Signup(context.Background(), user)
	require.NoError(t, err)

	assert.NotEqual(t, "Alice12345", repo.users["alice"].Local.Password)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	svc, repo := newTestService(t)
	signupAlice(t, svc)

	second := &models.User{Username: "alice", PendingPassword: "Another1pass"}
	_, err := svc.Signup(context.Background(), second)
	assert.ErrorIs(t, err, models.ErrDuplicateUsername)
	assert.Len(t, repo.users, 1, "the losing create must not leave a partial record")
}

func TestSignup_AppliesDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	created := signupAlice(t, svc)

	assert.Equal(t, models.DefaultTheme, created.Theme)
	assert.Equal(t, models.DefaultImageURL, created.ImageURL)
}

func TestSignup_RejectsMissingAndWeakPasswords(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Signup(context.Background(), &models.User{Username: "alice"})
	assert.Error(t, err)

	_, err = svc.Signup(context.Background(), &models.User{Username: "alice", PendingPassword: "weak"})
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	signupAlice(t, svc)

	user, err := svc.Authenticate(context.Background(), "alice", "Correcthorse1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.Authenticate(context.Background(), "alice", "Wrongpass1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	// An unknown username is externally indistinguishable from a
	// password mismatch.
	_, err = svc.Authenticate(context.Background(), "bob", "Anything123")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}

func TestAuthenticate_CorruptHashIsNotAMismatch(t *testing.T) {
	svc, repo := newTestService(t)
	signupAlice(t, svc)

	repo.users["alice"].Local.Password = "garbage-not-a-bcrypt-hash"

	_, err := svc.Authenticate(context.Background(), "alice", "Correcthorse1")
	assert.ErrorIs(t, err, models.ErrCredentialFormat)
	assert.NotErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestUpdateTheme_DoesNotTouchHash(t *testing.T) {
	svc, repo := newTestService(t)
	signupAlice(t, svc)

	before := repo.users["alice"].Local.Password

	updated, err := svc.UpdateTheme(context.Background(), "alice", "dark")
	require.NoError(t, err)
	assert.Equal(t, "dark", updated.Theme)
	assert.Equal(t, before, repo.users["alice"].Local.Password, "profile edits must not re-hash the credential")
}

func TestPrepareForStorage_SkipsWithoutPendingPassword(t *testing.T) {
	svc, _ := newTestService(t)

	user := &models.User{Username: "alice", Local: models.LocalCredentials{Password: "$existing-hash"}}
	err := svc.PrepareForStorage(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "$existing-hash", user.Local.Password)
}

func TestChangePassword(t *testing.T) {
	svc, repo := newTestService(t)
	signupAlice(t, svc)

	oldHash := repo.users["alice"].Local.Password

	err := svc.ChangePassword(context.Background(), "alice", "Correcthorse1", "Newpassword2")
	require.NoError(t, err)

	newHash := repo.users["alice"].Local.Password
	assert.NotEqual(t, oldHash, newHash)
	assert.NotEqual(t, "Newpassword2", newHash)

	_, err = svc.Authenticate(context.Background(), "alice", "Newpassword2")
	assert.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), "alice", "Correcthorse1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	svc, repo := newTestService(t)
	signupAlice(t, svc)

	before := repo.users["alice"].Local.Password

	err := svc.ChangePassword(context.Background(), "alice", "Wrongpass1", "Newpassword2")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Equal(t, before, repo.users["alice"].Local.Password)
}

func TestFollow(t *testing.T) {
	svc, repo := newTestService(t)
	signupAlice(t, svc)

	bob := &models.User{Username: "bob", PendingPassword: "Bobpassword1"}
	_, err := svc.Signup(context.Background(), bob)
	require.NoError(t, err)

	err = svc.Follow(context.Background(), "bob", "alice")
	require.NoError(t, err)

	assert.Contains(t, repo.users["alice"].Followers, "bob")
	assert.Contains(t, repo.users["bob"].Following, "alice")

	notes, err := svc.Notifications(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "bob", notes[0].From)
	assert.Equal(t, "follow", notes[0].Kind)
}

func TestFollow_Self(t *testing.T) {
	svc, _ := newTestService(t)
	signupAlice(t, svc)

	err := svc.Follow(context.Background(), "alice", "alice")
	assert.Error(t, err)
}

func TestGetProfile_FiltersPrivatePosts(t *testing.T) {
	svc, repo := newTestService(t)
	signupAlice(t, svc)

	repo.users["alice"].Posts = []models.Post{
		{ID: "pub", Privacy: false},
		{ID: "priv", Privacy: true},
	}

	own, err := svc.GetProfile(context.Background(), "alice", "alice")
	require.NoError(t, err)
	assert.Len(t, own.Posts, 2)

	theirs, err := svc.GetProfile(context.Background(), "alice", "bob")
	require.NoError(t, err)
	require.Len(t, theirs.Posts, 1)
	assert.Equal(t, "pub", theirs.Posts[0].ID)
}

func TestDeleteAccount(t *testing.T) {
	svc, repo := newTestService(t)
	signupAlice(t, svc)

	err := svc.DeleteAccount(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, repo.users)

	err = svc.DeleteAccount(context.Background(), "alice")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSignupLoginScenario(t *testing.T) {
	svc, repo := newTestService(t)

	created, err := svc.Signup(context.Background(), &models.User{
		Username:        "alice",
		PendingPassword: "Correcthorse1",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEqual(t, "Correcthorse1", repo.users["alice"].Local.Password)

	_, err = svc.Authenticate(context.Background(), "alice", "Correcthorse1")
	assert.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "bob", "anything")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

// Guards against the fake drifting from the interface.
var _ models.UserRepo = (*memRepo)(nil)

func ExampleUserService_Signup() {
	repo := newMemRepo()
	pool := credentials.NewPool(credentials.NewBcryptHasherWithCost(bcrypt.MinCost), 1, 1)
	defer pool.Close()

	svc := NewUserService(repo, pool)
	user, _ := svc.Signup(context.Background(), &models.User{
		Username:        "alice",
		PendingPassword: "Correcthorse1",
	})
	fmt.Println(user.Theme, user.ImageURL)
	// Output: default /img/gravatar.jpg
}

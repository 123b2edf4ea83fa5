package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ideanote/internal/credentials"
	"ideanote/internal/helpers"
	"ideanote/internal/models"
)

// dummyHash is a valid bcrypt hash compared against when a login names
// an unknown user, so the response time does not reveal whether the
// username exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type UserService struct {
	userRepo models.UserRepo
	pool     *credentials.Pool
}

func NewUserService(userRepo models.UserRepo, pool *credentials.Pool) *UserService {
	return &UserService{
		userRepo: userRepo,
		pool:     pool,
	}
}

// PrepareForStorage hashes the pending plaintext password into
// Local.Password, if there is one. The hash-or-skip decision is this
// explicit branch: records without a pending password pass through
// untouched, so profile edits never re-hash an existing credential.
// On hashing failure the record is left unpersistable (no hash set)
// and the caller must abort the write.
func (us *UserService) PrepareForStorage(ctx context.Context, user *models.User) error {
	if user.PendingPassword == "" {
		return nil
	}

	hash, err := us.pool.Hash(ctx, user.PendingPassword)
	if err != nil {
		return err
	}

	user.Local.Password = hash
	user.PendingPassword = ""
	return nil
}

// Signup creates a new user. The pending plaintext is hashed before
// anything is persisted; a username collision surfaces as
// models.ErrDuplicateUsername from the storage tier's unique index.
func (us *UserService) Signup(ctx context.Context, user *models.User) (*models.User, error) {
	user.Username = strings.TrimSpace(user.Username)

	if err := models.Validate.Struct(user); err != nil {
		return nil, err
	}
	if user.PendingPassword == "" {
		return nil, fmt.Errorf("password is required")
	}
	if !helpers.IsPasswordStrong(user.PendingPassword) {
		return nil, fmt.Errorf("password is not strong enough")
	}

	user.ApplyDefaults()

	if err := us.PrepareForStorage(ctx, user); err != nil {
		return nil, err
	}

	return us.userRepo.CreateUser(ctx, user)
}

// Authenticate verifies a username/password pair. An unknown username
// and a wrong password are indistinguishable to the caller: both come
// back as models.ErrInvalidCredentials. A malformed stored hash
// surfaces as models.ErrCredentialFormat so corrupt records are not
// mistaken for failed logins.
func (us *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := us.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Burn a comparison anyway to keep timing uniform.
			_, _ = us.pool.Compare(ctx, password, dummyHash)
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := us.pool.Compare(ctx, password, user.Local.Password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, models.ErrInvalidCredentials
	}

	return user, nil
}

// GetProfile returns a user with posts filtered for the viewer.
func (us *UserService) GetProfile(ctx context.Context, username, viewer string) (*models.User, error) {
	user, err := us.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	user.Posts = user.PublicPosts(viewer)
	return user, nil
}

func (us *UserService) UpdateTheme(ctx context.Context, username, theme string) (*models.User, error) {
	if strings.TrimSpace(theme) == "" {
		theme = models.DefaultTheme
	}
	return us.userRepo.UpdateUserFields(ctx, username, map[string]interface{}{"theme": theme})
}

func (us *UserService) UpdateImage(ctx context.Context, username, imageURL string) (*models.User, error) {
	if strings.TrimSpace(imageURL) == "" {
		imageURL = models.DefaultImageURL
	}
	return us.userRepo.UpdateUserFields(ctx, username, map[string]interface{}{"imageUrl": imageURL})
}

func (us *UserService) ChangeUsername(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if err := models.Validate.Var(newName, "required,min=2,max=32"); err != nil {
		return fmt.Errorf("invalid username: %v", err)
	}
	if newName == oldName {
		return nil
	}
	return us.userRepo.ChangeUsername(ctx, oldName, newName)
}

// ChangePassword verifies the current password, then re-enters the
// pending-plaintext state for the new one and stores its hash.
func (us *UserService) ChangePassword(ctx context.Context, username, current, next string) error {
	if !helpers.IsPasswordStrong(next) {
		return fmt.Errorf("password is not strong enough")
	}

	user, err := us.Authenticate(ctx, username, current)
	if err != nil {
		return err
	}

	user.PendingPassword = next
	if err := us.PrepareForStorage(ctx, user); err != nil {
		return err
	}

	return us.userRepo.UpdatePasswordHash(ctx, username, user.Local.Password)
}

func (us *UserService) DeleteAccount(ctx context.Context, username string) error {
	return us.userRepo.DeleteUser(ctx, username)
}

// Follow subscribes follower to target's feed and drops a notification
// into target's mailbox.
func (us *UserService) Follow(ctx context.Context, follower, target string) error {
	if follower == target {
		return fmt.Errorf("cannot follow yourself")
	}

	if err := us.userRepo.Follow(ctx, follower, target); err != nil {
		return err
	}

	note := models.NewNotification(follower, "follow", fmt.Sprintf("%s started following you", follower))
	if err := us.userRepo.AddNotification(ctx, target, note); err != nil {
		return fmt.Errorf("followed but failed to notify: %v", err)
	}

	return nil
}

func (us *UserService) Notifications(ctx context.Context, username string) ([]models.Notification, error) {
	return us.userRepo.GetNotifications(ctx, username)
}

// Search finds users by case-insensitive username prefix. Password
// hashes are stripped before the results leave the service.
func (us *UserService) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	users, err := us.userRepo.SearchUsers(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.Local.Password = ""
	}
	return users, nil
}

// FederatedLogin resolves a provider identity (facebook, gmail) to a
// local user. Unknown identities come back as models.ErrNotFound; the
// caller decides whether that means signup.
func (us *UserService) FederatedLogin(ctx context.Context, provider, subject string) (*models.User, error) {
	if subject == "" {
		return nil, fmt.Errorf("federated subject is required")
	}
	return us.userRepo.GetUserByFederatedID(ctx, provider, subject)
}

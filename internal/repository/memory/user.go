package memory

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/eventhub/internal/apperror"
	"github.com/sakif/eventhub/internal/model"
)

// UserStore is the UserRepository view of a Store.
type UserStore struct {
	s *Store
}

// Create inserts a new user. The duplicate-email check and both writes (the
// user record and the email index entry) happen under one lock acquisition,
// so there is no window where one exists without the other.
func (u *UserStore) Create(_ context.Context, user *model.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, exists := u.s.emailIndex[user.Email]; exists {
		return apperror.ValidationFailed("email", "email is already registered")
	}

	user.ID = xid.New().String()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	// Store a copy so later mutation of the caller's struct can't reach
	// into the store.
	stored := *user
	u.s.users[user.ID] = &stored
	u.s.emailIndex[user.Email] = user.ID
	if user.GitHubID != 0 {
		u.s.githubIndex[user.GitHubID] = user.ID
	}

	return nil
}

// GetByID returns a copy of the user, or apperror.ErrNotFound.
func (u *UserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

// GetByEmail looks a user up via the email index. Case-sensitive.
func (u *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	id, ok := u.s.emailIndex[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	result := *u.s.users[id]
	return &result, nil
}

// GetByGitHubID looks a user up via the GitHub index.
func (u *UserStore) GetByGitHubID(_ context.Context, githubID int64) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	id, ok := u.s.githubIndex[githubID]
	if !ok {
		return nil, apperror.NotFound("user", "github account")
	}
	result := *u.s.users[id]
	return &result, nil
}

// Update persists mutable user fields.
func (u *UserStore) Update(_ context.Context, user *model.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	existing, ok := u.s.users[user.ID]
	if !ok {
		return apperror.NotFound("user", user.ID)
	}

	user.UpdatedAt = time.Now().UTC()

	// A GitHub link can be added after account creation (social sign-in
	// matching an existing email); keep the index in step.
	if user.GitHubID != 0 && user.GitHubID != existing.GitHubID {
		u.s.githubIndex[user.GitHubID] = user.ID
	}

	stored := *user
	u.s.users[user.ID] = &stored
	return nil
}

// Count returns the number of user accounts.
func (u *UserStore) Count(_ context.Context) (int, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	return len(u.s.users), nil
}

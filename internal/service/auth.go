// Package service contains the business logic layer of the application.
//
// Handlers parse requests and write responses; services validate input,
// enforce the business rules, and orchestrate repositories; repositories
// read and write the store. Every rule lives here exactly once, shared by
// both storage backends — duplicating validation or booking arithmetic per
// backend is how the copies drift apart.
//
// Services accept primitives and domain structs, never *http.Request, and
// return apperror domain errors, never status codes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/eventhub/internal/apperror"
	"github.com/sakif/eventhub/internal/auth"
	"github.com/sakif/eventhub/internal/model"
	"github.com/sakif/eventhub/internal/repository"
)

// MinPasswordLength is the shortest password sign-up accepts.
const MinPasswordLength = 8

// AuthService handles identity: sign-up, sign-in, social sign-in, and
// profile reads/updates.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger

	// dummyHash is compared against on sign-in paths that have no stored
	// hash, so unknown emails and social-only accounts cost the same bcrypt
	// work as a wrong password.
	dummyHash string
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	// The input is short, so Hash cannot fail here.
	dummyHash, _ := passwords.Hash("timing-equalizer")
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
		dummyHash: dummyHash,
	}
}

// AuthResult bundles the user record and the issued token so the handler
// can respond with both in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// SignUp registers a new email/password account and signs it in.
//
// Email matching is case-sensitive end to end: the address is stored as
// given (after trimming surrounding whitespace) and the uniqueness check
// compares exact bytes. Duplicate emails surface as a validation error, not
// a conflict, matching the API contract's 400 for sign-up failures.
func (s *AuthService) SignUp(ctx context.Context, email, password, firstName, lastName string) (*AuthResult, error) {
	email = strings.TrimSpace(email)

	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "email is not valid")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password is too long")
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Duplicate email comes back as a validation error from the
		// repository; pass it through untouched.
		return nil, err
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return s.issueFor(user)
}

// SignIn authenticates an email/password pair.
//
// Unknown email, wrong password, and social-only accounts (no password set)
// all return the same unauthenticated error, and each failure path costs
// one bcrypt compare, so neither the response nor its timing reveals which
// emails are registered.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)

	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Burn a compare anyway; without it the response time would reveal
		// whether the email is registered.
		_ = s.passwords.Verify(s.dummyHash, password)
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	if user.PasswordHash == "" {
		// Social-only account: there is no password to check, but the
		// compare still runs so this path is not distinguishable either.
		_ = s.passwords.Verify(s.dummyHash, password)
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID))

	return s.issueFor(user)
}

// LoginOrRegisterGitHub completes a GitHub social sign-in.
//
// Resolution order:
//  1. A user already linked to this GitHub id → sign them in.
//  2. An existing account with the same (public) email → link the GitHub id
//     to it and sign in.
//  3. Otherwise create a fresh account from the GitHub profile — this is
//     the "created on first social sign-in" path. Such accounts have no
//     password and can only sign in via GitHub.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user, err := s.users.GetByGitHubID(ctx, ghUser.ID)
	if err == nil {
		s.logger.Info("user signed in via GitHub", slog.String("userID", user.ID))
		return s.issueFor(user)
	}

	if ghUser.Email != "" {
		if existing, err := s.users.GetByEmail(ctx, ghUser.Email); err == nil {
			existing.GitHubID = ghUser.ID
			if err := s.users.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("service/auth: linking GitHub account: %w", err)
			}
			s.logger.Info("linked GitHub account",
				slog.String("userID", existing.ID),
				slog.Int64("githubID", ghUser.ID),
			)
			return s.issueFor(existing)
		}
	}

	firstName, lastName := splitName(ghUser.Name, ghUser.Login)
	user = &model.User{
		Email:     ghUser.Email,
		FirstName: firstName,
		LastName:  lastName,
		GitHubID:  ghUser.ID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user from GitHub profile: %w", err)
	}

	s.logger.Info("user created via GitHub sign-in",
		slog.String("userID", user.ID),
		slog.Int64("githubID", ghUser.ID),
	)

	return s.issueFor(user)
}

// Profile returns the user record for an authenticated subject.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile changes the user's first and last name — the only mutable
// profile fields. An empty string means "leave unchanged".
func (s *AuthService) UpdateProfile(ctx context.Context, userID, firstName, lastName string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if firstName = strings.TrimSpace(firstName); firstName != "" {
		user.FirstName = firstName
	}
	if lastName = strings.TrimSpace(lastName); lastName != "" {
		user.LastName = lastName
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: updating profile: %w", err)
	}

	s.logger.Info("profile updated", slog.String("userID", user.ID))

	return user, nil
}

// issueFor mints a token for the user and bundles the result.
func (s *AuthService) issueFor(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// splitName derives first/last name from a GitHub display name, falling
// back to the login when no display name is set.
func splitName(name, login string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return login, ""
	}
	first, last, found := strings.Cut(name, " ")
	if !found {
		return name, ""
	}
	return first, strings.TrimSpace(last)
}

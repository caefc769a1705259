package services

import (
	"context"
	"regexp"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/auth"
	"github.com/anonto42/instaclone/backend/internal/logger"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/internal/storage"
	"github.com/anonto42/instaclone/backend/internal/validators"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

var usernameUnsafe = regexp.MustCompile(`[^A-Za-z0-9_.]`)

// IDTokenVerifier is satisfied by the Firebase auth client.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// AuthResult is returned by every login path.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// SearchResult is a user found by Search with the viewer's edge toward them.
type SearchResult struct {
	models.UserCompact
	IsFollowed bool `json:"is_followed"`
	IsPending  bool `json:"is_pending"`
}

type UserService struct {
	store       *repositories.Store
	media       storage.MediaStore
	tokens      *auth.TokenManager
	revocations auth.RevocationStore
	firebase    IDTokenVerifier
}

// NewUserService wires the user directory. firebase may be nil, in which
// case FirebaseLogin is rejected.
func NewUserService(store *repositories.Store, media storage.MediaStore, tokens *auth.TokenManager, revocations auth.RevocationStore, firebase IDTokenVerifier) *UserService {
	return &UserService{
		store:       store,
		media:       media,
		tokens:      tokens,
		revocations: revocations,
		firebase:    firebase,
	}
}

func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validators.ValidUsername(username) {
		return nil, apperrors.Validation("username", "username must be 3-30 letters, digits, '.' or '_'")
	}
	if email == "" {
		return nil, apperrors.Validation("email", "email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperrors.Validation("password", "password must be at least 8 characters")
	}

	if err := s.ensureAvailable(ctx, username, email, 0); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Name:     strings.TrimSpace(req.Name),
		Bio:      strings.TrimSpace(req.Bio),
		Gender:   req.Gender,
	}
	if err := s.store.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("username or email already registered")
		}
		return nil, err
	}

	logger.Log.Info("User registered", logger.WithUserID(user.ID), zap.String("username", user.Username))
	return s.issue(user)
}

// Authenticate checks a username and password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.Users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Validation("", "invalid credentials")
		}
		return nil, err
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperrors.Validation("", "invalid credentials")
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Logout revokes the token described by claims until it expires.
func (s *UserService) Logout(ctx context.Context, claims *models.JwtCustomClaims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// FirebaseLogin verifies a Firebase ID token and signs in the matching
// local user, linking by email or creating one on first login.
func (s *UserService) FirebaseLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.firebase == nil {
		return nil, apperrors.Unauthorized("firebase login is not configured")
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid Firebase ID token")
	}
	email, _ := token.Claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	name, _ := token.Claims["name"].(string)
	verified, _ := token.Claims["email_verified"].(bool)

	user, err := s.store.Users.GetUserByFirebaseUID(ctx, token.UID)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrNotFound):
		user, err = s.linkOrCreate(ctx, token.UID, email, name, verified)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return s.issue(user)
}

// linkOrCreate attaches uid to the account owning email. Linking requires
// the provider to have verified the address.
func (s *UserService) linkOrCreate(ctx context.Context, uid, email, name string, emailVerified bool) (*models.User, error) {
	if email == "" {
		return nil, apperrors.Validation("email", "Firebase account has no email")
	}
	user, err := s.store.Users.GetUserByEmail(ctx, email)
	if err == nil {
		if !emailVerified {
			return nil, apperrors.Unauthorized("email is not verified")
		}
		user.FirebaseUID = &uid
		if err := s.store.Users.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	username, err := s.freeUsername(ctx, email)
	if err != nil {
		return nil, err
	}
	user = &models.User{Username: username, Email: email, Name: name, FirebaseUID: &uid}
	if err := s.store.Users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	logger.Log.Info("User created from Firebase login", logger.WithUserID(user.ID))
	return user, nil
}

// freeUsername derives an unused username from an email's local part.
func (s *UserService) freeUsername(ctx context.Context, email string) (string, error) {
	base := usernameUnsafe.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
	if len(base) > 24 {
		base = base[:24]
	}
	for len(base) < 3 {
		base += "_"
	}
	candidate := base
	for i := 0; i < 5; i++ {
		taken, err := s.store.Users.UsernameTaken(ctx, candidate, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "_" + uuid.NewString()[:5]
	}
	return "", apperrors.Conflict("could not allocate a username")
}

// UpdateProfile applies the non-empty fields of req. A non-nil avatar is
// cropped to a square JPEG and stored as the profile picture.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req models.UpdateProfileRequest, avatar *storage.Upload) (*models.User, error) {
	user, err := s.store.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user")
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username != "" && !validators.ValidUsername(username) {
		return nil, apperrors.Validation("username", "username must be 3-30 letters, digits, '.' or '_'")
	}
	if err := s.ensureAvailable(ctx, username, email, user.ID); err != nil {
		return nil, err
	}

	if username != "" {
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}
	if req.Name != "" {
		user.Name = strings.TrimSpace(req.Name)
	}
	if req.Bio != "" {
		user.Bio = strings.TrimSpace(req.Bio)
	}
	if req.Gender != "" {
		user.Gender = req.Gender
	}

	if avatar != nil {
		resized, err := storage.ResizeAvatar(avatar.Data)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedMedia) {
				return nil, apperrors.Validation("profile_picture", "profile picture must be an image")
			}
			return nil, err
		}
		res, err := s.media.Save(ctx, "avatars", resized, "image/jpeg", ".jpg")
		if err != nil {
			return nil, err
		}
		user.ProfilePicture = res.URL
	}

	if err := s.store.Users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("username or email already registered")
		}
		return nil, err
	}
	return user, nil
}

// TogglePrivate flips the account's privacy and returns the new value.
func (s *UserService) TogglePrivate(ctx context.Context, userID uint) (bool, error) {
	var isPrivate bool
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		user, err := tx.Users.GetUserByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, "user")
		}
		user.IsPrivate = !user.IsPrivate
		isPrivate = user.IsPrivate
		return tx.Users.UpdateUser(ctx, user)
	})
	return isPrivate, err
}

// Search matches username or name, case-insensitively, excluding the
// viewer. A blank query matches nobody.
func (s *UserService) Search(ctx context.Context, viewerID uint, query string) ([]SearchResult, error) {
	results := []SearchResult{}
	query = strings.TrimSpace(query)
	if query == "" {
		return results, nil
	}

	users, err := s.store.Users.SearchUsers(ctx, query, viewerID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	states, err := s.store.Follows.GetFollowStates(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	for i := range users {
		approved, ok := states[users[i].ID]
		results = append(results, SearchResult{
			UserCompact: users[i].ToCompact(),
			IsFollowed:  ok && approved,
			IsPending:   ok && !approved,
		})
	}
	return results, nil
}

func (s *UserService) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.store.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user")
	}
	return user, nil
}

func (s *UserService) ensureAvailable(ctx context.Context, username, email string, exceptID uint) error {
	if username != "" {
		taken, err := s.store.Users.UsernameTaken(ctx, username, exceptID)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Conflict("username already taken")
		}
	}
	if email != "" {
		taken, err := s.store.Users.EmailTaken(ctx, email, exceptID)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Conflict("email already registered")
		}
	}
	return nil
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

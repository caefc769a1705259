package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/auth"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/storage"
)

type fakeVerifier struct {
	tokens map[string]*fbauth.Token
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*fbauth.Token, error) {
	if t, ok := f.tokens[idToken]; ok {
		return t, nil
	}
	return nil, errors.New("bad token")
}

func registerRequest(username string) models.RegisterRequest {
	return models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
		Name:     "Test " + username,
	}
}

func (s *ServiceTestSuite) TestRegisterAndLogin() {
	res, err := s.users.Register(s.ctx, registerRequest("alice"))
	s.Require().NoError(err)
	s.NotEmpty(res.Token)
	s.NotEqual("password123", res.User.Password)

	login, err := s.users.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)
	s.Equal(res.User.ID, login.User.ID)

	_, err = s.users.Login(s.ctx, "alice", "wrong-password")
	s.assertKind(err, apperrors.KindValidation)
	_, err = s.users.Login(s.ctx, "nobody", "password123")
	s.assertKind(err, apperrors.KindValidation)
}

func (s *ServiceTestSuite) TestRegisterRejectsDuplicatesAndBadInput() {
	_, err := s.users.Register(s.ctx, registerRequest("alice"))
	s.Require().NoError(err)

	_, err = s.users.Register(s.ctx, registerRequest("alice"))
	s.assertKind(err, apperrors.KindConflict)

	dupEmail := registerRequest("alice2")
	dupEmail.Email = "ALICE@example.com"
	_, err = s.users.Register(s.ctx, dupEmail)
	s.assertKind(err, apperrors.KindConflict)

	short := registerRequest("bob")
	short.Password = "short"
	_, err = s.users.Register(s.ctx, short)
	s.assertKind(err, apperrors.KindValidation)

	_, err = s.users.Register(s.ctx, registerRequest("no spaces"))
	s.assertKind(err, apperrors.KindValidation)
}

func (s *ServiceTestSuite) TestLogoutRevokesToken() {
	res, err := s.users.Register(s.ctx, registerRequest("alice"))
	s.Require().NoError(err)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	claims, err := tokens.Parse(res.Token)
	s.Require().NoError(err)

	s.Require().NoError(s.users.Logout(s.ctx, claims))
	revoked, err := auth.NewGormRevocationStore(s.db).IsRevoked(s.ctx, claims.ID)
	s.Require().NoError(err)
	s.True(revoked)
}

func (s *ServiceTestSuite) TestUpdateProfile() {
	alice := s.user("alice", false)
	s.user("bob", false)

	var buf bytes.Buffer
	s.Require().NoError(png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 640, 480))))

	updated, err := s.users.UpdateProfile(s.ctx, alice.ID, models.UpdateProfileRequest{
		Name: "Alice A.",
		Bio:  "hello",
	}, &storage.Upload{Filename: "me.png", Data: buf.Bytes()})
	s.Require().NoError(err)
	s.Equal("Alice A.", updated.Name)
	s.Equal("hello", updated.Bio)
	s.Equal("alice", updated.Username)
	s.Equal("https://cdn.test/avatars/file.jpg", updated.ProfilePicture)

	mt, err := storage.Detect(s.media.saved["avatars/file.jpg"], storage.KindImage)
	s.Require().NoError(err)
	s.Equal("image/jpeg", mt.String())

	_, err = s.users.UpdateProfile(s.ctx, alice.ID, models.UpdateProfileRequest{Username: "bob"}, nil)
	s.assertKind(err, apperrors.KindConflict)

	_, err = s.users.UpdateProfile(s.ctx, alice.ID, models.UpdateProfileRequest{}, &storage.Upload{Data: []byte("not an image")})
	s.assertKind(err, apperrors.KindValidation)
}

func (s *ServiceTestSuite) TestTogglePrivate() {
	alice := s.user("alice", false)

	private, err := s.users.TogglePrivate(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.True(private)

	private, err = s.users.TogglePrivate(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.False(private)
}

func (s *ServiceTestSuite) TestSearch() {
	viewer := s.user("viewer", false)
	s.user("alice", false)
	s.user("alicia", true)
	s.user("bob", false)
	_, err := s.follows.Follow(s.ctx, viewer.ID, "alice")
	s.Require().NoError(err)
	_, err = s.follows.Follow(s.ctx, viewer.ID, "alicia")
	s.Require().NoError(err)

	results, err := s.users.Search(s.ctx, viewer.ID, "ALI")
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal("alice", results[0].Username)
	s.True(results[0].IsFollowed)
	s.Equal("alicia", results[1].Username)
	s.True(results[1].IsPending)

	results, err = s.users.Search(s.ctx, viewer.ID, "   ")
	s.Require().NoError(err)
	s.NotNil(results)
	s.Empty(results)

	results, err = s.users.Search(s.ctx, viewer.ID, "viewer")
	s.Require().NoError(err)
	s.Empty(results)
}

func (s *ServiceTestSuite) TestFirebaseLogin() {
	existing := s.user("linked", false)
	verifier := &fakeVerifier{tokens: map[string]*fbauth.Token{
		"new":        {UID: "uid-new", Claims: map[string]interface{}{"email": "new.person@example.com", "name": "New"}},
		"link":       {UID: "uid-link", Claims: map[string]interface{}{"email": existing.Email, "email_verified": true}},
		"unverified": {UID: "uid-other", Claims: map[string]interface{}{"email": existing.Email, "email_verified": false}},
	}}
	s.users.firebase = verifier

	first, err := s.users.FirebaseLogin(s.ctx, "new")
	s.Require().NoError(err)
	s.Equal("new.person", first.User.Username)
	s.NotEmpty(first.Token)

	again, err := s.users.FirebaseLogin(s.ctx, "new")
	s.Require().NoError(err)
	s.Equal(first.User.ID, again.User.ID)

	// An unverified address must not take over the account that owns it.
	_, err = s.users.FirebaseLogin(s.ctx, "unverified")
	s.assertKind(err, apperrors.KindUnauthorized)
	stored, err := s.store.Users.GetUserByID(s.ctx, existing.ID)
	s.Require().NoError(err)
	s.Nil(stored.FirebaseUID)

	linked, err := s.users.FirebaseLogin(s.ctx, "link")
	s.Require().NoError(err)
	s.Equal(existing.ID, linked.User.ID)

	_, err = s.users.FirebaseLogin(s.ctx, "forged")
	s.assertKind(err, apperrors.KindUnauthorized)
}

func (s *ServiceTestSuite) TestFirebaseLoginDisabled() {
	s.users.firebase = nil
	_, err := s.users.FirebaseLogin(s.ctx, "anything")
	s.assertKind(err, apperrors.KindUnauthorized)
}

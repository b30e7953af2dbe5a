package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/cosmetica/internal/adapters/repo/postgres"
	"github.com/phenrril/cosmetica/internal/domain"
)

type stubTokens struct{}

func (stubTokens) Issue(u *domain.User) (string, time.Time, error) {
	return "tok-" + u.ID.String(), time.Now().Add(time.Hour), nil
}

func newUserUC(t *testing.T) (*UserUC, *memStorage) {
	f := newFixture(t)
	return &UserUC{
		Users:       postgres.NewUserRepo(f.db),
		Storage:     f.storage,
		Tokens:      stubTokens{},
		AdminEmails: map[string]bool{"boss@shop.test": true},
	}, f.storage
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	uc, st := newUserUC(t)

	u, err := uc.Register(ctx, RegisterInput{Fullname: "Ana", Email: " Ana@Shop.test ", Password: "secret1"}, upload("me.png"))
	require.NoError(t, err)
	assert.Equal(t, "ana@shop.test", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.True(t, st.has(domain.MediaProfilePicture, u.ProfilePic))

	_, err = uc.Register(ctx, RegisterInput{Email: "ana@shop.test", Password: "secret1"}, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	s, err := uc.Login(ctx, "ANA@shop.test", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok-"+u.ID.String(), s.Token)
	assert.Equal(t, u.ID, s.User.ID)

	_, err = uc.Login(ctx, "ana@shop.test", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, "nobody@shop.test", "secret1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUserUC(t)

	_, err := uc.Register(ctx, RegisterInput{Email: "not-an-email", Password: "secret1"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Register(ctx, RegisterInput{Email: "a@shop.test", Password: "123"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	admin, err := uc.Register(ctx, RegisterInput{Email: "boss@shop.test", Password: "secret1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUserUC(t)
	u, err := uc.Register(ctx, RegisterInput{Email: "ana@shop.test", Password: "secret1"}, nil)
	require.NoError(t, err)
	self := domain.Principal{UserID: u.ID, Role: domain.RoleUser}

	err = uc.ChangePassword(ctx, self, u.ID, "nope", "secret2")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	err = uc.ChangePassword(ctx, self, u.ID, "secret1", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	err = uc.ChangePassword(ctx, domain.Principal{UserID: uuid.New(), Role: domain.RoleUser}, u.ID, "secret1", "secret2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, uc.ChangePassword(ctx, self, u.ID, "secret1", "secret2"))
	_, err = uc.Login(ctx, "ana@shop.test", "secret2")
	assert.NoError(t, err)

	admin := domain.Principal{UserID: uuid.New(), Role: domain.RoleAdmin}
	require.NoError(t, uc.ChangePassword(ctx, admin, u.ID, "", "secret3"))
	_, err = uc.Login(ctx, "ana@shop.test", "secret3")
	assert.NoError(t, err)
}

func TestSignInExternal(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUserUC(t)

	first, err := uc.SignInExternal(ctx, "google", "Gina@Shop.test", "Gina")
	require.NoError(t, err)
	assert.Equal(t, "google", first.User.Provider)

	again, err := uc.SignInExternal(ctx, "google", "gina@shop.test", "Gina")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, again.User.ID)

	// no local password was ever set
	_, err = uc.Login(ctx, "gina@shop.test", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Login(ctx, "gina@shop.test", "anything")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	uc, st := newUserUC(t)
	u, err := uc.Register(ctx, RegisterInput{Email: "ana@shop.test", Password: "secret1", Mobile: "111"}, upload("a.png"))
	require.NoError(t, err)
	self := domain.Principal{UserID: u.ID, Role: domain.RoleUser}
	oldPic := u.ProfilePic

	got, err := uc.UpdateProfile(ctx, self, u.ID, ProfilePatch{Address: domain.Some("Main St 1")}, upload("b.png"))
	require.NoError(t, err)
	assert.Equal(t, "Main St 1", got.Address)
	assert.Equal(t, "111", got.Mobile)
	assert.False(t, st.has(domain.MediaProfilePicture, oldPic))
	assert.True(t, st.has(domain.MediaProfilePicture, got.ProfilePic))
}

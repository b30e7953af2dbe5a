package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/phenrril/cosmetica/internal/domain"
)

const minPasswordLen = 6

var validate = validator.New()

type TokenIssuer interface {
	Issue(u *domain.User) (string, time.Time, error)
}

type UserUC struct {
	Users   domain.UserRepo
	Storage domain.FileStorage
	Tokens  TokenIssuer
	// AdminEmails are promoted to admin when they register or first sign in.
	AdminEmails map[string]bool
}

type RegisterInput struct {
	Fullname string
	Email    string
	Mobile   string
	Password string
	Gender   string
	Pincode  string
	Address  string
}

type ProfilePatch struct {
	Fullname domain.Optional[string]
	Mobile   domain.Optional[string]
	Gender   domain.Optional[string]
	Pincode  domain.Optional[string]
	Address  domain.Optional[string]
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

func (uc *UserUC) Register(ctx context.Context, in RegisterInput, pic *domain.Upload) (*domain.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	if _, err := uc.Users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email is already registered", domain.ErrDuplicate)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           uuid.New(),
		Fullname:     strings.TrimSpace(in.Fullname),
		Email:        email,
		Mobile:       in.Mobile,
		Gender:       in.Gender,
		Pincode:      in.Pincode,
		Address:      in.Address,
		PasswordHash: string(hash),
		Provider:     "local",
		Role:         uc.roleFor(email),
		Status:       "Active",
	}
	if pic != nil {
		file, err := uc.Storage.Save(ctx, domain.MediaProfilePicture, pic.Filename, pic.Body)
		if err != nil {
			return nil, err
		}
		u.ProfilePic = file
	}
	if err := uc.Users.Create(ctx, u); err != nil {
		uc.discard(ctx, u.ProfilePic)
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email is already registered", domain.ErrDuplicate)
		}
		return nil, err
	}
	return u, nil
}

func (uc *UserUC) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	badCreds := fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	u, err := uc.Users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, badCreds
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, badCreds
	}
	return uc.session(u)
}

// SignInExternal upserts a user verified by an external identity provider and
// opens a session for it.
func (uc *UserUC) SignInExternal(ctx context.Context, provider, email, name string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	u, err := uc.Users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		u = &domain.User{ID: uuid.New(), Email: email, Fullname: name, Provider: provider, Role: uc.roleFor(email), Status: "Active"}
		err = uc.Users.Create(ctx, u)
	}
	if err != nil {
		return nil, err
	}
	return uc.session(u)
}

func (uc *UserUC) Details(ctx context.Context, pr domain.Principal, userID uuid.UUID) (*domain.User, error) {
	if err := authorize(pr, userID); err != nil {
		return nil, err
	}
	u, err := uc.Users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}
	return u, err
}

func (uc *UserUC) UpdateProfile(ctx context.Context, pr domain.Principal, userID uuid.UUID, patch ProfilePatch, pic *domain.Upload) (*domain.User, error) {
	u, err := uc.Details(ctx, pr, userID)
	if err != nil {
		return nil, err
	}
	if v, ok := patch.Fullname.Get(); ok {
		u.Fullname = strings.TrimSpace(v)
	}
	if v, ok := patch.Mobile.Get(); ok {
		u.Mobile = v
	}
	if v, ok := patch.Gender.Get(); ok {
		u.Gender = v
	}
	if v, ok := patch.Pincode.Get(); ok {
		u.Pincode = v
	}
	if v, ok := patch.Address.Get(); ok {
		u.Address = v
	}
	old := u.ProfilePic
	if pic != nil {
		file, err := uc.Storage.Save(ctx, domain.MediaProfilePicture, pic.Filename, pic.Body)
		if err != nil {
			return nil, err
		}
		u.ProfilePic = file
	}
	if err := uc.Users.Save(ctx, u); err != nil {
		if pic != nil {
			uc.discard(ctx, u.ProfilePic)
		}
		return nil, err
	}
	if old != u.ProfilePic {
		uc.discard(ctx, old)
	}
	return u, nil
}

func (uc *UserUC) ChangePassword(ctx context.Context, pr domain.Principal, userID uuid.UUID, oldPassword, newPassword string) error {
	u, err := uc.Details(ctx, pr, userID)
	if err != nil {
		return err
	}
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	// admins may reset without the old password; users must prove it
	if !pr.IsAdmin() || pr.UserID == userID {
		if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
			return fmt.Errorf("%w: old password is incorrect", domain.ErrInvalidInput)
		}
		if oldPassword == newPassword {
			return fmt.Errorf("%w: new password must be different from old password", domain.ErrInvalidInput)
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return uc.Users.Save(ctx, u)
}

func (uc *UserUC) session(u *domain.User) (*Session, error) {
	tok, exp, err := uc.Tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, ExpiresAt: exp, User: u}, nil
}

func (uc *UserUC) roleFor(email string) domain.Role {
	if uc.AdminEmails[email] {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

func (uc *UserUC) discard(ctx context.Context, file string) {
	if file == "" {
		return
	}
	if err := uc.Storage.Remove(ctx, domain.MediaProfilePicture, file); err != nil {
		log.Warn().Err(err).Str("file", file).Msg("remove profile picture")
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", fmt.Errorf("%w: email is invalid", domain.ErrInvalidInput)
	}
	return email, nil
}

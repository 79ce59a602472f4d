package usecase

import (
	"errors"
	"testing"
	"time"

	authdomain "github.com/mrxception/MailMind/internal/auth/domain"
	authdto "github.com/mrxception/MailMind/internal/auth/dto"
)

type fakeUserRepo struct {
	users []*authdomain.User
}

func (f *fakeUserRepo) Create(user *authdomain.User) error {
	user.ID = "user-1"
	user.CreatedAt = time.Now()
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*authdomain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByID(id string) (*authdomain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func newAuth(repo *fakeUserRepo) AuthUsecase {
	return NewAuthUsecase(repo, "test-secret", time.Hour)
}

func TestRegisterThenLogin(t *testing.T) {
	repo := &fakeUserRepo{}
	auth := newAuth(repo)

	resp, err := auth.Register(&authdto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.AccessToken == "" {
		t.Errorf("register must return a token")
	}
	if repo.users[0].Password == "password123" {
		t.Errorf("password must be stored hashed")
	}

	login, err := auth.Login(&authdto.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.Email != "alice@example.com" {
		t.Errorf("user = %+v", login.User)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth := newAuth(&fakeUserRepo{users: []*authdomain.User{
		{ID: "user-1", Email: "alice@example.com"},
	}})

	_, err := auth.Register(&authdto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	if !errors.Is(err, authdomain.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &fakeUserRepo{}
	auth := newAuth(repo)

	if _, err := auth.Register(&authdto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := auth.Login(&authdto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	auth := newAuth(&fakeUserRepo{})

	_, err := auth.Login(&authdto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	if !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := &fakeUserRepo{}
	auth := newAuth(repo)

	resp, err := auth.Register(&authdto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := auth.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user id = %q", user.ID)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	auth := newAuth(&fakeUserRepo{})

	if _, err := auth.ValidateToken("not-a-jwt"); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	repo := &fakeUserRepo{}
	expired := NewAuthUsecase(repo, "test-secret", -time.Minute)

	resp, err := expired.Register(&authdto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	auth := NewAuthUsecase(repo, "test-secret", time.Hour)
	if _, err := auth.ValidateToken(resp.AccessToken); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

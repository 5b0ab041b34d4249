package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/davinrkh/finbook/internal/apperr"
	"github.com/davinrkh/finbook/internal/domain/entity"
)

type stubIssuer struct {
	token string
	err   error
}

func (s *stubIssuer) Issue(userID int64, role entity.Role) (string, error) {
	return s.token, s.err
}

func TestLoginSuccess(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	repo := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*entity.User, error) {
			return &entity.User{ID: 7, Username: username, PasswordHash: string(hash), Role: entity.RoleEmployee}, nil
		},
	}
	svc := NewAuthService(repo, &stubIssuer{token: "signed-token"}, nopLogger{})

	token, user, err := svc.Login(context.Background(), "dina", "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token != "signed-token" {
		t.Errorf("token = %q", token)
	}
	if user.ID != 7 {
		t.Errorf("user.ID = %d, want 7", user.ID)
	}
}

func TestLoginBadCredentialsIndistinguishable(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	repo := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*entity.User, error) {
			if username == "dina" {
				return &entity.User{ID: 7, Username: username, PasswordHash: string(hash)}, nil
			}
			return nil, nil
		},
	}
	svc := NewAuthService(repo, &stubIssuer{token: "t"}, nopLogger{})

	_, _, errNoUser := svc.Login(context.Background(), "ghost", "whatever")
	_, _, errBadPass := svc.Login(context.Background(), "dina", "wrong")

	for _, err := range []error{errNoUser, errBadPass} {
		if !apperr.IsKind(err, apperr.KindAuthorization) {
			t.Errorf("error = %v, want authorization", err)
		}
	}
	// The two failures must not leak which part was wrong.
	if errNoUser.Error() != errBadPass.Error() {
		t.Errorf("messages differ: %q vs %q", errNoUser, errBadPass)
	}
}

func TestLoginMissingFields(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &stubIssuer{}, nopLogger{})

	if _, _, err := svc.Login(context.Background(), "", "pw"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("Login() error = %v, want validation", err)
	}
	if _, _, err := svc.Login(context.Background(), "user", ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("Login() error = %v, want validation", err)
	}
}

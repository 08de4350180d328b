package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/tendant/contextauth/pkg/domain"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$") {
		t.Errorf("unexpected hash format: %s", hash)
	}

	if !VerifyPassword("correct horse battery staple", hash) {
		t.Error("VerifyPassword() = false for the right password")
	}
	if VerifyPassword("Correct horse battery staple", hash) {
		t.Error("VerifyPassword() = true for a wrong password")
	}

	again, _ := HashPassword("correct horse battery staple")
	if again == hash {
		t.Error("two hashes of the same password should use different salts")
	}
}

func TestVerifyPassword_Bcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	if !VerifyPassword("hunter2", string(legacy)) {
		t.Error("VerifyPassword() = false for a legacy bcrypt hash")
	}
	if VerifyPassword("hunter3", string(legacy)) {
		t.Error("VerifyPassword() = true for a wrong password")
	}
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, hash := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=1,p=4$onlysalt",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	} {
		if VerifyPassword("anything", hash) {
			t.Errorf("VerifyPassword() = true for malformed hash %q", hash)
		}
	}
}

type stubCredentialStore struct {
	cred *domain.AccountPassword
	err  error
}

func (s stubCredentialStore) GetByAccountID(context.Context, uuid.UUID) (*domain.AccountPassword, error) {
	return s.cred, s.err
}

func TestPasswordVerifier_Check(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	id := uuid.New()

	ok, err := NewPasswordVerifier(stubCredentialStore{cred: &domain.AccountPassword{AccountID: id, PasswordHash: hash}}).Check(context.Background(), id, "s3cret")
	if err != nil || !ok {
		t.Errorf("Check() = %v, %v; want true, nil", ok, err)
	}

	ok, err = NewPasswordVerifier(stubCredentialStore{err: domain.ErrAccountNotFound}).Check(context.Background(), id, "s3cret")
	if err != nil || ok {
		t.Errorf("Check() without credentials = %v, %v; want false, nil", ok, err)
	}

	dbErr := errors.New("db down")
	_, err = NewPasswordVerifier(stubCredentialStore{err: dbErr}).Check(context.Background(), id, "s3cret")
	if !errors.Is(err, dbErr) {
		t.Errorf("Check() error = %v, want %v", err, dbErr)
	}
}

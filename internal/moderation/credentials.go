package moderation

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/sorsu/tiktalk/internal/storage"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type adminUser struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

type credentialsDoc struct {
	Users []adminUser `json:"users"`
}

// VerifyAdmin checks a username/password pair against the stored
// bcrypt hashes. Unknown user and wrong password are indistinguishable
// to the caller.
func VerifyAdmin(store *storage.Store, username, password string) error {
	var creds credentialsDoc
	if err := store.Read(storage.CollectionCredentials, &creds); err != nil {
		return err
	}
	for _, u := range creds.Users {
		if u.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return ErrInvalidCredentials
		}
		return nil
	}
	return ErrInvalidCredentials
}

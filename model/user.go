package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost for stored password hashes
const hashCost = 10

// User contains account data for a registered user. The password hash is
// excluded from JSON so serialized users never leak it.
type User struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Username       string             `json:"username" bson:"username"`
	HashedPassword string             `json:"-" bson:"hashedPassword"`
}

// SetPassword hashes the plaintext and stores the digest on the user.
// The plaintext itself is never persisted.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return err
	}
	u.HashedPassword = string(hash)
	return nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) == nil
}

// Identity is the session identity resolved from a verified token.
type Identity struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

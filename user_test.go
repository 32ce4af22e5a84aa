package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserPassword(t *testing.T) {
	assert := assert.New(t)

	hash, err := HashPassword("password")
	if !assert.NoError(err) {
		return
	}
	user := User{Id: 1, Email: "user@gmail.com", PasswordHash: hash}

	assert.NoError(user.CheckPassword("password"))
	assert.Equal(ErrInvalidCredentials, user.CheckPassword("Password"))
	assert.Equal(ErrInvalidCredentials, user.CheckPassword(""))

	// corrupted hash is not a credentials problem
	broken := User{PasswordHash: []byte("not a bcrypt hash")}
	err = broken.CheckPassword("password")
	assert.Error(err)
	assert.NotEqual(ErrInvalidCredentials, err)
}

func TestEmailNormalized(t *testing.T) {
	assert.Equal(t, Email("admin@javaops.ru"), Email("  Admin@JavaOps.ru ").Normalized())
}

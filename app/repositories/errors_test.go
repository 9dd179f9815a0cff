package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateDuplicate(t *testing.T) {
	raw := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'users.idx_users_email'"}

	err := translateDuplicate(fmt.Errorf("insert: %w", raw))
	var dup *DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "users.idx_users_email", dup.Key)
	assert.True(t, IsDuplicateKey(err))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	other := &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}
	assert.Same(t, other, translateDuplicate(other))
	assert.False(t, IsDuplicateKey(other))
}

func TestValidProductOrdering(t *testing.T) {
	for _, o := range []string{"price", "-price", "created_at", "-created_at", "name", "-name"} {
		assert.True(t, ValidProductOrdering(o), o)
	}
	for _, o := range []string{"", "stock", "--price", "price;drop"} {
		assert.False(t, ValidProductOrdering(o), o)
	}
}

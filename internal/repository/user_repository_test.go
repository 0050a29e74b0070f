package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(errors.New("Error 1062 (23000): Duplicate entry 'a@b.c' for key 'user.email'")))
	assert.False(t, isDuplicateKey(errors.New("Error 1045 (28000): Access denied")))
	assert.False(t, isDuplicateKey(nil))
}

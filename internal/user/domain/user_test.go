package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{name: "válido", user: User{Name: "Ana", Email: "ana@example.com"}},
		{name: "sin nombre", user: User{Name: "  ", Email: "ana@example.com"}, wantErr: true},
		{name: "email inválido", user: User{Name: "Ana", Email: "ana-at-example"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidUser)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCacheKeyByID(t *testing.T) {
	assert.Equal(t, "user:id:42", CacheKeyByID(42))
}

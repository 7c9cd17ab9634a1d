package tokens

import (
	"testing"
	"time"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateUserJWT(t *testing.T) {
	key := []byte("test secret")

	token, genErr := GenerateUserJWT(7, domain.RoleAdmin, time.Hour, key)
	require.NoError(t, genErr)

	claims, valErr := ValidateUserJWT(token, key)
	require.NoError(t, valErr)

	assert.EqualValues(t, 7, claims.ID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestValidateUserJWT_WrongKey(t *testing.T) {
	token, genErr := GenerateUserJWT(7, domain.RoleCustomer, time.Hour, []byte("key one"))
	require.NoError(t, genErr)

	_, valErr := ValidateUserJWT(token, []byte("key two"))
	require.Error(t, valErr)
}

func TestValidateUserJWT_Expired(t *testing.T) {
	key := []byte("test secret")

	token, genErr := GenerateUserJWT(7, domain.RoleCustomer, -time.Minute, key)
	require.NoError(t, genErr)

	_, valErr := ValidateUserJWT(token, key)
	require.ErrorIs(t, valErr, ErrTokenExpired)
}

func TestValidateUserJWT_Garbage(t *testing.T) {
	_, valErr := ValidateUserJWT("not a token", []byte("test secret"))
	require.Error(t, valErr)
}

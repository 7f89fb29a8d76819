package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizdesk/quiz-service/internal/models"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Issue(42, models.RoleMentor)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, role, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, models.RoleMentor, role)
}

func TestTokenManager_VerifyRejectsWrongSecret(t *testing.T) {
	issued, err := NewTokenManager("secret-a", time.Hour).Issue(1, models.RoleStudent)
	require.NoError(t, err)

	_, _, err = NewTokenManager("secret-b", time.Hour).Verify(issued)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_VerifyRejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)

	token, err := m.Issue(7, models.RoleStudent)
	require.NoError(t, err)

	_, _, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_VerifyRejectsGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	_, _, err := m.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

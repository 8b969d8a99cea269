// ABOUTME: Tests for the login screen
// ABOUTME: Covers validation, submission and error display

package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markalston/formationsgest/internal/models"
)

func TestValidateEmail(t *testing.T) {
	assert.Error(t, validateEmail(""))
	assert.Error(t, validateEmail("   "))
	assert.Error(t, validateEmail("jean"))
	assert.NoError(t, validateEmail("jean@example.com"))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, validatePassword(""))
	assert.NoError(t, validatePassword("x"))
}

func TestSubmit_EmitsTrimmedCredentials(t *testing.T) {
	l := New(" jean@example.com ")
	l.password = "secret"

	cmd := l.submit()
	require.NotNil(t, cmd)
	assert.True(t, l.Submitting())

	msg, ok := cmd().(SubmitMsg)
	require.True(t, ok)
	assert.Equal(t, models.Credentials{Email: "jean@example.com", Password: "secret"}, msg.Credentials)
}

func TestFailed_ShowsMessageAndKeepsEmail(t *testing.T) {
	l := New("jean@example.com")
	l.password = "bad"
	l.submit()

	l.Failed("Identifiants invalides")

	assert.False(t, l.Submitting())
	assert.Equal(t, "Identifiants invalides", l.Error())
	assert.Equal(t, "jean@example.com", l.email)
	assert.Empty(t, l.password)
	assert.Contains(t, l.View(), "Identifiants invalides")
}

func TestUpdate_IgnoredWhileSubmitting(t *testing.T) {
	l := New("a@b.c")
	l.submitting = true
	_, cmd := l.Update(nil)
	assert.Nil(t, cmd)
	assert.Contains(t, l.View(), "Connexion en cours")
}

// ABOUTME: Tests for domain model JSON decoding
// ABOUTME: Covers id aliases, populated references and role parsing

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfile_AcceptsMongoID(t *testing.T) {
	var u UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"u1","prenom":"Jean","role":"FORMATEUR"}`), &u))

	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, RoleFormateur, u.Role)
	assert.Equal(t, "Jean", u.FullName())
}

func TestUserProfile_PrefersID(t *testing.T) {
	var u UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","_id":"b"}`), &u))
	assert.Equal(t, "a", u.ID)
}

func TestUser_KeepsProfileAndExtras(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"u2","nom":"Durand","role":"ADMIN","telephone":"0600","actif":true}`), &u))

	assert.Equal(t, "u2", u.ID)
	assert.Equal(t, RoleAdmin, u.Role)
	assert.Equal(t, "0600", u.Telephone)
	assert.True(t, u.Actif)
}

func TestRef_Decoding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Ref
	}{
		{"bare id", `"f1"`, Ref{ID: "f1"}},
		{"populated formation", `{"_id":"f1","titre":"Go avancé"}`, Ref{ID: "f1", Label: "Go avancé"}},
		{"populated person", `{"_id":"p1","nom":"Martin","prenom":"Alice"}`, Ref{ID: "p1", Label: "Alice Martin"}},
		{"null", `null`, Ref{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Ref
			require.NoError(t, json.Unmarshal([]byte(tt.input), &r))
			assert.Equal(t, tt.want, r)
		})
	}
}

func TestRef_MarshalsBareID(t *testing.T) {
	data, err := json.Marshal(Inscription{Formation: Ref{ID: "f1", Label: "Go"}, Nom: "N"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"formation":"f1"`)
	assert.NotContains(t, string(data), "createdAt")
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" assistant ")
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, r)

	_, err = ParseRole("STAGIAIRE")
	assert.Error(t, err)
}

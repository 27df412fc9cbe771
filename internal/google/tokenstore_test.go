package google

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenStoreLoadMissingFile(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "credentials.json"))

	tok, err := store.Load()
	require.NoError(t, err, "a missing credential file means never authenticated, not an error")
	assert.Nil(t, tok)
}

func TestTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "credentials.json")
	store := NewTokenStore(path)

	want := &oauth2.Token{
		AccessToken:  "ya29.access",
		TokenType:    "Bearer",
		RefreshToken: "1//refresh",
		Expiry:       time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Save(want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.Equal(t, want.RefreshToken, got.RefreshToken)
	assert.Equal(t, want.TokenType, got.TokenType)
	assert.True(t, want.Expiry.Equal(got.Expiry))
}

func TestTokenStoreRejectsRecordWithoutAccessToken(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "credentials.json"))

	err := store.Save(&oauth2.Token{RefreshToken: "1//refresh"})
	assert.Error(t, err, "a record without an access token must never be persisted")

	err = store.Save(nil)
	assert.Error(t, err)

	// No file may exist after rejected saves.
	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestTokenStoreLoadInvalidRecord(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "access refresh"},
		{name: "empty access token", content: `{"refresh_token":"1//refresh"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			tok, err := NewTokenStore(path).Load()
			assert.Error(t, err)
			assert.Nil(t, tok)
		})
	}
}

func TestTokenStoreSaveOverwrites(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "credentials.json"))

	require.NoError(t, store.Save(&oauth2.Token{AccessToken: "first", RefreshToken: "keep"}))
	require.NoError(t, store.Save(&oauth2.Token{AccessToken: "second"}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", got.AccessToken)
	assert.Empty(t, got.RefreshToken, "save replaces the whole record, no merging")
}

func TestDefaultTokenPathOverride(t *testing.T) {
	t.Setenv(EnvCredentialsPath, "/tmp/custom-creds.json")

	path, err := DefaultTokenPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-creds.json", path)
}

package gapy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store := NewFileStorage(path)

	t.Run("missing file means no token", func(t *testing.T) {
		tok, err := store.Get()
		require.NoError(t, err)
		assert.Nil(t, tok)
	})

	t.Run("roundtrip", func(t *testing.T) {
		in := &oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
		}
		require.NoError(t, store.Put(in))

		out, err := store.Get()
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.Equal(t, "access", out.AccessToken)
		assert.Equal(t, "refresh", out.RefreshToken)
	})

	t.Run("corrupt file fails", func(t *testing.T) {
		bad := NewFileStorage(writeTempFile(t, "not json"))
		_, err := bad.Get()
		assert.Error(t, err)
	})
}

type memStorage struct {
	tok  *oauth2.Token
	puts int
}

func (m *memStorage) Get() (*oauth2.Token, error) { return m.tok, nil }

func (m *memStorage) Put(tok *oauth2.Token) error {
	m.tok = tok
	m.puts++
	return nil
}

type staticTokenSource struct {
	tok *oauth2.Token
}

func (s *staticTokenSource) Token() (*oauth2.Token, error) { return s.tok, nil }

func TestSavingTokenSource(t *testing.T) {
	store := &memStorage{}
	src := &staticTokenSource{tok: &oauth2.Token{AccessToken: "first"}}
	saving := &savingTokenSource{src: src, store: store}

	// First fetch persists the token.
	tok, err := saving.Token()
	require.NoError(t, err)
	assert.Equal(t, "first", tok.AccessToken)
	assert.Equal(t, 1, store.puts)

	// Handing out the same token again does not rewrite storage.
	_, err = saving.Token()
	require.NoError(t, err)
	assert.Equal(t, 1, store.puts)

	// A refreshed token is written back.
	src.tok = &oauth2.Token{AccessToken: "second"}
	tok, err = saving.Token()
	require.NoError(t, err)
	assert.Equal(t, "second", tok.AccessToken)
	assert.Equal(t, 2, store.puts)
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

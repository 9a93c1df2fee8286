package secretstore

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestStore_RoundTripOnDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(OpenOptions{Path: dir, EncryptionKey: testKey()})
	require.NoError(t, err)
	require.NoError(t, s.SetString("env/KIS_APP_KEY", "PSabc"))
	require.NoError(t, s.SetString("env/KIS_APP_SECRET", ""))
	require.NoError(t, s.Close())

	ro, err := Open(OpenOptions{Path: dir, EncryptionKey: testKey(), ReadOnly: true})
	require.NoError(t, err)
	defer ro.Close()

	v, ok, err := ro.GetString("env/KIS_APP_KEY")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "PSabc", v)

	v, ok, err = ro.GetString("env/KIS_APP_SECRET")
	require.NoError(t, err)
	assert.True(t, ok, "empty values are still present")
	assert.Empty(t, v)

	_, ok, err = ro.GetString("env/MISSING")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_WrongKeyFails(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(OpenOptions{Path: dir, EncryptionKey: testKey()})
	require.NoError(t, err)
	require.NoError(t, s.SetString("k", "v"))
	require.NoError(t, s.Close())

	_, err = Open(OpenOptions{Path: dir, EncryptionKey: []byte(strings.Repeat("x", 32))})
	assert.Error(t, err)
}

func TestStore_KeysAndDelete(t *testing.T) {
	s, err := Open(OpenOptions{InMemory: true})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetString("env/B", "2"))
	require.NoError(t, s.SetString("env/A", "1"))
	require.NoError(t, s.SetString("other", "x"))

	keys, err := s.Keys(DefaultPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"env/A", "env/B"}, keys)

	require.NoError(t, s.Delete("env/A"))
	_, ok, err := s.GetString("env/A")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Guards(t *testing.T) {
	_, err := Open(OpenOptions{})
	assert.Error(t, err)

	var nilStore *Store
	_, _, err = nilStore.GetString("a")
	assert.Error(t, err)
	assert.NoError(t, nilStore.Close())

	s, err := Open(OpenOptions{InMemory: true})
	require.NoError(t, err)
	defer s.Close()
	assert.Error(t, s.SetString("  ", "v"))
}

func TestParseKey(t *testing.T) {
	raw := testKey()

	b, err := ParseKey("0x" + strings.Repeat("ab", 32))
	require.NoError(t, err)
	assert.Len(t, b, 32)

	b, err = ParseKey(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, b)

	b, err = ParseKey("")
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = ParseKey("abcd")
	assert.Error(t, err)

	_, err = ParseKey("not a key!")
	assert.Error(t, err)
}

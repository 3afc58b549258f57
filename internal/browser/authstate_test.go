// internal/browser/authstate_test.go
package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *AuthSnapshot {
	return &AuthSnapshot{
		Cookies: []SnapshotCookie{
			{
				Name:     "fienta_session",
				Value:    "abc123",
				Domain:   ".fienta.com",
				Path:     "/",
				Expires:  1789000000,
				HTTPOnly: true,
				Secure:   true,
				SameSite: "Lax",
			},
		},
		Origins: []OriginState{
			{
				Origin: "https://fienta.com",
				LocalStorage: []StorageItem{
					{Name: "locale", Value: "en"},
				},
			},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth", "state.json")

	require.NoError(t, SaveSnapshot(path, sampleSnapshot()))

	got, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sampleSnapshot(), got)
}

func TestLoadSnapshotMissingFileIsNotAnError(t *testing.T) {
	got, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadSnapshotEmptyPath(t *testing.T) {
	got, err := LoadSnapshot("")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadSnapshotRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadSnapshot(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse auth state")
}

func TestSaveSnapshotReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first := sampleSnapshot()
	require.NoError(t, SaveSnapshot(path, first))

	second := sampleSnapshot()
	second.Cookies[0].Value = "rotated"
	require.NoError(t, SaveSnapshot(path, second))

	got, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.Cookies[0].Value)

	// No temp file left behind by the atomic write.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestOriginOf(t *testing.T) {
	assert.Equal(t, "https://fienta.com", originOf("https://fienta.com/my/events/42/discounts"))
	assert.Equal(t, "http://localhost:8080", originOf("http://localhost:8080/login?next=%2F"))
	assert.Equal(t, "not a url", originOf("not a url"))
}

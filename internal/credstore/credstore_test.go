package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starview-app/starview/internal/errs"
	"github.com/starview-app/starview/internal/model"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(filepath.Join(dir, "credential.json"), filepath.Join(dir, "cred.key"))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	cred := model.Credential{Code: "c", Token: "tok123"}
	require.NoError(t, s.Save(cred))

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, cred, *got)
}

func TestLoad_AbsentIsNoCredential(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load()
	require.ErrorIs(t, err, errs.ErrNoCredential)
}

func TestSave_OverwritesAtomically(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(model.Credential{Code: "old", Token: "old"}))
	require.NoError(t, s.Save(model.Credential{Code: "new", Token: "new"}))

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, "new", got.Token)

	// No temp file left behind.
	_, err = os.Stat(s.path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestLoad_TamperedFileFails(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(model.Credential{Code: "c", Token: "tok"}))

	b, err := os.ReadFile(s.path)
	require.NoError(t, err)
	b[len(b)-1] ^= 0xff
	require.NoError(t, os.WriteFile(s.path, b, 0o600))

	_, err = s.Load()
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrNoCredential)
}

func TestFileIsNotPlaintext(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(model.Credential{Code: "c", Token: "supersecret"}))

	b, err := os.ReadFile(s.path)
	require.NoError(t, err)
	require.NotContains(t, string(b), "supersecret")
}

func TestClear_RemovesRecord(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(model.Credential{Code: "c", Token: "tok"}))
	require.NoError(t, s.Clear())

	_, err := s.Load()
	require.ErrorIs(t, err, errs.ErrNoCredential)

	// Clearing again is a no-op.
	require.NoError(t, s.Clear())
}

func TestSealOpen_KeyReuseAcrossSaves(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(model.Credential{Token: "one"}))
	key1, err := os.ReadFile(s.keyPath)
	require.NoError(t, err)

	require.NoError(t, s.Save(model.Credential{Token: "two"}))
	key2, err := os.ReadFile(s.keyPath)
	require.NoError(t, err)
	require.Equal(t, key1, key2)
}

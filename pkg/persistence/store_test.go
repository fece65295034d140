package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories builds each Store implementation against a fresh location.
func storeFactories(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"Memory": func() Store { return NewMemoryStore() },
		"File": func() Store {
			s, err := OpenFileStore(filepath.Join(t.TempDir(), "deskclock.snap"))
			require.NoError(t, err)
			return s
		},
		"SQLite": func() Store {
			s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "deskclock.db"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestStoreContract(t *testing.T) {
	for name, open := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer s.Close()

			t.Run("Defaults", func(t *testing.T) {
				assert.Equal(t, int64(42), s.Int64("missing", 42))
				assert.Equal(t, "dflt", s.String("missing", "dflt"))
				assert.True(t, s.Bool("missing", true))
				assert.Nil(t, s.IDs("missing"))
			})

			t.Run("PutAndRead", func(t *testing.T) {
				err := s.Edit().
					PutInt64("i", -7).
					PutString("s", "eggs").
					PutBool("b", true).
					PutIDs("ids", []int{3, 1, 2}).
					Commit()
				require.NoError(t, err)

				assert.Equal(t, int64(-7), s.Int64("i", 0))
				assert.Equal(t, "eggs", s.String("s", ""))
				assert.True(t, s.Bool("b", false))
				assert.Equal(t, []int{3, 1, 2}, s.IDs("ids"))
			})

			t.Run("KindMismatchReadsDefault", func(t *testing.T) {
				require.NoError(t, s.Edit().PutString("k", "text").Commit())
				assert.Equal(t, int64(5), s.Int64("k", 5))
				assert.False(t, s.Bool("k", false))
			})

			t.Run("Remove", func(t *testing.T) {
				require.NoError(t, s.Edit().PutInt64("gone", 1).Commit())
				require.NoError(t, s.Edit().Remove("gone").Commit())
				assert.Equal(t, int64(0), s.Int64("gone", 0))
			})

			t.Run("LastWriteInBatchWins", func(t *testing.T) {
				require.NoError(t, s.Edit().PutInt64("x", 1).PutInt64("x", 2).Commit())
				assert.Equal(t, int64(2), s.Int64("x", 0))
			})

			t.Run("EmptyCommit", func(t *testing.T) {
				assert.NoError(t, s.Edit().Commit())
			})
		})
	}
}

func TestMemoryStoreFailCommit(t *testing.T) {
	s := NewMemoryStore()
	boom := errors.New("disk full")
	s.FailCommit = boom

	err := s.Edit().PutInt64("x", 1).Commit()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), s.Int64("x", 0))
}

func TestMemoryStoreClosed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Edit().PutInt64("x", 1).Commit(), ErrClosed)
}

func TestFileStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deskclock.snap")

	s, err := OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Edit().PutString("label", "tea").PutIDs("ids", []int{1, 2}).Commit())
	require.NoError(t, s.Close())

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, "tea", reopened.String("label", ""))
	assert.Equal(t, []int{1, 2}, reopened.IDs("ids"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary snapshot files must not be left behind")
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskclock.snap")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0x00, 0x13}, 0644))

	_, err := OpenFileStore(path)
	assert.Error(t, err)
}

func TestFileStoreFutureVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskclock.snap")
	data, err := storeEncMode.Marshal(snapshot{Version: SnapshotVersion + 1})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err = OpenFileStore(path)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestFileStoreFailedWriteKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deskclock.snap")
	s, err := OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Edit().PutInt64("x", 1).Commit())

	// Replacing the target with a non-empty directory makes the rename fail.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "block"), 0755))

	err = s.Edit().PutInt64("x", 2).Commit()
	assert.Error(t, err)
	assert.Equal(t, int64(1), s.Int64("x", 0))
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskclock.db")

	s, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Edit().PutBool("flag", true).Commit())
	require.NoError(t, s.Close())

	reopened, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.True(t, reopened.Bool("flag", false))
}

func TestParseIDs(t *testing.T) {
	assert.Nil(t, parseIDs(""))
	assert.Equal(t, []int{1, 3}, parseIDs("1,x,3"))
	assert.Equal(t, "4,5", formatIDs([]int{4, 5}))
}

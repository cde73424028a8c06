package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkflow/internal/db"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()
	ctx := context.Background()

	mem, err := OpenSQLite(ctx, db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { mem.Close() })

	file, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "nested", "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })

	mr := miniredis.RunT(t)
	rd, err := OpenRedis(ctx, mr.Addr(), "test:")
	require.NoError(t, err)
	t.Cleanup(func() { rd.Close() })

	return map[string]Storage{
		"sqlite-memory": mem,
		"sqlite-file":   file,
		"redis":         rd,
	}
}

func TestStorage_Contract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "missing")
			assert.True(t, errors.Is(err, ErrNotFound))

			require.NoError(t, s.Set(ctx, "a", "1"))
			require.NoError(t, s.Set(ctx, "a", "2"))
			require.NoError(t, s.Set(ctx, "b", "x"))

			v, err := s.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "2", v)

			require.NoError(t, s.Delete(ctx, "a", "b", "never-set"))
			_, err = s.Get(ctx, "a")
			assert.True(t, errors.Is(err, ErrNotFound))
			_, err = s.Get(ctx, "b")
			assert.True(t, errors.Is(err, ErrNotFound))

			require.NoError(t, s.Delete(ctx))
		})
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "token", "abc"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}

func TestRedis_UsesPrefix(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	r, err := OpenRedis(ctx, "redis://"+mr.Addr(), "inkflow:")
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Set(ctx, "inkflow_auth_token", "tok"))
	got, err := mr.Get("inkflow:inkflow_auth_token")
	require.NoError(t, err)
	assert.Equal(t, "tok", got)
}

func TestOpenRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := OpenRedis(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
}

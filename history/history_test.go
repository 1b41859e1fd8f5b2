package history_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/derivtutor/derive"
	"github.com/njchilds90/derivtutor/history"
)

func rec(expr string) history.Record {
	return history.NewRecord(expr, "x", 1, "d("+expr+")", `\frac{d}{dx}`, nil)
}

func expressions(rs []history.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Expression
	}
	return out
}

// ============================================================
// Ring
// ============================================================

func TestRing_MostRecentFirst(t *testing.T) {
	r := history.NewRing(3)
	_, ok := r.Latest()
	assert.False(t, ok)

	for _, e := range []string{"a", "b", "c", "d", "e"} {
		r.Push(rec(e))
	}
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 3, r.Cap())
	assert.Equal(t, []string{"e", "d", "c"}, expressions(r.Records()))

	latest, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, "e", latest.Expression)
}

func TestRing_DefaultCapacity(t *testing.T) {
	r := history.NewRing(0)
	assert.Equal(t, history.DefaultCapacity, r.Cap())
	for i := 0; i < 250; i++ {
		r.Push(rec(fmt.Sprint(i)))
	}
	assert.Equal(t, 200, r.Len())
	assert.Equal(t, "249", r.Records()[0].Expression)
	assert.Equal(t, "50", r.Records()[199].Expression)
}

func TestRing_MarshalRoundTrip(t *testing.T) {
	r := history.NewRing(5)
	first := history.NewRecord("x^2", "x", 2, "2", "2", []derive.Step{{Explanation: "Power rule", Formula: "2x"}})
	r.Push(first)
	r.Push(rec("sin(x)"))

	data, err := r.Marshal()
	require.NoError(t, err)
	back := history.UnmarshalRing(data, 5)
	require.Equal(t, 2, back.Len())

	got := back.Records()
	assert.Equal(t, "sin(x)", got[0].Expression)
	assert.Equal(t, first.ID, got[1].ID)
	assert.Equal(t, first.Steps, got[1].Steps)
	assert.True(t, first.Timestamp.Equal(got[1].Timestamp))
}

func TestUnmarshalRing_Tolerant(t *testing.T) {
	for _, data := range []string{"", "null", "{", `{"expr":"x"}`, "42"} {
		r := history.UnmarshalRing([]byte(data), 10)
		assert.Equal(t, 0, r.Len(), "%q", data)
		assert.Equal(t, 10, r.Cap())
	}

	r := history.UnmarshalRing([]byte(`[{"expr":"a"},{"expr":7},"junk",{"expr":"b"}]`), 10)
	assert.Equal(t, []string{"a", "b"}, expressions(r.Records()))
}

func TestUnmarshalRing_TruncatesOldest(t *testing.T) {
	r := history.UnmarshalRing([]byte(`[{"expr":"new"},{"expr":"mid"},{"expr":"old"}]`), 2)
	assert.Equal(t, []string{"new", "mid"}, expressions(r.Records()))
}

func TestNewRecord(t *testing.T) {
	r := rec("x")
	_, err := uuid.Parse(r.ID)
	assert.NoError(t, err)
	assert.False(t, r.Timestamp.IsZero())
	assert.NotEqual(t, r.ID, rec("x").ID)
}

// ============================================================
// Backends
// ============================================================

func backends(t *testing.T) map[string]history.KV {
	t.Helper()
	file, err := history.NewFileKV(filepath.Join(t.TempDir(), "hist"))
	require.NoError(t, err)
	db, err := history.NewSQLiteKV(filepath.Join(t.TempDir(), "hist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return map[string]history.KV{
		"memory": history.NewMemoryKV(),
		"file":   file,
		"sqlite": db,
	}
}

func TestKV_Contract(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(ctx, "k")
			assert.True(t, errors.Is(err, history.ErrNotFound))

			require.NoError(t, kv.Put(ctx, "k", []byte("one")))
			require.NoError(t, kv.Put(ctx, "k", []byte("two")))
			got, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "two", string(got))

			require.NoError(t, kv.Delete(ctx, "k"))
			_, err = kv.Get(ctx, "k")
			assert.True(t, errors.Is(err, history.ErrNotFound))
			assert.NoError(t, kv.Delete(ctx, "k"))
		})
	}
}

func TestFileKV_RejectsPathKeys(t *testing.T) {
	kv, err := history.NewFileKV(t.TempDir())
	require.NoError(t, err)
	for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
		err := kv.Put(context.Background(), key, []byte("x"))
		assert.True(t, errors.Is(err, history.ErrInvalidKey), key)
	}
}

func TestSQLiteKV_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist.db")
	ctx := context.Background()

	db, err := history.NewSQLiteKV(path)
	require.NoError(t, err)
	require.NoError(t, history.NewStore(db, 0, nil).Save(ctx, rec("x^3")))
	require.NoError(t, db.Close())

	db, err = history.NewSQLiteKV(path)
	require.NoError(t, err)
	defer db.Close()
	latest, ok := history.NewStore(db, 0, nil).Latest(ctx)
	require.True(t, ok)
	assert.Equal(t, "x^3", latest.Expression)
}

// ============================================================
// Store
// ============================================================

func TestStore_SaveListClear(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := history.NewStore(kv, 2, nil)
			assert.Empty(t, s.List(ctx))

			for _, e := range []string{"a", "b", "c"} {
				require.NoError(t, s.Save(ctx, rec(e)))
			}
			assert.Equal(t, []string{"c", "b"}, expressions(s.List(ctx)))

			require.NoError(t, s.Clear(ctx))
			assert.Empty(t, s.List(ctx))
			_, ok := s.Latest(ctx)
			assert.False(t, ok)
		})
	}
}

func TestStore_FillsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	s := history.NewStore(history.NewMemoryKV(), 0, nil)
	require.NoError(t, s.Save(ctx, history.Record{Expression: "x"}))
	latest, ok := s.Latest(ctx)
	require.True(t, ok)
	assert.NotEmpty(t, latest.ID)
	assert.False(t, latest.Timestamp.IsZero())
}

func TestStore_CorruptBlobIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := history.NewMemoryKV()
	require.NoError(t, kv.Put(ctx, history.Key, []byte("not json")))

	s := history.NewStore(kv, 0, nil)
	assert.Empty(t, s.List(ctx))
	require.NoError(t, s.Save(ctx, rec("x")))
	assert.Equal(t, []string{"x"}, expressions(s.List(ctx)))
}

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (brokenKV) Put(context.Context, string, []byte) error   { return errors.New("disk gone") }
func (brokenKV) Delete(context.Context, string) error        { return errors.New("disk gone") }

func TestStore_BackendFailures(t *testing.T) {
	ctx := context.Background()
	s := history.NewStore(brokenKV{}, 0, nil)
	assert.Empty(t, s.List(ctx))
	assert.Error(t, s.Save(ctx, rec("x")))
	assert.Error(t, s.Clear(ctx))
}

func TestStore_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	s := history.NewStore(history.NewMemoryKV(), 0, nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Save(ctx, rec(fmt.Sprint(i))))
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.List(ctx), 20)
}

func TestFileKV_WritesUnderDir(t *testing.T) {
	dir := t.TempDir()
	kv, err := history.NewFileKV(dir)
	require.NoError(t, err)
	require.NoError(t, history.NewStore(kv, 0, nil).Save(context.Background(), rec("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, history.Key+".json", entries[0].Name())
}

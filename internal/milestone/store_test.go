package milestone

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	store, err := NewStore(filepath.Join(t.TempDir(), "milestones"))
	require.NoError(t, err)

	saved, err := store.Save(Milestone{
		Title:       "Add Session Cache",
		Description: "Cache sessions in redis",
	})
	require.NoError(t, err)
	require.Equal(t, "add-session-cache", saved.ID)
	require.False(t, saved.CreatedAt.IsZero())

	got, err := store.Get(saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved.Title, got.Title)
	require.Equal(t, saved.Description, got.Description)
}

func TestSaveNeedsTitleOrID(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(Milestone{Description: "no title"})
	require.Error(t, err)

	// An explicit ID is enough.
	saved, err := store.Save(Milestone{ID: "m1", Description: "no title"})
	require.NoError(t, err)
	require.Equal(t, "m1", saved.ID)
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("nope")
	require.Error(t, err)
}

func TestListSortedByCreation(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"third", "first", "second"} {
		offset := map[string]time.Duration{"first": 0, "second": time.Hour, "third": 2 * time.Hour}[title]
		_, err := store.Save(Milestone{Title: title, CreatedAt: base.Add(offset)})
		require.NoError(t, err, "milestone %d", i)
	}

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "first", list[0].Title)
	require.Equal(t, "second", list[1].Title)
	require.Equal(t, "third", list[2].Title)
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"Add Session Cache", "add-session-cache"},
		{"  Fix: race/condition!  ", "fix-race-condition"},
		{"already-a-slug", "already-a-slug"},
		{"v2 Rollout", "v2-rollout"},
		{"///", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, slugify(tc.in), "title %q", tc.in)
	}
}

package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yourorg/quotevault/internal/repository"
	"github.com/yourorg/quotevault/pkg/database"
)

func newTestImporter(t *testing.T) (*Importer, *repository.SQLiteQuoteRepository) {
	t.Helper()

	pool, err := database.NewConnectionPool(
		context.Background(),
		&database.Config{Path: filepath.Join(t.TempDir(), "quotes.db")},
		nil,
	)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	repo := repository.NewSQLiteQuoteRepository(pool.GetDB(), nil)
	return New(repo, nil), repo
}

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "seed.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSeedIfEmptyImportsAllRows(t *testing.T) {
	imp, repo := newTestImporter(t)

	path := writeSeedFile(t, `quote,source,tags
"Stay hungry, stay foolish.",Steve Jobs,"motivation, life"
The unexamined life is not worth living.,Socrates,philosophy
`)

	imported, err := imp.SeedIfEmpty(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 2, imported)

	n, err := repo.Count()
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	first, err := repo.GetByID(1)
	require.NoError(t, err)
	require.Equal(t, "Stay hungry, stay foolish.", first.Text)
	require.Equal(t, []string{"motivation", "life"}, first.Tags)
}

func TestSeedIfEmptySkipsNonEmptyCatalog(t *testing.T) {
	imp, repo := newTestImporter(t)

	_, err := repo.Create("already here", "someone", nil)
	require.NoError(t, err)

	path := writeSeedFile(t, `quote,source,tags
brand new,someone else,
`)

	imported, err := imp.SeedIfEmpty(context.Background(), path)
	require.NoError(t, err)
	require.Zero(t, imported)

	n, err := repo.Count()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestSeedIfEmptyToleratesMissingFile(t *testing.T) {
	imp, repo := newTestImporter(t)

	imported, err := imp.SeedIfEmpty(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	require.Zero(t, imported)

	n, err := repo.Count()
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSeedIfEmptySkipsBlankRows(t *testing.T) {
	imp, repo := newTestImporter(t)

	path := writeSeedFile(t, `quote,source,tags
,missing quote,x
kept,source,
`)

	imported, err := imp.SeedIfEmpty(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 1, imported)

	got, err := repo.GetByID(1)
	require.NoError(t, err)
	require.Equal(t, "kept", got.Text)
	require.Empty(t, got.Tags)
}

func TestSeedIfEmptyRejectsBadHeader(t *testing.T) {
	imp, _ := newTestImporter(t)

	path := writeSeedFile(t, `text,author
hello,world
`)

	_, err := imp.SeedIfEmpty(context.Background(), path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing")
}

func TestSplitTags(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitTags(" a , b ,a,"))
	require.Nil(t, splitTags("  ,  "))
	require.Nil(t, splitTags(""))
}

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/cord19-explorer/internal/papers"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "cord19.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func records() []papers.Record {
	mk := func(pos, year int, title string) papers.Record {
		return papers.Record{
			Position:          pos,
			Title:             sql.NullString{String: title, Valid: title != ""},
			Journal:           "Lancet",
			PublishTime:       time.Date(year, 3, 1, 0, 0, 0, 0, time.UTC),
			Year:              year,
			AbstractWordCount: pos * 10,
		}
	}
	return []papers.Record{mk(0, 2020, "A"), mk(1, 2020, ""), mk(3, 2021, "C")}
}

func TestSaveRunAndQuery(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	run := NewRun("metadata.csv", 4, 3)
	_, err := uuid.Parse(run.ID)
	require.NoError(t, err, "run id should be a uuid")

	require.NoError(t, s.SaveRun(ctx, run, records()))

	n, err := s.CountPapers(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ycs, err := s.YearCounts(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []YearCount{{2020, 2}, {2021, 1}}, ycs)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, 4, runs[0].RowsIn)
	assert.Equal(t, 3, runs[0].RowsOut)
}

func TestSaveRunIsAtomic(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	dup := records()
	dup[2].Position = dup[0].Position // violates (run_id, position) primary key
	run := NewRun("metadata.csv", 3, 3)
	require.Error(t, s.SaveRun(ctx, run, dup))

	n, err := s.CountPapers(ctx, run.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunsRejectsCorruptTimestamp(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, source, rows_in, rows_out) VALUES ('bad', 'yesterday', 'x.csv', 1, 1)`)
	require.NoError(t, err)

	_, err = s.Runs(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run bad created_at")
}

func TestRunsAreIsolated(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	a, b := NewRun("a.csv", 3, 3), NewRun("b.csv", 1, 1)
	require.NoError(t, s.SaveRun(ctx, a, records()))
	require.NoError(t, s.SaveRun(ctx, b, records()[:1]))

	n, err := s.CountPapers(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.CountPapers(ctx, "no-such-run")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cord19.db")
	s, err := Open(path)
	require.NoError(t, err)
	run := NewRun("metadata.csv", 3, 3)
	require.NoError(t, s.SaveRun(context.Background(), run, records()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, path, s.Path())
	n, err := s.CountPapers(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docpdf/internal/batch"
	"github.com/pdiddy/docpdf/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func summary(id string, started time.Time, failing ...string) batch.Summary {
	sum := batch.Summary{BatchID: id, Started: started, Finished: started.Add(2 * time.Second)}
	fail := map[string]bool{}
	for _, f := range failing {
		fail[f] = true
	}
	for i, src := range []string{"/in/a.docx", "/in/b.xlsx", "/in/c.txt"} {
		r := types.ConversionResult{Index: i, SourcePath: src}
		if fail[src] {
			r.Err = types.NewJobError(types.KindConverterFailure, "convert", src, errors.New("soffice failed"))
		} else {
			r.OutputPath = "/out/" + filepath.Base(src) + ".pdf"
		}
		sum.Results = append(sum.Results, r)
	}
	return sum
}

func TestSaveAndList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, summary("older", base)))
	require.NoError(t, s.Save(ctx, summary("newer", base.Add(time.Hour), "/in/b.xlsx")))

	records, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	newest := records[0]
	assert.Equal(t, "newer", newest.BatchID)
	assert.True(t, newest.Started.Equal(base.Add(time.Hour)))
	assert.Equal(t, 3, newest.Total)
	assert.Equal(t, 2, newest.Succeeded)
	assert.Equal(t, 1, newest.Failed)
	require.Len(t, newest.Results, 3)

	failures := newest.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "/in/b.xlsx", failures[0].SourcePath)
	assert.Equal(t, types.KindConverterFailure, failures[0].Err.Kind)
	assert.Equal(t, "soffice failed", failures[0].Err.Message)
	assert.Empty(t, failures[0].OutputPath)

	assert.Equal(t, "older", records[1].BatchID)
	assert.Empty(t, records[1].Failures())
	assert.Equal(t, "/out/a.docx.pdf", records[1].Results[0].OutputPath)
}

func TestList_Limit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"one", "two", "three"} {
		require.NoError(t, s.Save(ctx, summary(id, base.Add(time.Duration(i)*time.Minute))))
	}

	records, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "three", records[0].BatchID)
	assert.Equal(t, "two", records[1].BatchID)
}

func TestSave_ReplacesSameBatch(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, summary("dup", base, "/in/a.docx")))
	require.NoError(t, s.Save(ctx, summary("dup", base)))

	records, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].Failed)
	assert.Len(t, records[0].Results, 3)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), summary("kept", time.Now())))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	records, err := s.List(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "kept", records[0].BatchID)
}

func TestList_Empty(t *testing.T) {
	records, err := openStore(t).List(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, records)
}

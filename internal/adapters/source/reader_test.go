package source_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/okian/cascade/internal/adapters/source"
	"github.com/okian/cascade/internal/domain/model"
	"github.com/okian/cascade/pkg/logger"
)

const header = "№;Приоритет;Согласие;ФИО;Баллы;Доп;Статус;ID"

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func row(priority, consent, scores, status, id string) string {
	return strings.Join([]string{"1", priority, consent, "name", scores, "", status, id}, ";")
}

func lines(rows ...string) []byte {
	return []byte(strings.Join(append([]string{header}, rows...), "\n") + "\n")
}

func TestReaderParse(t *testing.T) {
	ctx := context.Background()
	active := source.DefaultActiveStatus

	t.Run("keeps eligible rows in source order", func(t *testing.T) {
		r := source.NewReader()
		track, summary, err := r.Parse(ctx, "a.csv", lines(
			row("1", "да", "70 80 90", active, "100"),
			row("2", "да", "60", active, "200"),
		))
		require.NoError(t, err)
		require.Len(t, track.Records, 2)
		assert.Equal(t, "a.csv", track.Source)
		assert.Equal(t, 2, summary.Loaded)

		first := track.Records[0]
		assert.Equal(t, "100", first.ID)
		assert.Equal(t, 1, first.Priority)
		assert.Equal(t, model.Scores{70, 80, 90}, first.Scores)
		assert.Len(t, first.Raw, 8)

		assert.Equal(t, model.Scores{60, 0, 0}, track.Records[1].Scores)
	})

	t.Run("compares status and consent cells after trimming spaces", func(t *testing.T) {
		r := source.NewReader()
		track, summary, err := r.Parse(ctx, "a.csv", lines(
			row("1", "да", "70", "  "+active+" ", "1"),
			row("1", " "+source.DefaultNoConsentMarker+" ", "70", active, "2"),
		))
		require.NoError(t, err)
		require.Len(t, track.Records, 1)
		assert.Equal(t, "1", track.Records[0].ID)
		assert.Equal(t, 1, summary.Skipped[source.SkipNoConsent])
	})

	t.Run("skips rows that are not competing", func(t *testing.T) {
		r := source.NewReader()
		track, summary, err := r.Parse(ctx, "a.csv", lines(
			row("1", "да", "70 80 90", "Выбыл", "1"),
			row("1", source.DefaultNoConsentMarker, "70 80 90", active, "2"),
			row("1", "да", "   ", active, "3"),
			row("x", "да", "70", active, "4"),
			row("0", "да", "70", active, "5"),
			row("1", "да", "70", active, ""),
			"1;2;3",
			row("1", "да", "70", active, "6"),
			row("2", "да", "99", active, "6"),
		))
		require.NoError(t, err)
		require.Len(t, track.Records, 1)
		assert.Equal(t, "6", track.Records[0].ID)
		assert.Equal(t, 1, track.Records[0].Priority, "first occurrence of an id wins")
		assert.Equal(t, map[string]int{
			source.SkipInactiveStatus:  1,
			source.SkipNoConsent:       1,
			source.SkipEmptyScores:     1,
			source.SkipInvalidPriority: 2,
			source.SkipMissingID:       1,
			source.SkipShortRow:        1,
			source.SkipDuplicateID:     1,
		}, summary.Skipped)
	})

	t.Run("withdrawal markers keep the row with zero scores", func(t *testing.T) {
		r := source.NewReader()
		track, _, err := r.Parse(ctx, "a.csv", lines(row("1", "да", "Без", active, "7")))
		require.NoError(t, err)
		require.Len(t, track.Records, 1)
		assert.Equal(t, model.Scores{}, track.Records[0].Scores)
	})

	t.Run("filters can be disabled", func(t *testing.T) {
		r := source.NewReader(source.WithActiveStatus(""), source.WithNoConsentMarker(""))
		track, _, err := r.Parse(ctx, "a.csv", lines(
			row("1", source.DefaultNoConsentMarker, "70", "anything", "1"),
		))
		require.NoError(t, err)
		assert.Len(t, track.Records, 1)
	})

	t.Run("custom schema and delimiter", func(t *testing.T) {
		r := source.NewReader(
			source.WithSchema(source.Schema{ID: 0, Priority: 1, Scores: 2, Consent: 3, Status: 4}),
			source.WithDelimiter(','),
			source.WithSkipHeader(false),
			source.WithActiveStatus("in"),
		)
		track, _, err := r.Parse(ctx, "b.csv", []byte("abc,2,50 50 50,yes,in\n"))
		require.NoError(t, err)
		require.Len(t, track.Records, 1)
		assert.Equal(t, "abc", track.Records[0].ID)
		assert.Equal(t, 2, track.Records[0].Priority)
		assert.Equal(t, 150, track.Records[0].Scores.Sum())
	})

	t.Run("windows-1251 input is decoded", func(t *testing.T) {
		utf := lines(row("1", "да", "70 70 70", active, "9"))
		legacy, err := charmap.Windows1251.NewEncoder().Bytes(utf)
		require.NoError(t, err)

		track, _, err := source.NewReader().Parse(ctx, "c.csv", legacy)
		require.NoError(t, err)
		require.Len(t, track.Records, 1)
		assert.Equal(t, active, track.Records[0].Raw[6])
	})

	t.Run("utf-8 byte order mark is ignored", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, lines(row("1", "да", "1 1 1", active, "1"))...)
		track, _, err := source.NewReader().Parse(ctx, "d.csv", data)
		require.NoError(t, err)
		assert.Len(t, track.Records, 1)
	})
}

func TestReaderLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("reads a file from disk", func(t *testing.T) {
		path := filepath.Join(dir, "list.csv")
		require.NoError(t, os.WriteFile(path, lines(row("1", "да", "90 90 90", source.DefaultActiveStatus, "1")), 0o600))

		track, err := source.NewReader().Load(ctx, path)
		require.NoError(t, err)
		require.Len(t, track.Records, 1)
		assert.Equal(t, 270, track.Records[0].Scores.Sum())
	})

	t.Run("missing file yields an empty track", func(t *testing.T) {
		path := filepath.Join(dir, "missing.csv")
		track, err := source.NewReader().Load(ctx, path)
		require.NoError(t, err)
		assert.Empty(t, track.Records)
		assert.Equal(t, path, track.Source)
	})
}

func TestSchema(t *testing.T) {
	assert.Equal(t, 8, source.DefaultSchema().Width())
	assert.NoError(t, source.DefaultSchema().Validate())

	bad := source.DefaultSchema()
	bad.Scores = -1
	assert.ErrorIs(t, bad.Validate(), source.ErrSchema)
}

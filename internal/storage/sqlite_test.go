package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtobolski/sitecv/internal/publication"
)

// setupTestDB creates an index holding a small fixed record set.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "publications.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	records := []publication.Record{
		publication.New(publication.Fields{RecordType: "article", Year: "2021", Category: "A", Citation: "Kowalski J. Graphene membranes. Nature 2021."}),
		publication.New(publication.Fields{RecordType: "article", Year: "2023", Category: "B", Citation: "Nowak A. Soil microbiome survey."}),
		publication.New(publication.Fields{RecordType: "book_chapter", Citation: "Chapter without a year."}),
		publication.New(publication.Fields{RecordType: "article", Year: "2023", Category: "a", Citation: "Wiśniewski P. Graphene oxide sensors."}),
		publication.New(publication.Fields{RecordType: "conference_contribution", Year: "2022", Subtype: "poster", StartDate: "12.05.2022", Citation: "Poster on soil."}),
	}

	n, err := db.Rebuild(records, "digest-1")
	require.NoError(t, err)
	require.Equal(t, len(records), n)
	return db
}

func citations(records []publication.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Citation
	}
	return out
}

func TestList_OrderAndFilters(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "all, newest first, missing year last",
			filter: Filter{},
			want: []string{
				"Nowak A. Soil microbiome survey.",
				"Wiśniewski P. Graphene oxide sensors.",
				"Poster on soil.",
				"Kowalski J. Graphene membranes. Nature 2021.",
				"Chapter without a year.",
			},
		},
		{
			name:   "category is case-insensitive",
			filter: Filter{Category: "a"},
			want:   []string{"Wiśniewski P. Graphene oxide sensors.", "Kowalski J. Graphene membranes. Nature 2021."},
		},
		{
			name:   "record type",
			filter: Filter{RecordType: "book_chapter"},
			want:   []string{"Chapter without a year."},
		},
		{
			name:   "year",
			filter: Filter{Year: 2023},
			want:   []string{"Nowak A. Soil microbiome survey.", "Wiśniewski P. Graphene oxide sensors."},
		},
		{
			name:   "full-text search",
			filter: Filter{Search: "graphene"},
			want:   []string{"Wiśniewski P. Graphene oxide sensors.", "Kowalski J. Graphene membranes. Nature 2021."},
		},
		{
			name:   "search with operator characters",
			filter: Filter{Search: `soil "AND`},
			want:   nil,
		},
		{
			name:   "limit",
			filter: Filter{Limit: 2},
			want:   []string{"Nowak A. Soil microbiome survey.", "Wiśniewski P. Graphene oxide sensors."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.List(tt.filter)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, citations(got))
		})
	}
}

func TestList_ParsesValues(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.List(Filter{RecordType: "conference_contribution"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	r := got[0]
	require.NotNil(t, r.YearValue)
	assert.Equal(t, 2022, *r.YearValue)
	require.NotNil(t, r.Start)
	assert.Equal(t, "12.05.2022", r.Start.Format(publication.DateLayout))
	assert.True(t, r.IsPoster())
}

func TestRebuild_ReplacesContents(t *testing.T) {
	db := setupTestDB(t)

	digest, err := db.SourceDigest()
	require.NoError(t, err)
	assert.Equal(t, "digest-1", digest)

	_, err = db.Rebuild([]publication.Record{
		publication.New(publication.Fields{Year: "2020", Citation: "Only one."}),
	}, "digest-2")
	require.NoError(t, err)

	count, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	digest, err = db.SourceDigest()
	require.NoError(t, err)
	assert.Equal(t, "digest-2", digest)

	got, err := db.List(Filter{Search: "graphene"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSourceDigest_Empty(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer db.Close()

	digest, err := db.SourceDigest()
	require.NoError(t, err)
	assert.Empty(t, digest)
}

package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileListQuery_SearchIsBound(t *testing.T) {
	// The search term must land in the args, never in the SQL text.
	hostile := `'; DROP TABLE files; --`
	query, args := compileListQuery(ListFilter{Search: hostile})

	assert.NotContains(t, query, "DROP TABLE")
	require.Len(t, args, 2)
	assert.Contains(t, args[0].(string), "drop table files")
}

func TestCompileListQuery_NoFilters(t *testing.T) {
	query, args := compileListQuery(ListFilter{})

	assert.Empty(t, args)
	assert.Contains(t, query, "ORDER BY uploadDate DESC, id ASC")
	assert.NotContains(t, query, "mimeType LIKE")
}

func TestCompileListQuery_SortOldest(t *testing.T) {
	query, _ := compileListQuery(ListFilter{Sort: SortOldest})
	assert.Contains(t, query, "ORDER BY uploadDate ASC, id ASC")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c\\d`, escapeLike(`c\d`))
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryImage, ParseCategory("image"))
	assert.Equal(t, CategoryDocument, ParseCategory("document"))
	assert.Equal(t, CategoryOther, ParseCategory("other"))
	assert.Equal(t, CategoryAll, ParseCategory("all"))
	assert.Equal(t, CategoryAll, ParseCategory(""))
	assert.Equal(t, CategoryAll, ParseCategory("bogus"))
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortOldest, ParseSortOrder("oldest"))
	assert.Equal(t, SortNewest, ParseSortOrder("newest"))
	assert.Equal(t, SortNewest, ParseSortOrder(""))
	assert.Equal(t, SortNewest, ParseSortOrder("sideways"))
}

// categoryFixtures covers every branch of the category classification.
var categoryFixtures = map[string]Category{
	"image/png":        CategoryImage,
	"image/svg+xml":    CategoryImage,
	"application/pdf":  CategoryDocument,
	"text/plain":       CategoryDocument,
	"text/csv":         CategoryDocument,
	"application/msword": CategoryDocument,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": CategoryDocument,
	"application/zip": CategoryOther,
	"video/mp4":       CategoryOther,
	"audio/mpeg":      CategoryOther,
}

func TestListFiles_CategoryPartition(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	idsByCategory := map[Category]map[int64]bool{
		CategoryImage:    {},
		CategoryDocument: {},
		CategoryOther:    {},
	}
	total := 0
	for mimeType, want := range categoryFixtures {
		rec := insertTestFile(t, store, FileRecord{
			Name:     strings.ReplaceAll(mimeType, "/", "-"),
			MimeType: mimeType,
		})
		idsByCategory[want][rec.ID] = true
		total++
	}

	// Each record appears in exactly one of image/document/other.
	seen := map[int64]int{}
	for _, cat := range []Category{CategoryImage, CategoryDocument, CategoryOther} {
		records, err := store.ListFiles(ctx, ListFilter{Category: cat})
		require.NoError(t, err)
		assert.Len(t, records, len(idsByCategory[cat]), "category %s", cat)
		for _, rec := range records {
			assert.True(t, idsByCategory[cat][rec.ID], "record %d (%s) misclassified as %s", rec.ID, rec.MimeType, cat)
			seen[rec.ID]++
		}
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "record %d must classify into exactly one category", id)
	}

	// all is the union of the three.
	records, err := store.ListFiles(ctx, ListFilter{Category: CategoryAll})
	require.NoError(t, err)
	assert.Len(t, records, total)
}

func TestListFiles_SearchCaseInsensitive(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	invoice := insertTestFile(t, store, FileRecord{Name: "Invoice.pdf", MimeType: "application/pdf"})
	insertTestFile(t, store, FileRecord{Name: "photo.png", MimeType: "image/png"})

	records, err := store.ListFiles(ctx, ListFilter{Search: "invoice"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, invoice.ID, records[0].ID)
}

func TestListFiles_SearchMatchesNotes(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tagged := insertTestFile(t, store, FileRecord{Name: "scan001.png", MimeType: "image/png", Notes: "Tax Receipt 2024"})
	insertTestFile(t, store, FileRecord{Name: "scan002.png", MimeType: "image/png"})

	records, err := store.ListFiles(ctx, ListFilter{Search: "receipt"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, tagged.ID, records[0].ID)
}

func TestListFiles_SearchWildcardsAreLiteral(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	exact := insertTestFile(t, store, FileRecord{Name: "sale 100% off.txt", MimeType: "text/plain"})
	insertTestFile(t, store, FileRecord{Name: "sale 1000 items.txt", MimeType: "text/plain"})

	records, err := store.ListFiles(ctx, ListFilter{Search: "100%"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, exact.ID, records[0].ID)
}

func TestListFiles_SearchAndCategoryCombine(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	match := insertTestFile(t, store, FileRecord{Name: "holiday.png", MimeType: "image/png"})
	insertTestFile(t, store, FileRecord{Name: "holiday.pdf", MimeType: "application/pdf"})
	insertTestFile(t, store, FileRecord{Name: "work.png", MimeType: "image/png"})

	records, err := store.ListFiles(ctx, ListFilter{Search: "holiday", Category: CategoryImage})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, match.ID, records[0].ID)
}

func TestListFiles_SortAndTieBreak(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	a := insertTestFile(t, store, FileRecord{Name: "a", UploadDate: late})
	b := insertTestFile(t, store, FileRecord{Name: "b", UploadDate: early})
	c := insertTestFile(t, store, FileRecord{Name: "c", UploadDate: early})

	// newest: late first, then the tied records in insertion order
	records, err := store.ListFiles(ctx, ListFilter{Sort: SortNewest})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, recordIDs(records))

	// oldest: tied records still in insertion order, late last
	records, err = store.ListFiles(ctx, ListFilter{Sort: SortOldest})
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, c.ID, a.ID}, recordIDs(records))
}

func recordIDs(records []*FileRecord) []int64 {
	ids := make([]int64, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return ids
}

// ABOUTME: Compiles a ListFilter into parameterized SQL for the files table
// ABOUTME: Category patterns are constants; user text is always a bound argument

package store

import "strings"

// fileColumns is the column list shared by all SELECTs over the files table.
const fileColumns = `id, name, originalName, mimeType, size, uploadDate, notes, storageRef`

// Category membership predicates. These contain no user input: the search
// term is the only caller-controlled text and it is always bound, never
// concatenated.
const (
	imagePredicate = `mimeType LIKE 'image/%'`

	documentPredicate = `(mimeType = 'application/pdf'` +
		` OR mimeType LIKE 'text/%'` +
		` OR mimeType = 'application/msword'` +
		` OR mimeType LIKE 'application/vnd.openxmlformats-officedocument.%')`
)

// compileListQuery builds the SELECT for a ListFilter. The three axes are
// independent and ANDed together. "other" is the residual of image and
// document, so unanticipated mime types land there by construction.
func compileListQuery(f ListFilter) (string, []any) {
	var args []any
	query := `SELECT ` + fileColumns + ` FROM files WHERE 1=1`

	if f.Search != "" {
		query += ` AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(notes) LIKE ? ESCAPE '\')`
		term := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		args = append(args, term, term)
	}

	switch f.Category {
	case CategoryImage:
		query += ` AND ` + imagePredicate
	case CategoryDocument:
		query += ` AND ` + documentPredicate
	case CategoryOther:
		query += ` AND NOT (` + imagePredicate + ` OR ` + documentPredicate + `)`
	}

	// Equal timestamps fall back to insertion order so listings stay
	// deterministic under both sort directions.
	switch f.Sort {
	case SortOldest:
		query += ` ORDER BY uploadDate ASC, id ASC`
	default:
		query += ` ORDER BY uploadDate DESC, id ASC`
	}

	return query, args
}

// escapeLike escapes LIKE wildcards so the search term matches as a literal
// substring.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

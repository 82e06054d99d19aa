package book

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"librarydesk/internal/platform/validate"
)

const (
	dialectPostgres = "postgres"
	tableBooks      = "books"

	colID                = "id"
	colTitle             = "title"
	colAuthor            = "author"
	colISBN              = "isbn"
	colGenre             = "genre"
	colPublicationYear   = "publication_year"
	colQuantity          = "quantity"
	colAvailableQuantity = "available_quantity"
	colDescription       = "description"
	colCoverImageURL     = "cover_image_url"
	colCreatedAt         = "created_at"
	colUpdatedAt         = "updated_at"
	colVersion           = "version"
)

var bookColumns = []any{
	colID, colTitle, colAuthor, colISBN, colGenre, colPublicationYear,
	colQuantity, colAvailableQuantity, colDescription, colCoverImageURL,
	colCreatedAt, colUpdatedAt, colVersion,
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func orderFor(sort string) exp.OrderedExpression {
	switch sort {
	case SortTitleDesc:
		return goqu.C(colTitle).Desc()
	case SortAuthor:
		return goqu.C(colAuthor).Asc()
	case SortAuthorDesc:
		return goqu.C(colAuthor).Desc()
	case SortYear:
		return goqu.C(colPublicationYear).Asc()
	case SortYearDesc:
		return goqu.C(colPublicationYear).Desc()
	default:
		return goqu.C(colTitle).Asc()
	}
}

// buildListQuery composes the catalog listing. Ties always fall back to id so
// repeated calls return the same order.
func buildListQuery(q Query) (string, []any, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(tableBooks).
		Select(bookColumns...).
		Prepared(true)

	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		conds := []exp.Expression{
			goqu.C(colTitle).ILike(pattern),
			goqu.C(colAuthor).ILike(pattern),
			goqu.C(colISBN).ILike(pattern),
		}
		// ISBNs are stored without separators.
		if isbn := validate.NormalizeISBN(q.Search); isbn != "" && isbn != q.Search {
			conds = append(conds, goqu.C(colISBN).ILike("%"+escapeLike(isbn)+"%"))
		}
		stmt = stmt.Where(goqu.Or(conds...))
	}
	if q.Genre != "" {
		stmt = stmt.Where(goqu.C(colGenre).Eq(q.Genre))
	}

	stmt = stmt.Order(orderFor(q.Sort), goqu.C(colID).Asc())

	sql, args, err := stmt.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build list query: %w", err)
	}
	return sql, args, nil
}

func buildGenresQuery() (string, []any, error) {
	sql, args, err := goqu.Dialect(dialectPostgres).
		From(tableBooks).
		Select(goqu.C(colGenre)).
		Distinct().
		Order(goqu.C(colGenre).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build genres query: %w", err)
	}
	return sql, args, nil
}

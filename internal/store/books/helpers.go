package books

import (
	"database/sql"
	"time"

	"github.com/5w1tchy/bookshelf/internal/models"
	"github.com/5w1tchy/bookshelf/internal/store/dbx"
)

const selectBook = `
SELECT
  b.id, b.title, b.author, b.read_status, b.read_reason, b.is_wonder,
  b.category_id, c.category_name, b.start_date, b.end_date, b.review,
  b.created_by::text, COALESCE(cu.username, ''), b.created_at,
  b.updated_by::text, COALESCE(uu.username, ''), b.updated_at
FROM books b
LEFT JOIN categories c ON c.id = b.category_id
LEFT JOIN users cu     ON cu.id = b.created_by
LEFT JOIN users uu     ON uu.id = b.updated_by
`

// BookColumns is the column list of selectBook, for tests.
var BookColumns = []string{
	"id", "title", "author", "read_status", "read_reason", "is_wonder",
	"category_id", "category_name", "start_date", "end_date", "review",
	"created_by", "created_by_name", "created_at",
	"updated_by", "updated_by_name", "updated_at",
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (models.Book, error) {
	var (
		b                             models.Book
		title, author, reason, review sql.NullString
		catName, createdBy, updatedBy sql.NullString
		status, catID                 sql.NullInt64
		start, end                    sql.NullTime
	)
	err := row.Scan(
		&b.ID, &title, &author, &status, &reason, &b.IsWonder,
		&catID, &catName, &start, &end, &review,
		&createdBy, &b.CreatedByName, &b.CreatedAt,
		&updatedBy, &b.UpdatedByName, &b.UpdatedAt,
	)
	if err != nil {
		return models.Book{}, err
	}
	b.Title, b.Author, b.ReadReason, b.Review = title.String, author.String, reason.String, review.String
	b.ReadStatus = models.ReadStatus(status.Int64)
	b.CategoryName = catName.String
	if catID.Valid {
		id := catID.Int64
		b.CategoryID = &id
	}
	b.StartDate = timePtr(start)
	b.EndDate = timePtr(end)
	b.CreatedBy = strPtr(createdBy)
	b.UpdatedBy = strPtr(updatedBy)
	return b, nil
}

// fieldArgs returns the editable columns in insert/update order.
func fieldArgs(in Input) []any {
	var status any
	if in.ReadStatus != 0 {
		status = int(in.ReadStatus)
	}
	var cat any
	if in.CategoryID != nil {
		cat = *in.CategoryID
	}
	return []any{
		dbx.NullIfEmpty(in.Title),
		dbx.NullIfEmpty(in.Author),
		status,
		dbx.NullIfEmpty(in.ReadReason),
		in.IsWonder,
		cat,
		datePtr(in.StartDate),
		datePtr(in.EndDate),
		dbx.NullIfEmpty(in.Review),
	}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func datePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

package categories_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/5w1tchy/bookshelf/internal/store/categories"
	"github.com/5w1tchy/bookshelf/internal/store/dbx"
)

func TestDelete_ClearsBooksThenDeletes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE books SET category_id = NULL WHERE category_id = $1`)).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = $1`)).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := categories.New(db).Delete(t.Context(), 2); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDelete_MissingRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE books`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM categories`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := categories.New(db).Delete(t.Context(), 9); !errors.Is(err, dbx.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListAndCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	s := categories.New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO categories (category_name) VALUES ($1) RETURNING id`)).
		WithArgs("Essays").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`FROM categories`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_name"}).AddRow(5, "Essays").AddRow(1, ""))

	c, err := s.Create(t.Context(), "Essays")
	if err != nil || c.ID != 5 {
		t.Fatalf("create = %+v, %v", c, err)
	}
	list, err := s.List(t.Context())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Essays" || list[1].Name != "" {
		t.Fatalf("list = %+v", list)
	}
}

func TestGet_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM categories WHERE id`).WillReturnRows(sqlmock.NewRows([]string{"category_name"}))
	if _, err := categories.New(db).Get(t.Context(), 1); !errors.Is(err, dbx.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

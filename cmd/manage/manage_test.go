package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/charmbracelet/log"

	"github.com/5w1tchy/bookshelf/internal/config"
	"github.com/5w1tchy/bookshelf/internal/security/password"
	"github.com/5w1tchy/bookshelf/internal/storage/s3"
	storebooks "github.com/5w1tchy/bookshelf/internal/store/books"
	"github.com/5w1tchy/bookshelf/internal/validate"
)

type fakeBucket struct {
	puts map[string][]byte
}

func (b *fakeBucket) Put(_ context.Context, key, _ string, body []byte) error {
	b.puts[key] = body
	return nil
}
func (b *fakeBucket) List(context.Context, string) ([]s3.Object, error) { return nil, nil }
func (b *fakeBucket) Delete(context.Context, string) error              { return nil }
func (b *fakeBucket) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.example/" + key + "?sig=x", nil
}

type harness struct {
	mock   sqlmock.Sqlmock
	out    *bytes.Buffer
	bucket *fakeBucket
	opened bool
	runner *Runner
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	h := &harness{mock: mock, out: &bytes.Buffer{}, bucket: &fakeBucket{puts: map[string][]byte{}}}
	cfg := config.Config{Backup: config.BackupConfig{Prefix: "backups"}}
	h.runner = NewRunner(RunnerConfig{
		Config: cfg,
		OpenDB: func(context.Context) (*sql.DB, error) {
			h.opened = true
			return db, nil
		},
		OpenBucket: func(context.Context) (Bucket, error) { return h.bucket, nil },
		Hasher:     password.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		Logger:     log.New(io.Discard),
		Out:        h.out,
	})
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("sql expectations: %v", err)
		}
	})
	return h
}

func (h *harness) run(args ...string) error {
	return h.runner.App().Run(context.Background(), append([]string{"manage"}, args...))
}

func TestCategoryList(t *testing.T) {
	h := newHarness(t)
	h.mock.ExpectQuery("FROM categories").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_name"}).AddRow(1, "Essays").AddRow(2, "Fiction"))
	h.mock.ExpectClose()

	if err := h.run("category", "list"); err != nil {
		t.Fatal(err)
	}
	if got := h.out.String(); got != "1\tEssays\n2\tFiction\n" {
		t.Fatalf("out = %q", got)
	}
}

func TestCategoryAdd(t *testing.T) {
	h := newHarness(t)
	h.mock.ExpectQuery("INSERT INTO categories").WithArgs("Poetry").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	h.mock.ExpectClose()

	if err := h.run("category", "add", "  Poetry "); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.out.String(), "Category 5: Poetry") {
		t.Fatalf("out = %q", h.out.String())
	}
}

func TestCategoryAdd_TooLongNeverTouchesDB(t *testing.T) {
	h := newHarness(t)
	err := h.run("category", "add", strings.Repeat("n", 21))
	var verrs validate.Errors
	if !errors.As(err, &verrs) || verrs["name"] == "" {
		t.Fatalf("err = %v", err)
	}
	if h.opened {
		t.Fatal("database opened for invalid input")
	}
}

func TestCategoryRemove_Missing(t *testing.T) {
	h := newHarness(t)
	h.mock.ExpectBegin()
	h.mock.ExpectExec("UPDATE books SET category_id = NULL").WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	h.mock.ExpectExec("DELETE FROM categories").WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	h.mock.ExpectRollback()
	h.mock.ExpectClose()

	err := h.run("category", "rm", "9")
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("err = %v", err)
	}
}

func TestUserAdd_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad email", []string{"--email", "nope", "--username", "u", "--password", "long enough"}, "email"},
		{"short password", []string{"--email", "a@b.co", "--username", "u", "--password", "short"}, password.ErrTooShort.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			err := h.run(append([]string{"user", "add"}, tt.args...)...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v", err)
			}
			if h.opened {
				t.Fatal("database opened for invalid input")
			}
		})
	}
}

func TestUserAdd(t *testing.T) {
	h := newHarness(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	h.mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "reader@example.com", "reader", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	h.mock.ExpectClose()

	err := h.run("user", "add", "--email", "Reader@Example.com", "--username", "reader", "--password", "correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.out.String(), "(reader@example.com)") {
		t.Fatalf("out = %q", h.out.String())
	}
}

func TestBackup(t *testing.T) {
	h := newHarness(t)
	h.mock.ExpectQuery("FROM categories").WillReturnRows(sqlmock.NewRows([]string{"id", "category_name"}))
	h.mock.ExpectQuery("FROM books b").WillReturnRows(sqlmock.NewRows(storebooks.BookColumns))
	h.mock.ExpectClose()

	if err := h.run("backup", "--prefix", "nightly", "--link"); err != nil {
		t.Fatal(err)
	}
	if len(h.bucket.puts) != 1 {
		t.Fatalf("puts = %d", len(h.bucket.puts))
	}
	for key := range h.bucket.puts {
		if !strings.HasPrefix(key, "nightly/bookshelf-") {
			t.Fatalf("key = %q", key)
		}
		if !strings.Contains(h.out.String(), "https://bucket.example/"+key) {
			t.Fatalf("out = %q", h.out.String())
		}
	}
}

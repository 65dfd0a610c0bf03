package backup_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/5w1tchy/bookshelf/internal/backup"
	"github.com/5w1tchy/bookshelf/internal/filter"
	"github.com/5w1tchy/bookshelf/internal/models"
	"github.com/5w1tchy/bookshelf/internal/storage/s3"
)

type books []models.Book

func (b books) List(_ context.Context, q filter.Query, limit, offset int) ([]models.Book, error) {
	if limit != 0 || offset != 0 || q.None {
		return nil, errors.New("snapshot must read every book")
	}
	return b, nil
}

type cats []models.Category

func (c cats) List(context.Context) ([]models.Category, error) { return c, nil }

type bucket struct {
	objects map[string][]byte
	failPut bool
}

func newBucket(keys ...string) *bucket {
	b := &bucket{objects: map[string][]byte{}}
	for _, k := range keys {
		b.objects[k] = nil
	}
	return b
}

func (b *bucket) Put(_ context.Context, key, _ string, body []byte) error {
	if b.failPut {
		return errors.New("bucket unavailable")
	}
	b.objects[key] = body
	return nil
}

func (b *bucket) List(_ context.Context, prefix string) ([]s3.Object, error) {
	var out []s3.Object
	for k := range b.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, s3.Object{Key: k})
		}
	}
	return out, nil
}

func (b *bucket) Delete(_ context.Context, key string) error {
	delete(b.objects, key)
	return nil
}

func (b *bucket) keys() []string {
	var out []string
	for k := range b.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var fixed = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func TestKey(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"backups", "backups/bookshelf-20250304T050607Z.json"},
		{"/nightly/", "nightly/bookshelf-20250304T050607Z.json"},
		{"", "bookshelf-20250304T050607Z.json"},
	}
	for _, tt := range tests {
		if got := backup.Key(tt.prefix, fixed.In(time.FixedZone("x", 3600))); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestRun_UploadsSnapshot(t *testing.T) {
	cid := int64(1)
	b := newBucket()
	svc := backup.New(
		books{{ID: 7, Title: "Dune", CategoryID: &cid, IsWonder: true}},
		cats{{ID: 1, Name: "SF"}},
		b, "backups", log.New(io.Discard),
	).WithClock(func() time.Time { return fixed })

	key, err := svc.Run(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if key != "backups/bookshelf-20250304T050607Z.json" {
		t.Fatalf("key = %q", key)
	}
	var snap backup.Snapshot
	if err := json.Unmarshal(b.objects[key], &snap); err != nil {
		t.Fatal(err)
	}
	if !snap.TakenAt.Equal(fixed) || len(snap.Books) != 1 || snap.Books[0].Title != "Dune" || snap.Categories[0].Name != "SF" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestRun_EmptyCollectionsEncodeAsArrays(t *testing.T) {
	b := newBucket()
	svc := backup.New(books{}, cats{}, b, "", log.New(io.Discard)).WithClock(func() time.Time { return fixed })
	key, err := svc.Run(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b.objects[key], &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["books"]) != "[]" || string(raw["categories"]) != "[]" {
		t.Fatalf("books=%s categories=%s", raw["books"], raw["categories"])
	}
}

func TestRun_UploadFailure(t *testing.T) {
	b := newBucket()
	b.failPut = true
	_, err := backup.New(books{}, cats{}, b, "x", log.New(io.Discard)).Run(t.Context())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestPrune_KeepsNewest(t *testing.T) {
	b := newBucket(
		"backups/bookshelf-20250101T000000Z.json",
		"backups/bookshelf-20250102T000000Z.json",
		"backups/bookshelf-20250103T000000Z.json",
		"backups/bookshelf-20250104T000000Z.json",
		"backups/notes.txt",
		"other/bookshelf-20240101T000000Z.json",
	)
	svc := backup.New(books{}, cats{}, b, "backups", log.New(io.Discard))

	deleted, err := svc.Prune(t.Context(), 2)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(deleted)
	want := []string{"backups/bookshelf-20250101T000000Z.json", "backups/bookshelf-20250102T000000Z.json"}
	if !reflect.DeepEqual(deleted, want) {
		t.Fatalf("deleted = %v", deleted)
	}
	left := []string{
		"backups/bookshelf-20250103T000000Z.json",
		"backups/bookshelf-20250104T000000Z.json",
		"backups/notes.txt",
		"other/bookshelf-20240101T000000Z.json",
	}
	if got := b.keys(); !reflect.DeepEqual(got, left) {
		t.Fatalf("left = %v", got)
	}

	if _, err := svc.Prune(t.Context(), 0); err == nil {
		t.Fatal("keep=0 must be rejected")
	}
}

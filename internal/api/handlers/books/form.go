package books

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/5w1tchy/bookshelf/internal/filter"
	"github.com/5w1tchy/bookshelf/internal/models"
	storebooks "github.com/5w1tchy/bookshelf/internal/store/books"
	"github.com/5w1tchy/bookshelf/internal/store/dbx"
	"github.com/5w1tchy/bookshelf/internal/validate"
)

// BookForm is a create/update submission after normalization. Every field
// is optional except IsWonder, which must be an explicit yes or no.
type BookForm struct {
	Title      string `form:"title" validate:"max=20"`
	Author     string `form:"author" validate:"max=20"`
	ReadStatus string `form:"read_status" validate:"omitempty,oneof=1 2 3"`
	ReadReason string `form:"read_reason" validate:"max=20"`
	IsWonder   *bool  `form:"is_wonder" validate:"required"`
	Category   string `form:"category" validate:"omitempty,number"`
	StartDate  string `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Review     string `form:"review"`
}

type formData struct {
	ID         int64
	Action     string
	Values     map[string]string
	Errors     validate.Errors
	Categories []models.Category
	Statuses   []models.ReadStatus
}

func readForm(pf url.Values) (BookForm, validate.Errors) {
	errs := validate.Errors{}
	f := BookForm{
		Title:      validate.CleanText(pf.Get("title")),
		Author:     validate.CleanText(pf.Get("author")),
		ReadStatus: strings.TrimSpace(pf.Get("read_status")),
		ReadReason: validate.CleanText(pf.Get("read_reason")),
		Category:   strings.TrimSpace(pf.Get("category")),
		StartDate:  strings.TrimSpace(pf.Get("start_date")),
		EndDate:    strings.TrimSpace(pf.Get("end_date")),
		Review:     validate.CleanText(pf.Get("review")),
	}
	if raw := strings.TrimSpace(pf.Get("is_wonder")); raw != "" {
		if b, ok := filter.ParseBool(raw); ok {
			f.IsWonder = &b
		} else {
			errs.Add("is_wonder", "Select a valid choice.")
		}
	}
	return f, errs
}

// bind validates a submission and converts it into store input. A non-nil
// validate.Errors means the form must be shown again; any other error is a
// server failure.
func (h *Handler) bind(ctx context.Context, pf url.Values) (storebooks.Input, map[string]string, error) {
	f, errs := readForm(pf)
	shown := f.values()

	if err := h.v.Struct(f); err != nil {
		var verrs validate.Errors
		if !errors.As(err, &verrs) {
			return storebooks.Input{}, shown, err
		}
		for k, msg := range verrs {
			errs.Add(k, msg)
		}
	}

	in := storebooks.Input{
		Title:      f.Title,
		Author:     f.Author,
		ReadReason: f.ReadReason,
		Review:     f.Review,
	}
	if f.IsWonder != nil {
		in.IsWonder = *f.IsWonder
	}
	if n, err := strconv.Atoi(f.ReadStatus); err == nil {
		in.ReadStatus = models.ReadStatus(n)
	}
	in.StartDate = parseDate(f.StartDate)
	in.EndDate = parseDate(f.EndDate)

	if _, bad := errs["category"]; !bad && f.Category != "" {
		id, err := strconv.ParseInt(f.Category, 10, 64)
		if err == nil {
			_, err = h.cats.Get(ctx, id)
		}
		switch {
		case err == nil:
			in.CategoryID = &id
		case errors.Is(err, dbx.ErrNotFound), errors.Is(err, strconv.ErrRange):
			errs.Add("category", "Select a valid choice. That choice is not one of the available choices.")
		default:
			return storebooks.Input{}, shown, err
		}
	}

	if err := errs.Err(); err != nil {
		return storebooks.Input{}, shown, err
	}
	return in, shown, nil
}

func (f BookForm) values() map[string]string {
	v := map[string]string{
		"title":       f.Title,
		"author":      f.Author,
		"read_status": f.ReadStatus,
		"read_reason": f.ReadReason,
		"category":    f.Category,
		"start_date":  f.StartDate,
		"end_date":    f.EndDate,
		"review":      f.Review,
	}
	if f.IsWonder != nil {
		v["is_wonder"] = strconv.FormatBool(*f.IsWonder)
	}
	return v
}

// valuesOf fills the update form from a stored book.
func valuesOf(b models.Book) map[string]string {
	v := map[string]string{
		"title":       b.Title,
		"author":      b.Author,
		"read_reason": b.ReadReason,
		"is_wonder":   strconv.FormatBool(b.IsWonder),
		"review":      b.Review,
	}
	if b.ReadStatus.Valid() {
		v["read_status"] = strconv.Itoa(int(b.ReadStatus))
	}
	if b.CategoryID != nil {
		v["category"] = strconv.FormatInt(*b.CategoryID, 10)
	}
	if b.StartDate != nil {
		v["start_date"] = b.StartDate.Format(filter.DateLayout)
	}
	if b.EndDate != nil {
		v["end_date"] = b.EndDate.Format(filter.DateLayout)
	}
	return v
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.Parse(filter.DateLayout, s)
	if err != nil {
		return nil
	}
	return &d
}

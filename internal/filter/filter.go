// Package filter turns list-view query parameters into a predicate over books.
//
// Parse reads the recognized keys out of a url.Values; Engine.Build renders the
// resulting Criteria as a SQL WHERE fragment plus an equivalent in-process
// predicate. Both share the same semantics, so a Query can be executed by the
// SQL store or checked against already-loaded rows. The web app always lists
// through the SQL fragment; Match and Sort serve in-memory stores.
package filter

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/5w1tchy/bookshelf/internal/models"
	"github.com/5w1tchy/bookshelf/internal/validate"
)

// Recognized query keys.
const (
	KeyTitle           = "title"
	KeyAuthor          = "author"
	KeyReadReason      = "read_reason"
	KeyReadStatus      = "read_status"
	KeyCategory        = "category"
	KeyIsWonder        = "is_wonder"
	KeyStartDateAfter  = "start_date_after"
	KeyStartDateBefore = "start_date_before"
	KeyEndDateAfter    = "end_date_after"
	KeyEndDateBefore   = "end_date_before"
)

// Keys lists every key Parse understands.
var Keys = []string{
	KeyTitle, KeyAuthor, KeyReadReason, KeyReadStatus, KeyCategory, KeyIsWonder,
	KeyStartDateAfter, KeyStartDateBefore, KeyEndDateAfter, KeyEndDateBefore,
}

const DateLayout = "2006-01-02"

// Criteria is the parsed, typed form of a filter submission.
// Zero values mean "no constraint".
type Criteria struct {
	Title      string
	Author     string
	ReadReason string
	ReadStatus models.ReadStatus
	CategoryID int64
	IsWonder   *bool

	StartAfter  *time.Time
	StartBefore *time.Time
	EndAfter    *time.Time
	EndBefore   *time.Time
}

// Empty reports whether c constrains nothing.
func (c Criteria) Empty() bool {
	return c.Title == "" && c.Author == "" && c.ReadReason == "" &&
		c.ReadStatus == 0 && c.CategoryID == 0 && c.IsWonder == nil &&
		c.StartAfter == nil && c.StartBefore == nil &&
		c.EndAfter == nil && c.EndBefore == nil
}

// Parse extracts Criteria from v. Unknown keys are ignored and blank values
// impose no constraint. Malformed values are dropped too, and reported in the
// returned Errors so the search form can show them.
func Parse(v url.Values) (Criteria, validate.Errors) {
	var c Criteria
	errs := validate.Errors{}

	c.Title = validate.Clean(v.Get(KeyTitle))
	c.Author = validate.Clean(v.Get(KeyAuthor))
	c.ReadReason = validate.Clean(v.Get(KeyReadReason))

	if s := strings.TrimSpace(v.Get(KeyReadStatus)); s != "" {
		n, err := strconv.Atoi(s)
		if st := models.ReadStatus(n); err == nil && st.Valid() {
			c.ReadStatus = st
		} else {
			errs.Add(KeyReadStatus, "Select a valid choice.")
		}
	}

	if s := strings.TrimSpace(v.Get(KeyCategory)); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			c.CategoryID = n
		} else {
			errs.Add(KeyCategory, "Select a valid choice.")
		}
	}

	if s := strings.TrimSpace(v.Get(KeyIsWonder)); s != "" {
		if b, ok := ParseBool(s); ok {
			c.IsWonder = &b
		} else {
			errs.Add(KeyIsWonder, "Select a valid choice.")
		}
	}

	c.StartAfter = parseDate(v, KeyStartDateAfter, errs)
	c.StartBefore = parseDate(v, KeyStartDateBefore, errs)
	c.EndAfter = parseDate(v, KeyEndDateAfter, errs)
	c.EndBefore = parseDate(v, KeyEndDateBefore, errs)

	return c, errs
}

// ParseBool accepts the spellings HTML forms and people tend to send.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true, true
	case "0", "false", "off", "no":
		return false, true
	}
	return false, false
}

func parseDate(v url.Values, key string, errs validate.Errors) *time.Time {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		errs.Add(key, "Enter a valid date.")
		return nil
	}
	return &d
}

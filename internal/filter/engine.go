package filter

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/5w1tchy/bookshelf/internal/models"
)

// OrderBy is the fixed list ordering: newest first, id breaks ties.
const OrderBy = "b.created_at DESC, b.id DESC"

// Engine builds queries from Criteria.
//
// EmptyMatchesAll decides what a submission with no usable constraint
// selects: every book when true, nothing when false.
type Engine struct {
	EmptyMatchesAll bool
}

// Query is a built predicate. Where is a SQL boolean expression over the
// books table aliased as b, with $1.. placeholders bound to Args; it is empty
// when nothing is constrained. None means the query selects no rows at all.
type Query struct {
	Where string
	Args  []any
	None  bool

	crit Criteria
}

// Criteria returns the criteria q was built from.
func (q Query) Criteria() Criteria { return q.crit }

// All returns a query that selects every book.
func All() Query { return Query{} }

func (e Engine) Build(c Criteria) Query {
	if c.Empty() {
		return Query{None: !e.EmptyMatchesAll, crit: c}
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	contains := func(col, s string) {
		where = append(where, col+` ILIKE `+arg("%"+escapeLike(s)+"%")+` ESCAPE '\'`)
	}

	if c.Title != "" {
		contains("b.title", c.Title)
	}
	if c.Author != "" {
		contains("b.author", c.Author)
	}
	if c.ReadReason != "" {
		contains("b.read_reason", c.ReadReason)
	}
	if c.ReadStatus != 0 {
		where = append(where, "b.read_status = "+arg(int(c.ReadStatus)))
	}
	if c.CategoryID != 0 {
		where = append(where, "b.category_id = "+arg(c.CategoryID))
	}
	if c.IsWonder != nil {
		where = append(where, "b.is_wonder = "+arg(*c.IsWonder))
	}
	if c.StartAfter != nil {
		where = append(where, "b.start_date >= "+arg(*c.StartAfter))
	}
	if c.StartBefore != nil {
		where = append(where, "b.start_date <= "+arg(*c.StartBefore))
	}
	if c.EndAfter != nil {
		where = append(where, "b.end_date >= "+arg(*c.EndAfter))
	}
	if c.EndBefore != nil {
		where = append(where, "b.end_date <= "+arg(*c.EndBefore))
	}

	return Query{Where: strings.Join(where, " AND "), Args: args, crit: c}
}

// Match reports whether b satisfies q, mirroring the SQL predicate.
// NULL columns never satisfy a constraint on that column.
func (q Query) Match(b models.Book) bool {
	if q.None {
		return false
	}
	c := q.crit
	if c.Title != "" && !containsFold(b.Title, c.Title) {
		return false
	}
	if c.Author != "" && !containsFold(b.Author, c.Author) {
		return false
	}
	if c.ReadReason != "" && !containsFold(b.ReadReason, c.ReadReason) {
		return false
	}
	if c.ReadStatus != 0 && b.ReadStatus != c.ReadStatus {
		return false
	}
	if c.CategoryID != 0 && (b.CategoryID == nil || *b.CategoryID != c.CategoryID) {
		return false
	}
	if c.IsWonder != nil && b.IsWonder != *c.IsWonder {
		return false
	}
	if !inRange(b.StartDate, c.StartAfter, c.StartBefore) {
		return false
	}
	if !inRange(b.EndDate, c.EndAfter, c.EndBefore) {
		return false
	}
	return true
}

// Sort orders books the way OrderBy does.
func Sort(books []models.Book) {
	sort.SliceStable(books, func(i, j int) bool {
		a, b := books[i], books[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

func containsFold(s, sub string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func inRange(d, after, before *time.Time) bool {
	if after == nil && before == nil {
		return true
	}
	if d == nil {
		return false
	}
	if after != nil && d.Before(*after) {
		return false
	}
	if before != nil && d.After(*before) {
		return false
	}
	return true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

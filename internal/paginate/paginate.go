// Package paginate windows a counted result set into fixed-size pages.
package paginate

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidPage is returned for a page number that is not an integer or is
// out of range. Handlers answer it with 404.
var ErrInvalidPage = errors.New("invalid page")

// Page describes one window over Total rows. Number is 1-based. An empty
// result still has one (empty) page.
type Page struct {
	Number int
	Size   int
	Total  int
	Pages  int
}

// New resolves raw (the "page" query value) against total rows. Blank means
// the first page and "last" the final one.
func New(total, size int, raw string) (Page, error) {
	if size < 1 {
		size = 1
	}
	pages := 1
	if total > 0 {
		pages = (total + size - 1) / size
	}
	p := Page{Number: 1, Size: size, Total: total, Pages: pages}

	raw = strings.TrimSpace(raw)
	switch raw {
	case "":
		return p, nil
	case "last":
		p.Number = pages
		return p, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > pages {
		return p, ErrInvalidPage
	}
	p.Number = n
	return p, nil
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }
func (p Page) Limit() int  { return p.Size }

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.Pages }
func (p Page) Prev() int     { return p.Number - 1 }
func (p Page) Next() int     { return p.Number + 1 }

// StartIndex is the 1-based index of the first row on the page, 0 if empty.
func (p Page) StartIndex() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndIndex is the 1-based index of the last row on the page.
func (p Page) EndIndex() int {
	end := p.Offset() + p.Size
	if end > p.Total {
		end = p.Total
	}
	return end
}

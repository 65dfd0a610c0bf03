package models

import "time"

// ReadStatus is the reading state of a Book. Zero means unset.
type ReadStatus int

const (
	StatusReread   ReadStatus = 1 // finished, wants to read again
	StatusFinished ReadStatus = 2
	StatusUnread   ReadStatus = 3
)

// ReadStatuses lists the valid choices in display order.
var ReadStatuses = []ReadStatus{StatusReread, StatusFinished, StatusUnread}

func (s ReadStatus) Valid() bool {
	return s >= StatusReread && s <= StatusUnread
}

func (s ReadStatus) String() string {
	switch s {
	case StatusReread:
		return "Read it, want to reread"
	case StatusFinished:
		return "Finished"
	case StatusUnread:
		return "Unread"
	}
	return ""
}

// Book is one row of the reading list. Empty strings and nil pointers are
// stored as NULL.
type Book struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title,omitempty"`
	Author       string     `json:"author,omitempty"`
	ReadStatus   ReadStatus `json:"read_status,omitempty"`
	ReadReason   string     `json:"read_reason,omitempty"`
	IsWonder     bool       `json:"is_wonder"`
	CategoryID   *int64     `json:"category_id,omitempty"`
	CategoryName string     `json:"category_name,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Review       string     `json:"review,omitempty"`

	CreatedBy     *string   `json:"created_by,omitempty"`
	CreatedByName string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedBy     *string   `json:"updated_by,omitempty"`
	UpdatedByName string    `json:"-"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (b Book) String() string { return b.Title }

// Category is master data maintained outside the web app.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"category_name,omitempty"`
}

func (c Category) String() string { return c.Name }

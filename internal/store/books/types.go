package books

import (
	"time"

	"github.com/5w1tchy/bookshelf/internal/models"
)

// Input is the user-editable field set of a Book. Audit fields are never
// part of it; the store stamps them.
type Input struct {
	Title      string
	Author     string
	ReadStatus models.ReadStatus
	ReadReason string
	IsWonder   bool
	CategoryID *int64
	StartDate  *time.Time
	EndDate    *time.Time
	Review     string
}

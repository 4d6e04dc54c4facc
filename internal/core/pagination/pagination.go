package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Page holds the offset window for list endpoints.
type Page struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// New builds a page, falling back to defaults for out-of-range values.
func New(page, limit int) Page {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Page{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Parse reads the page and limit query parameters.
func Parse(c *fiber.Ctx) Page {
	return New(parseInt(c.Query("page"), 1), parseInt(c.Query("limit"), defaultLimit))
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}

// Result is a page of items with the total count across all pages.
type Result[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

package helper

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Pagination is the "pagination" block of list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
	Count      int   `json:"count"`
}

// Paging is the resolved window passed down to services. Offset and Limit
// go straight into the query; Page and PerPage are echoed back in Pagination.
type Paging struct {
	Page    int
	PerPage int
	Offset  int
	Limit   int
}

// ResolvePaging reads ?page= and ?per_page= (?limit= is accepted as an alias).
// maxPerPage <= 0 means no cap.
func ResolvePaging(c *fiber.Ctx, defaultPerPage, maxPerPage int) Paging {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}

	perPage := queryInt(c, "per_page", 0)
	if perPage <= 0 {
		perPage = queryInt(c, "limit", defaultPerPage)
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	return Paging{Page: page, PerPage: perPage, Offset: (page - 1) * perPage, Limit: perPage}
}

// queryInt reads an integer query param, falling back to def when absent or malformed.
func queryInt(c *fiber.Ctx, key string, def int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// BuildPagination describes one page of total rows; count is len(rows) on this page.
func BuildPagination(total int64, p Paging, count int) Pagination {
	perPage := max(p.PerPage, 1)
	page := max(p.Page, 1)
	totalPages := max(int((total+int64(perPage)-1)/int64(perPage)), 1)
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
		Count:      count,
	}
}

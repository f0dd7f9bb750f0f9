// Package service contains the blog's business logic.
package service

import "inkpost/internal/models"

// PostsPerPage is the page size of every post listing.
const PostsPerPage = 5

// Page is one window over an ordered result set. Number is 1-based.
type Page struct {
	Number     int
	Size       int
	Total      int64
	TotalPages int
	Offset     int
}

// Paginate computes the window for page number. Out-of-range numbers are
// kept as requested and produce an empty page with a zero offset.
func Paginate(total int64, size, number int) Page {
	if size <= 0 {
		size = PostsPerPage
	}
	totalPages := int(total / int64(size))
	if total%int64(size) != 0 {
		totalPages++
	}
	p := Page{
		Number:     number,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
	}
	// Only in-range pages get an offset, so size*(number-1) cannot overflow.
	if !p.Empty() {
		p.Offset = size * (number - 1)
	}
	return p
}

func (p Page) Limit() int { return p.Size }

// Empty reports whether the window holds no rows, so the query can be skipped.
func (p Page) Empty() bool {
	return p.Number < 1 || p.Number > p.TotalPages
}

func (p Page) HasPrev() bool { return p.Number > 1 }

func (p Page) HasNext() bool { return p.Number < p.TotalPages }

func (p Page) Prev() int { return p.Number - 1 }

func (p Page) Next() int { return p.Number + 1 }

// Pages lists 1..TotalPages for page links.
func (p Page) Pages() []int {
	pages := make([]int, p.TotalPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// PostPage is a page of posts with its window.
type PostPage struct {
	Page
	Posts []*models.Post
}

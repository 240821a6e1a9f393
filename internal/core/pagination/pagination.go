// Package pagination keeps an incrementally growing visible window over a list.
package pagination

// DefaultPageSize is the initial window and the increment of LoadMore.
const DefaultPageSize = 50

// Controller tracks how many items are visible.
type Controller struct {
	pageSize int
	visible  int
}

// NewController creates a controller; a non-positive size uses DefaultPageSize.
func NewController(pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Controller{pageSize: pageSize, visible: pageSize}
}

// PageSize returns the configured page size.
func (c *Controller) PageSize() int {
	return c.pageSize
}

// Visible returns the current window size.
func (c *Controller) Visible() int {
	return c.visible
}

// HasMore reports whether total items exceed the window.
func (c *Controller) HasMore(total int) bool {
	return c.visible < total
}

// LoadMore grows the window by one page.
func (c *Controller) LoadMore() {
	c.visible += c.pageSize
}

// Reset shrinks the window back to one page.
func (c *Controller) Reset() {
	c.visible = c.pageSize
}

// Window returns the visible prefix of items.
func Window[T any](c *Controller, items []T) []T {
	return Take(items, c.visible)
}

// Take returns at most n leading items.
func Take[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if n >= len(items) {
		return items
	}
	return items[:n]
}

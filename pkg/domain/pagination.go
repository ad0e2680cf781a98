package domain

import "fmt"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageOptions defines page-number pagination parameters
type PageOptions struct {
	Page     int `json:"page"`      // 1-indexed
	PageSize int `json:"page_size"` // records per page
}

// DefaultPageOptions returns default pagination settings
func DefaultPageOptions() PageOptions {
	return PageOptions{
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// Normalize clamps the options into the supported range
func (po PageOptions) Normalize() PageOptions {
	if po.Page < 1 {
		po.Page = 1
	}
	if po.PageSize <= 0 {
		po.PageSize = DefaultPageSize
	}
	if po.PageSize > MaxPageSize {
		po.PageSize = MaxPageSize
	}
	return po
}

// Bounds returns the half-open slice range [start, end) of the page within n records
func (po PageOptions) Bounds(n int) (int, int) {
	po = po.Normalize()
	// Compare page counts first so (Page-1)*PageSize cannot overflow
	if po.Page-1 >= (n+po.PageSize-1)/po.PageSize {
		return n, n
	}
	start := (po.Page - 1) * po.PageSize
	end := start + po.PageSize
	if end > n {
		end = n
	}
	return start, end
}

// Validate rejects options a caller cannot mean
func (po PageOptions) Validate() error {
	if po.Page < 0 {
		return fmt.Errorf("%w: page cannot be negative", ErrValidation)
	}
	if po.PageSize < 0 {
		return fmt.Errorf("%w: page size cannot be negative", ErrValidation)
	}
	if po.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page size %d exceeds maximum %d", ErrValidation, po.PageSize, MaxPageSize)
	}
	return nil
}

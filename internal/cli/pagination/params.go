package pagination

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Sort orders.
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

const sortPartsMax = 2

// Validation errors.
var (
	ErrInvalidSortFormat    = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'emissions:desc')")
	ErrInvalidSortOrder     = errors.New("sort order must be 'asc' or 'desc'")
	ErrInvalidSortField     = errors.New("invalid sort field")
	ErrMixedPaginationModes = errors.New("page and offset parameters are mutually exclusive")
	ErrPageSizeWithoutPage  = errors.New("page-size requires page to be set")
)

// Params holds the paging and sorting flags of one command.
type Params struct {
	Limit    int
	Offset   int
	Page     int
	PageSize int
	Sort     string
}

// AddFlags registers the paging and sorting flags on cmd, bound to p.
func AddFlags(cmd *cobra.Command, p *Params, sortHelp string) {
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "maximum number of rows (0 for all)")
	cmd.Flags().IntVar(&p.Offset, "offset", 0, "rows to skip")
	cmd.Flags().IntVar(&p.Page, "page", 0, "1-based page number")
	cmd.Flags().IntVar(&p.PageSize, "page-size", 0, "rows per page (requires --page)")
	cmd.Flags().StringVar(&p.Sort, "sort", "", sortHelp)
}

// Validate checks bounds and that offset and page modes are not mixed.
func (p Params) Validate() error {
	switch {
	case p.Limit < 0:
		return errors.New("limit cannot be negative")
	case p.Offset < 0:
		return errors.New("offset cannot be negative")
	case p.Page < 0:
		return errors.New("page cannot be negative")
	case p.PageSize < 0:
		return errors.New("page-size cannot be negative")
	case p.Page > 0 && p.Offset > 0:
		return ErrMixedPaginationModes
	case p.Page == 0 && p.PageSize > 0:
		return ErrPageSizeWithoutPage
	case p.Page > 0 && p.PageSize == 0:
		return errors.New("page-size must be specified when using page")
	}
	return nil
}

// IsPageBased reports whether --page is active.
func (p Params) IsPageBased() bool {
	return p.Page > 0
}

// IsEnabled reports whether any paging flag is set.
func (p Params) IsEnabled() bool {
	return p.Limit > 0 || p.Offset > 0 || p.Page > 0
}

// Window returns the start and end indexes of the page within total items.
// A page past the end is capped to the last page; an offset past the end is
// empty.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func (p Params) Window(total int) (start, end int) {
	if total == 0 {
		return 0, 0
	}
	limit := p.Limit
	if p.IsPageBased() {
		start = (p.Page - 1) * p.PageSize
		limit = p.PageSize
		if start >= total {
			start = ((total - 1) / p.PageSize) * p.PageSize
		}
	} else {
		start = p.Offset
	}
	if start >= total {
		return total, total
	}
	end = total
	if limit > 0 && start+limit < total {
		end = start + limit
	}
	return start, end
}

// Apply returns the page of items selected by p. The input is not copied.
func Apply[T any](p Params, items []T) []T {
	start, end := p.Window(len(items))
	return items[start:end]
}

// ParseSort parses "field" or "field:order". An empty expression returns an
// empty field. The order defaults to desc.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(expr string) (field, order string, err error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", "", nil
	}
	parts := strings.Split(expr, ":")
	if len(parts) > sortPartsMax {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, expr)
	}
	field = strings.TrimSpace(parts[0])
	if field == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, expr)
	}
	order = SortOrderDesc
	if len(parts) == sortPartsMax {
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}
	return field, order, nil
}

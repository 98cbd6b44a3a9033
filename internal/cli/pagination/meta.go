package pagination

// Meta describes one page of a paginated result.
type Meta struct {
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// NewMeta builds page metadata for p over total items.
func NewMeta(p Params, total int) Meta {
	pageSize := p.PageSize
	if pageSize == 0 {
		pageSize = p.Limit
	}
	if pageSize == 0 {
		pageSize = total
	}

	current := p.Page
	if current == 0 && pageSize > 0 {
		current = p.Offset/pageSize + 1
	}
	if current == 0 {
		current = 1
	}

	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	if current > pages && pages > 0 && p.IsPageBased() {
		current = pages
	}

	return Meta{
		CurrentPage: current,
		PageSize:    pageSize,
		TotalPages:  pages,
		TotalItems:  total,
		HasPrevious: current > 1,
		HasNext:     current < pages,
	}
}

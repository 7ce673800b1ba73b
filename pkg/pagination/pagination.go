package pagination

// DefaultPageSize is the standard page size when one is not provided.
const DefaultPageSize = 10

// MaxPageSize caps how many rows any page query can request.
const MaxPageSize = 100

// Params holds page-number pagination inputs from controllers.
type Params struct {
	Page     int
	PageSize int
}

// Normalize clamps the parameters to sane bounds.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return p.Normalize().PageSize
}

// Meta describes a page of results for response envelopes.
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta computes result metadata for the given total row count.
func NewMeta(params Params, total int64) Meta {
	n := params.Normalize()
	totalPages := int((total + int64(n.PageSize) - 1) / int64(n.PageSize))
	return Meta{
		Page:       n.Page,
		PageSize:   n.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

package pagination

// Offset/limit pagination for the public listing endpoints. Total counts are
// taken at call time; concurrent writes can shift page boundaries between
// calls, which is accepted (no snapshot isolation is promised).

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 20
	// MaxPageSize caps how many rows any page query can request.
	MaxPageSize = 100
)

// Params holds pagination inputs from controllers.
type Params struct {
	Page     int
	PageSize int
}

// Normalize clamps the inputs to sane bounds. Pages are 1-based.
func (p Params) Normalize() Params {
	if p.Page < 1 {
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

// Offset converts the 1-based page to a row offset.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Pages returns the number of pages a total row count spans.
func Pages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}

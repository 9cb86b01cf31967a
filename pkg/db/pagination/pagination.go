package pagination

// Pagination carries offset paging parameters bound from query strings.
type Pagination struct {
	Offset int `form:"offset,default=0" validate:"gte=0"`
	Limit  int `form:"limit,default=100" validate:"gte=1,lte=2000"`
}

func (p Pagination) Normalize() Pagination {
	out := p
	if out.Offset < 0 {
		out.Offset = 0
	}
	if out.Limit <= 0 {
		out.Limit = 100
	}
	if out.Limit > 2000 {
		out.Limit = 2000
	}
	return out
}

package query

// OffsetPagination para paginación clásica
type OffsetPagination struct {
	Limit  int
	Offset int
}

// Sort indica campo y dirección.
type Sort struct {
	Field string // ej. "created_at", "id"
	Desc  bool
}

// DefaultPage limita los listados sin paginación explícita.
var DefaultPage = OffsetPagination{Limit: 100}

// Normalize acota el límite a (0, max].
func (p OffsetPagination) Normalize(max int) OffsetPagination {
	if p.Limit <= 0 || p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

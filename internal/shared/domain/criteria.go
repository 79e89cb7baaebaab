package domain

import (
	"fmt"
	"strings"
)

// ---------------- Operadores ----------------

type Operator string

const (
	OpEq  Operator = "="
	OpGt  Operator = ">"
	OpGte Operator = ">="
	OpLt  Operator = "<"
	OpLte Operator = "<="
)

// ---------------- Criterion ----------------

// Criterion describe una condición neutral de filtrado
type Criterion struct {
	Field string
	Op    Operator
	Value interface{}
}

// Criteria permite transformar filtros a condiciones neutrales
type Criteria interface {
	ToConditions() []Criterion
}

// AllOf combina criterios que deben cumplirse a la vez.
type AllOf []Criteria

func (c AllOf) ToConditions() []Criterion {
	var all []Criterion
	for _, crit := range c {
		all = append(all, crit.ToConditions()...)
	}
	return all
}

// And crea un AllOf con los criterios dados.
func And(criterias ...Criteria) AllOf {
	return AllOf(criterias)
}

// WhereClause traduce criterios a SQL con placeholders '?'.
// Solo acepta columnas de allowed; cualquier otra devuelve error.
func WhereClause(criteria Criteria, allowed map[string]bool) (string, []interface{}, error) {
	if criteria == nil {
		return "", nil, nil
	}
	conds := criteria.ToConditions()
	if len(conds) == 0 {
		return "", nil, nil
	}
	clauses := make([]string, 0, len(conds))
	args := make([]interface{}, 0, len(conds))
	for _, c := range conds {
		if !allowed[c.Field] {
			return "", nil, fmt.Errorf("unsupported filter field %q", c.Field)
		}
		clauses = append(clauses, fmt.Sprintf("%s %s ?", c.Field, c.Op))
		args = append(args, c.Value)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fieldEq struct {
	field string
	value interface{}
}

func (f fieldEq) ToConditions() []Criterion {
	return []Criterion{{Field: f.field, Op: OpEq, Value: f.value}}
}

func TestWhereClause_AndJoinsConditions(t *testing.T) {
	allowed := map[string]bool{"user_id": true, "completed": true}

	where, args, err := WhereClause(And(fieldEq{"user_id", int64(4)}, fieldEq{"completed", false}), allowed)

	require.NoError(t, err)
	assert.Equal(t, " WHERE user_id = ? AND completed = ?", where)
	assert.Equal(t, []interface{}{int64(4), false}, args)
}

func TestWhereClause_Empty(t *testing.T) {
	where, args, err := WhereClause(And(), nil)

	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestWhereClause_RejectsUnknownField(t *testing.T) {
	_, _, err := WhereClause(fieldEq{"1=1; DROP TABLE tasks; --", 1}, map[string]bool{"id": true})
	assert.Error(t, err)
}

package httpapi

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdProwise/beawar-school-sub001/internal/common"
	"github.com/EdProwise/beawar-school-sub001/internal/server/repositories/documents"
)

func TestParseListParams(t *testing.T) {
	q, err := url.ParseQuery(`select=title,%20date&count=exact&sort=date&order=desc&limit=5` +
		`&is_published=true&views_gte=10&views_lte=99&category_neq=old&tag_in=%5B%22a%22%2C2%2Ctrue%5D`)
	require.NoError(t, err)

	req, err := parseListParams(q)
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "date"}, req.Select)
	assert.True(t, req.Count)
	assert.False(t, req.Head)
	assert.Equal(t, "date", req.Query.Sort)
	assert.True(t, req.Query.Descending)
	assert.Equal(t, 5, req.Query.Limit)
	assert.Equal(t, []documents.Filter{
		{Field: "category", Op: documents.OpNeq, Value: "old"},
		{Field: "is_published", Op: documents.OpEq, Value: "true"},
		{Field: "tag", Op: documents.OpIn, Values: []string{"a", "2", "true"}},
		{Field: "views", Op: documents.OpGte, Value: "10"},
		{Field: "views", Op: documents.OpLte, Value: "99"},
	}, req.Query.Filters)
}

func TestParseListParams_Defaults(t *testing.T) {
	req, err := parseListParams(url.Values{"select": {"*"}, "head": {"true"}})
	require.NoError(t, err)
	assert.Nil(t, req.Select)
	assert.True(t, req.Head)
	assert.False(t, req.Query.Descending)
	assert.Zero(t, req.Query.Limit)
	assert.Empty(t, req.Query.Filters)
}

func TestParseListParams_Errors(t *testing.T) {
	for _, raw := range []string{
		"order=sideways",
		"limit=abc",
		"limit=-2",
		"tag_in=a,b",
	} {
		t.Run(raw, func(t *testing.T) {
			q, err := url.ParseQuery(raw)
			require.NoError(t, err)
			_, err = parseListParams(q)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestSplitSuffix(t *testing.T) {
	tests := []struct {
		key   string
		field string
		op    documents.Op
	}{
		{"title", "title", documents.OpEq},
		{"_id", "_id", documents.OpEq},
		{"_id_in", "_id", documents.OpIn},
		{"_in", "_in", documents.OpEq},
		{"sort_order_gte", "sort_order", documents.OpGte},
	}
	for _, tt := range tests {
		field, op := splitSuffix(tt.key)
		assert.Equal(t, tt.field, field, tt.key)
		assert.Equal(t, tt.op, op, tt.key)
	}
}

package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoimpact/carbonsim/internal/engine"
	"github.com/ecoimpact/carbonsim/internal/policy"
	"github.com/ecoimpact/carbonsim/internal/projection"
)

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		errMsg string
	}{
		{name: "zero value", params: Params{}},
		{name: "offset mode", params: Params{Limit: 10, Offset: 20}},
		{name: "page mode", params: Params{Page: 2, PageSize: 10}},
		{name: "negative limit", params: Params{Limit: -1}, errMsg: "limit cannot be negative"},
		{name: "negative offset", params: Params{Offset: -1}, errMsg: "offset cannot be negative"},
		{name: "negative page", params: Params{Page: -1}, errMsg: "page cannot be negative"},
		{name: "page size too large", params: Params{Page: 1, PageSize: MaxPageSize + 1}, errMsg: "at most"},
		{name: "mixed modes", params: Params{Page: 1, PageSize: 5, Offset: 10}, errMsg: "mutually exclusive"},
		{name: "page size alone", params: Params{PageSize: 5}, errMsg: "page must be specified"},
		{name: "page alone", params: Params{Page: 2}, errMsg: "page-size must be specified"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in        string
		field     string
		order     string
		wantError error
	}{
		{in: "", field: "", order: SortOrderAsc},
		{in: "revenue", field: "revenue", order: SortOrderAsc},
		{in: "revenue:DESC", field: "revenue", order: SortOrderDesc},
		{in: " risk : asc ", field: "risk", order: SortOrderAsc},
		{in: "a:b:c", wantError: ErrInvalidSortFormat},
		{in: ":desc", wantError: ErrEmptySortField},
		{in: "risk:up", wantError: ErrInvalidSortOrder},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			field, order, err := ParseSort(tt.in)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.field, field)
			assert.Equal(t, tt.order, order)
		})
	}
}

func TestApply(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	tests := []struct {
		name   string
		params Params
		want   []int
	}{
		{name: "no paging", params: Params{}, want: items},
		{name: "limit", params: Params{Limit: 3}, want: []int{0, 1, 2}},
		{name: "offset and limit", params: Params{Offset: 8, Limit: 5}, want: []int{8, 9}},
		{name: "offset only", params: Params{Offset: 7}, want: []int{7, 8, 9}},
		{name: "offset past end", params: Params{Offset: 20}, want: []int{}},
		{name: "second page", params: Params{Page: 2, PageSize: 4}, want: []int{4, 5, 6, 7}},
		{name: "page past end pins to last", params: Params{Page: 9, PageSize: 4}, want: []int{8, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.params, items))
		})
	}

	assert.Empty(t, Apply(Params{Limit: 2}, []string{}))
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(Params{Page: 2, PageSize: 4}, 10)
	assert.Equal(t, Meta{CurrentPage: 2, PageSize: 4, TotalPages: 3, TotalItems: 10, HasPrevious: true, HasNext: true}, m)

	m = NewMeta(Params{Offset: 8, Limit: 4}, 10)
	assert.Equal(t, 3, m.CurrentPage)
	assert.False(t, m.HasNext)

	m = NewMeta(Params{}, 7)
	assert.Equal(t, 1, m.TotalPages)
	assert.False(t, m.HasPrevious)

	assert.Zero(t, NewMeta(Params{}, 0).TotalPages)
}

func sweepItem(idx int, country string, revenue, cumulative float64) engine.SweepItem {
	return engine.SweepItem{
		Index:   idx,
		Request: policy.Request{Country: country, CarbonPrice: float64(10 * (idx + 1))},
		Result: &engine.Result{
			Revenue:     revenue,
			Projections: []projection.Entry{{CumulativeRevenue: cumulative}},
		},
	}
}

func TestSortSweep(t *testing.T) {
	failed := engine.SweepItem{Index: 3, Request: policy.Request{Country: "Atlantis"}, Error: "unknown country"}
	items := []engine.SweepItem{
		sweepItem(0, "Sweden", 200, 900),
		sweepItem(1, "Canada", 500, 600),
		failed,
		sweepItem(2, "Chile", 50, 1200),
	}

	t.Run("no field keeps order", func(t *testing.T) {
		got, err := SortSweep(items, "", SortOrderAsc)
		require.NoError(t, err)
		assert.Equal(t, items, got)
	})

	t.Run("revenue desc puts failures last", func(t *testing.T) {
		got, err := SortSweep(items, "revenue", SortOrderDesc)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 0, 2, 3}, indexes(got))
	})

	t.Run("cumulative revenue asc", func(t *testing.T) {
		got, err := SortSweep(items, "cumulative_revenue", SortOrderAsc)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 0, 2, 3}, indexes(got))
	})

	t.Run("country includes failures", func(t *testing.T) {
		got, err := SortSweep(items, "country", SortOrderAsc)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 2, 0}, indexes(got))
	})

	t.Run("input untouched", func(t *testing.T) {
		_, err := SortSweep(items, "country", SortOrderDesc)
		require.NoError(t, err)
		assert.Equal(t, "Sweden", items[0].Request.Country)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := SortSweep(items, "savings", SortOrderAsc)
		require.ErrorIs(t, err, ErrInvalidSortField)
		assert.Contains(t, err.Error(), "cumulative_revenue")
	})
}

func indexes(items []engine.SweepItem) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Index
	}
	return out
}

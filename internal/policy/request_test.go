package policy

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() Request {
	return Request{
		Country:         "Canada",
		PolicyType:      CarbonTax,
		CarbonPrice:     60,
		CoveragePercent: 50,
		StartYear:       2025,
		ProjectionYears: 5,
	}
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{name: "valid", mutate: func(*Request) {}},
		{name: "empty country", mutate: func(r *Request) { r.Country = "  " }, field: "country"},
		{name: "unknown type", mutate: func(r *Request) { r.PolicyType = "Subsidy" }, field: "policy_type"},
		{name: "zero price", mutate: func(r *Request) { r.CarbonPrice = 0 }, field: "carbon_price"},
		{name: "price above max", mutate: func(r *Request) { r.CarbonPrice = 1000.01 }, field: "carbon_price"},
		{name: "price at max", mutate: func(r *Request) { r.CarbonPrice = 1000 }},
		{name: "NaN price", mutate: func(r *Request) { r.CarbonPrice = math.NaN() }, field: "carbon_price"},
		{name: "coverage below min", mutate: func(r *Request) { r.CoveragePercent = 9.9 }, field: "coverage_percent"},
		{name: "coverage bounds inclusive", mutate: func(r *Request) { r.CoveragePercent = 90 }},
		{name: "coverage above max", mutate: func(r *Request) { r.CoveragePercent = 91 }, field: "coverage_percent"},
		{name: "year too early", mutate: func(r *Request) { r.StartYear = 1999 }, field: "start_year"},
		{name: "year too late", mutate: func(r *Request) { r.StartYear = 2101 }, field: "start_year"},
		{name: "zero years", mutate: func(r *Request) { r.ProjectionYears = 0 }, field: "projection_years"},
		{name: "years at bound", mutate: func(r *Request) { r.ProjectionYears = MaxProjectionYears }},
		{name: "years above bound", mutate: func(r *Request) { r.ProjectionYears = 21 }, field: "projection_years"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			err := r.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRequest_ValidateWithMaxYears(t *testing.T) {
	r := validRequest()
	r.ProjectionYears = 30
	assert.Error(t, r.Validate())
	assert.NoError(t, r.ValidateWithMaxYears(HardMaxProjectionYears))
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{in: "Carbon tax", want: CarbonTax},
		{in: "tax", want: CarbonTax},
		{in: "carbon_tax", want: CarbonTax},
		{in: "ETS", want: ETS},
		{in: " ets ", want: ETS},
		{in: "subsidy", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPolicyType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequest_NameAndDefaults(t *testing.T) {
	r := Request{Country: "Canada", PolicyType: ETS}.WithDefaults()
	assert.Equal(t, DefaultStartYear, r.StartYear)
	assert.Equal(t, DefaultProjectionYears, r.ProjectionYears)
	assert.Equal(t, "ETS - Canada 2025", r.Name())
}

func TestClampYears(t *testing.T) {
	assert.Equal(t, 1, ClampYears(0, 20))
	assert.Equal(t, 1, ClampYears(-4, 20))
	assert.Equal(t, 7, ClampYears(7, 20))
	assert.Equal(t, 20, ClampYears(25, 20))
	assert.Equal(t, MaxProjectionYears, ClampYears(99, 0))
}

func TestParseSpec(t *testing.T) {
	base := validRequest()

	got, err := ParseSpec("country=Germany, type=ets, price=85.5, coverage=40, years=10", base)
	require.NoError(t, err)
	assert.Equal(t, "Germany", got.Country)
	assert.Equal(t, ETS, got.PolicyType)
	assert.InDelta(t, 85.5, got.CarbonPrice, 1e-9)
	assert.InDelta(t, 40.0, got.CoveragePercent, 1e-9)
	assert.Equal(t, 2025, got.StartYear)
	assert.Equal(t, 10, got.ProjectionYears)

	_, err = ParseSpec("price=abc", base)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = ParseSpec("colour=blue", base)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = ParseSpec("country", base)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

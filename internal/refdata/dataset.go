// Package refdata loads the immutable reference dataset: per-country yearly
// indicators, historical carbon-pricing policies and estimator coefficients.
//
// A default dataset is embedded in the binary. A Dataset never changes after
// construction and may be shared freely between goroutines.
package refdata

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/ecoimpact/carbonsim/internal/estimator"
	"github.com/ecoimpact/carbonsim/internal/features"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrUnsupportedSchema is returned for datasets outside the supported schema range.
	ErrUnsupportedSchema = constError("unsupported dataset schema version")

	// ErrDataNotFound aliases features.ErrDataNotFound so callers can match either.
	ErrDataNotFound = features.ErrDataNotFound

	// SupportedSchema is the semver constraint a dataset's schema_version must satisfy.
	SupportedSchema = ">= 1.0.0, < 2.0.0"

	// DefaultFossilFuelPct is used when a country has no fossil-share data at all.
	DefaultFossilFuelPct = 70.0
)

// Policy statuses.
const (
	StatusImplemented = "Implemented"
	StatusAbolished   = "Abolished"
)

//go:embed data/dataset.yaml
var embeddedDataset []byte

//nolint:gochecknoglobals // One-time guarded initialization of the embedded dataset.
var loadDefault = sync.OnceValues(func() (*Dataset, error) {
	return Parse(embeddedDataset)
})

// Default returns the embedded dataset, parsing it on first use.
func Default() (*Dataset, error) {
	return loadDefault()
}

// Policy is one historical carbon-pricing instrument.
type Policy struct {
	Jurisdiction   string  `yaml:"jurisdiction" json:"jurisdiction"`
	Name           string  `yaml:"name" json:"name"`
	Type           string  `yaml:"type" json:"type"`
	Status         string  `yaml:"status" json:"status"`
	Year           int     `yaml:"year" json:"year"`
	Region         string  `yaml:"region" json:"region"`
	CarbonPrice    float64 `yaml:"carbon_price" json:"carbon_price"`
	CoveragePct    float64 `yaml:"coverage_pct" json:"coverage_pct"`
	RevenueMillion float64 `yaml:"revenue_million" json:"revenue_million"`
}

// Observation is one year of indicators. Nil fields are unknown.
type Observation struct {
	Year          int      `yaml:"year"`
	FossilFuelPct *float64 `yaml:"fossil_fuel_pct"`
	Population    *float64 `yaml:"population"`
	GDPMillion    *float64 `yaml:"gdp_million"`
	CO2Mt         *float64 `yaml:"co2_mt"`
}

type countryFile struct {
	Name        string        `yaml:"name"`
	Region      string        `yaml:"region"`
	IncomeGroup string        `yaml:"income_group"`
	Series      []Observation `yaml:"series"`
}

type datasetFile struct {
	SchemaVersion string                 `yaml:"schema_version"`
	Name          string                 `yaml:"name"`
	Countries     []countryFile          `yaml:"countries"`
	Policies      []Policy               `yaml:"policies"`
	Models        estimator.Coefficients `yaml:"models"`
}

type country struct {
	name        string
	region      string
	incomeGroup string
	// series is sorted by year ascending.
	series []Observation
}

// Dataset is the immutable reference data.
type Dataset struct {
	name      string
	version   *semver.Version
	countries map[string]*country
	// lower maps lower-cased names to canonical names.
	lower    map[string]string
	policies []Policy
	history  map[string]int
	models   estimator.Coefficients
}

var _ features.Provider = (*Dataset)(nil)

// Load reads and parses a dataset file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	return ds, nil
}

// Parse builds a Dataset from YAML.
func Parse(data []byte) (*Dataset, error) {
	var raw datasetFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}

	version, err := checkSchema(raw.SchemaVersion)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		name:      raw.Name,
		version:   version,
		countries: make(map[string]*country, len(raw.Countries)),
		lower:     make(map[string]string, len(raw.Countries)),
		policies:  slices.Clone(raw.Policies),
		history:   make(map[string]int),
		models:    raw.Models,
	}

	for _, cf := range raw.Countries {
		name := strings.TrimSpace(cf.Name)
		if name == "" {
			return nil, fmt.Errorf("dataset country with empty name")
		}
		if _, dup := ds.countries[name]; dup {
			return nil, fmt.Errorf("dataset country %q listed twice", name)
		}
		series := slices.Clone(cf.Series)
		sort.SliceStable(series, func(i, j int) bool { return series[i].Year < series[j].Year })

		c := &country{
			name:        name,
			region:      cf.Region,
			incomeGroup: cf.IncomeGroup,
			series:      series,
		}
		if c.region == "" {
			c.region = RegionOf(name)
		}
		if c.incomeGroup == "" {
			c.incomeGroup = IncomeGroupOf(name)
		}
		ds.countries[name] = c
		ds.lower[strings.ToLower(name)] = name
	}

	for _, p := range ds.policies {
		ds.history[p.Jurisdiction]++
	}

	return ds, nil
}

func checkSchema(raw string) (*semver.Version, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: schema_version is missing", ErrUnsupportedSchema)
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnsupportedSchema, raw, err)
	}
	c, err := semver.NewConstraint(SupportedSchema)
	if err != nil {
		return nil, fmt.Errorf("parsing schema constraint: %w", err)
	}
	if !c.Check(v) {
		return nil, fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedSchema, v, SupportedSchema)
	}
	return v, nil
}

// Name returns the dataset name.
func (d *Dataset) Name() string { return d.name }

// SchemaVersion returns the parsed schema version.
func (d *Dataset) SchemaVersion() string { return d.version.String() }

// Models returns the estimator coefficients shipped with the dataset.
func (d *Dataset) Models() estimator.Coefficients { return d.models }

// resolve finds the canonical entry for a user-supplied name.
func (d *Dataset) resolve(name string) (*country, bool) {
	name = strings.TrimSpace(name)
	if c, ok := d.countries[name]; ok {
		return c, true
	}
	if canon, ok := d.lower[strings.ToLower(name)]; ok {
		return d.countries[canon], true
	}
	for common, alt := range alternateNames {
		if strings.EqualFold(name, common) {
			if c, ok := d.countries[alt]; ok {
				return c, true
			}
		}
		if strings.EqualFold(name, alt) {
			if c, ok := d.countries[common]; ok {
				return c, true
			}
		}
	}
	return nil, false
}

// CanonicalName returns the dataset spelling of country.
func (d *Dataset) CanonicalName(name string) (string, bool) {
	c, ok := d.resolve(name)
	if !ok {
		return "", false
	}
	return c.name, true
}

// lookup returns the field for year, falling back to the latest year that has it.
func (c *country) lookup(year int, field func(Observation) *float64) (float64, int, bool) {
	latest := -1
	for i, obs := range c.series {
		v := field(obs)
		if v == nil || math.IsNaN(*v) {
			continue
		}
		if obs.Year == year {
			return *v, obs.Year, true
		}
		latest = i
	}
	if latest < 0 {
		return 0, 0, false
	}
	return *field(c.series[latest]), c.series[latest].Year, true
}

func fossilField(o Observation) *float64     { return o.FossilFuelPct }
func populationField(o Observation) *float64 { return o.Population }
func gdpField(o Observation) *float64        { return o.GDPMillion }
func co2Field(o Observation) *float64        { return o.CO2Mt }

// Features implements features.Provider.
func (d *Dataset) Features(name string, year int) (features.CountryFeatures, error) {
	c, ok := d.resolve(name)
	if !ok {
		return features.CountryFeatures{}, fmt.Errorf("%w: %q", ErrDataNotFound, name)
	}

	pop, _, ok := c.lookup(year, populationField)
	if !ok {
		return features.CountryFeatures{}, fmt.Errorf("%w: population for %s in %d", ErrDataNotFound, c.name, year)
	}
	gdp, _, ok := c.lookup(year, gdpField)
	if !ok {
		return features.CountryFeatures{}, fmt.Errorf("%w: GDP for %s in %d", ErrDataNotFound, c.name, year)
	}
	fossil, _, ok := c.lookup(year, fossilField)
	if !ok {
		fossil = DefaultFossilFuelPct
	}

	return features.CountryFeatures{
		Region:        c.region,
		IncomeGroup:   c.incomeGroup,
		FossilFuelPct: fossil,
		Population:    pop,
		GDP:           gdp,
	}, nil
}

// TotalCO2 implements features.Provider.
func (d *Dataset) TotalCO2(name string, year int) (float64, error) {
	c, ok := d.resolve(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrDataNotFound, name)
	}
	v, _, ok := c.lookup(year, co2Field)
	if !ok {
		return 0, fmt.Errorf("%w: CO2 for %s in %d", ErrDataNotFound, c.name, year)
	}
	return v, nil
}

// CountryInfo is a snapshot of a country's indicators for display.
type CountryInfo struct {
	Name             string   `json:"name"`
	Region           string   `json:"region"`
	IncomeGroup      string   `json:"income_group"`
	Year             int      `json:"year"`
	DataYear         int      `json:"data_year"`
	Population       float64  `json:"population"`
	GDPMillion       float64  `json:"gdp_million"`
	FossilFuelPct    float64  `json:"fossil_fuel_pct"`
	CO2Mt            *float64 `json:"co2_mt,omitempty"`
	CO2PerCapitaT    *float64 `json:"co2_per_capita_t,omitempty"`
	HasPolicyHistory bool     `json:"has_policy_history"`
}

// Info returns indicators for country in year with the same fallbacks as Features.
func (d *Dataset) Info(name string, year int) (CountryInfo, error) {
	f, err := d.Features(name, year)
	if err != nil {
		return CountryInfo{}, err
	}
	c, _ := d.resolve(name)
	_, dataYear, _ := c.lookup(year, populationField)

	info := CountryInfo{
		Name:             c.name,
		Region:           f.Region,
		IncomeGroup:      f.IncomeGroup,
		Year:             year,
		DataYear:         dataYear,
		Population:       f.Population,
		GDPMillion:       f.GDP,
		FossilFuelPct:    f.FossilFuelPct,
		HasPolicyHistory: d.HasHistory(c.name),
	}
	if co2, _, ok := c.lookup(year, co2Field); ok {
		info.CO2Mt = &co2
		if f.Population > 0 {
			perCapita := co2 * 1e6 / f.Population
			info.CO2PerCapitaT = &perCapita
		}
	}
	return info, nil
}

// Countries lists, alphabetically, the countries that can be simulated
// (those with population and GDP data).
func (d *Dataset) Countries() []string {
	names := make([]string, 0, len(d.countries))
	for name, c := range d.countries {
		if _, _, ok := c.lookup(0, populationField); !ok {
			continue
		}
		if _, _, ok := c.lookup(0, gdpField); !ok {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasHistory reports whether country has any historical policy record.
func (d *Dataset) HasHistory(name string) bool {
	if d.history[name] > 0 {
		return true
	}
	if c, ok := d.resolve(name); ok {
		return d.history[c.name] > 0
	}
	return false
}

// HistoricalPolicies returns a copy of all policy records.
func (d *Dataset) HistoricalPolicies() []Policy {
	return slices.Clone(d.policies)
}

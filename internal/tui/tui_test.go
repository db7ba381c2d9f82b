package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoimpact/carbonsim/internal/engine"
	"github.com/ecoimpact/carbonsim/internal/greenops"
	"github.com/ecoimpact/carbonsim/internal/narrative"
	"github.com/ecoimpact/carbonsim/internal/policy"
	"github.com/ecoimpact/carbonsim/internal/projection"
	"github.com/ecoimpact/carbonsim/internal/risk"
)

func sampleResult(country string) *engine.Result {
	req := policy.Request{
		Country:         country,
		PolicyType:      policy.CarbonTax,
		CarbonPrice:     60,
		CoveragePercent: 50,
		StartYear:       2025,
		ProjectionYears: 2,
	}
	return &engine.Result{
		ID:                 "01HZX",
		PolicyName:         req.Name(),
		Dataset:            "fixture@1.0.0",
		Request:            req,
		Revenue:            1500,
		Risk:               risk.FromProbability(0.2),
		RiskAdjustedValue:  1200,
		EmissionsAvailable: true,
		Equivalencies:      greenops.Translate(2.5),
		Narrative: narrative.Context{
			Recommendation:  "Favorable conditions for policy implementation.",
			SimilarPolicies: []string{"France Carbon tax (2014): $45/tonne, 35.0% coverage"},
			KeyRisks:        []string{"High carbon price may face political resistance"},
			Scenarios:       narrative.Scenarios(1500, 0.2),
		},
		Projections: []projection.Entry{
			{Year: 2025, Revenue: 1500, CumulativeRevenue: 1500, CO2Reduced: 2.5, CO2ReducedCumulative: 2.5,
				AbolishmentRisk: 20, RiskCategory: risk.LowRisk, RiskAdjustedValue: 1200},
			{Year: 2026, Revenue: 1522.5, CumulativeRevenue: 3022.5, CO2Reduced: 2.4, CO2ReducedCumulative: 4.9,
				AbolishmentRisk: 40, RiskCategory: risk.AtRisk, RiskAdjustedValue: 913.5, RevenueFallback: true},
		},
	}
}

func press(t *testing.T, m ProjectionModel, msg tea.Msg) (ProjectionModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(ProjectionModel)
	require.True(t, ok)
	return out, cmd
}

func TestProjectionModel_StateTransitions(t *testing.T) {
	m := NewProjectionModel(sampleResult("Testland"))
	assert.Equal(t, ViewStateList, m.State())
	assert.Nil(t, m.Init())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewStateDetail, m.State())
	view := m.View()
	assert.Contains(t, view, "YEAR 2026")
	assert.Contains(t, view, "(fallback)")
	assert.Contains(t, view, "KEY RISKS")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	assert.Equal(t, ViewStateList, m.State())

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Equal(t, ViewStateQuitting, m.State())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}

func TestProjectionModel_ListView(t *testing.T) {
	m := NewProjectionModel(sampleResult("Testland"))
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})

	view := m.View()
	assert.Contains(t, view, "CARBON TAX - TESTLAND 2025")
	assert.Contains(t, view, "$1,522.50M*")
	assert.Contains(t, view, "enter year detail")
	assert.NotContains(t, view, "tab next result")
}

func TestProjectionModel_TabCyclesResults(t *testing.T) {
	m := NewProjectionModel(sampleResult("Testland"), sampleResult("Newland"))
	assert.Contains(t, m.View(), "[1/2]")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "Newland", m.Current().Request.Country)
	assert.Contains(t, m.View(), "[2/2]")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "Testland", m.Current().Request.Country)
}

func TestNewProjectionModel_PanicsWithoutResults(t *testing.T) {
	assert.Panics(t, func() { NewProjectionModel() })
}

func TestRenderSummary(t *testing.T) {
	res := sampleResult("Testland")
	out := RenderSummary(res, 120)
	assert.Contains(t, out, "$1,500.00M")
	assert.Contains(t, out, "Low Risk")
	assert.Contains(t, out, "Cumulative to 2026")
	assert.Contains(t, out, "Favorable conditions")

	res.EmissionsAvailable = false
	res.Disclaimer = "Emissions data unavailable for Testland"
	assert.Contains(t, RenderSummary(res, 120), "Emissions data unavailable")

	assert.Contains(t, RenderSummary(nil, 80), "No results")
}

func TestDetectOutputModeIn(t *testing.T) {
	env := func(tty bool, vars map[string]string) Environment {
		return Environment{
			StdoutIsTTY: tty,
			StdinIsTTY:  tty,
			LookupEnv: func(k string) (string, bool) {
				v, ok := vars[k]
				return v, ok
			},
		}
	}

	tests := []struct {
		name        string
		env         Environment
		interactive bool
		noColor     bool
		plain       bool
		want        OutputMode
	}{
		{"pipe", env(false, nil), true, false, false, OutputModePlain},
		{"terminal", env(true, nil), false, false, false, OutputModeStyled},
		{"terminal interactive", env(true, nil), true, false, false, OutputModeInteractive},
		{"plain flag", env(true, nil), true, false, true, OutputModePlain},
		{"no-color flag", env(true, nil), false, true, false, OutputModePlain},
		{"NO_COLOR", env(true, map[string]string{"NO_COLOR": ""}), false, false, false, OutputModePlain},
		{"dumb terminal", env(true, map[string]string{"TERM": "dumb"}), false, false, false, OutputModePlain},
		{"CI", env(true, map[string]string{"CI": "true"}), true, false, false, OutputModePlain},
		{"nil lookup", Environment{StdoutIsTTY: true}, false, false, false, OutputModeStyled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectOutputModeIn(tt.env, tt.interactive, tt.noColor, tt.plain))
		})
	}
	assert.Equal(t, "interactive", OutputModeInteractive.String())
}

func TestRiskStyle(t *testing.T) {
	assert.Equal(t, OKStyle.Render("x"), RiskStyle(risk.LowRisk).Render("x"))
	assert.Equal(t, WarningStyle.Render("x"), RiskStyle(risk.AtRisk).Render("x"))
	assert.Equal(t, CriticalStyle.Render("x"), RiskStyle(risk.HighRisk).Render("x"))
}

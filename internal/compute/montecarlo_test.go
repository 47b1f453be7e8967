package compute

import (
	"encoding/json"
	"testing"

	"tengen/gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRiskDeterministicForSeed(t *testing.T) {
	input := RiskInput{
		NumSimulations: 1000,
		PortfolioValue: 100000,
		Volatility:     2000,
		TimeHorizon:    30,
		Seed:           42,
	}

	first := CalculateRisk(input)
	second := CalculateRisk(input)
	assert.Equal(t, first, second)
	assert.Equal(t, uint64(1000), first.SimulationsRun)
}

func TestCalculateRiskClampsSimulationCount(t *testing.T) {
	out := CalculateRisk(RiskInput{NumSimulations: 1, Seed: 1})
	assert.Equal(t, uint64(minSimulations), out.SimulationsRun)

	out = CalculateRisk(RiskInput{NumSimulations: 1 << 40, Seed: 1})
	assert.Equal(t, uint64(maxSimulations), out.SimulationsRun)
}

func TestCalculateRiskValueAtRiskNonNegative(t *testing.T) {
	// With zero drift the 5th-percentile return is a loss, so VaR, reported
	// as a positive loss, should not be negative
	out := CalculateRisk(RiskInput{NumSimulations: 5000, Seed: 7})
	assert.GreaterOrEqual(t, out.ValueAtRisk, int64(0))
}

func TestIntSqrt(t *testing.T) {
	assert.Equal(t, int64(0), intSqrt(0))
	assert.Equal(t, int64(10), intSqrt(100))
	assert.Equal(t, int64(100), intSqrt(10000))
}

func TestRunDispatchesPrimeFinder(t *testing.T) {
	input, err := json.Marshal(PrimeInput{StartNumber: 1000, Count: 1})
	require.NoError(t, err)

	result, err := Run(models.TaskTypePrimeFinder, input)
	require.NoError(t, err)

	var out PrimeOutput
	require.NoError(t, json.Unmarshal(result, &out))
	assert.Equal(t, uint64(1009), out.PrimeNumber)
}

func TestRunDispatchesMonteCarlo(t *testing.T) {
	input, err := json.Marshal(RiskInput{NumSimulations: 500, Seed: 3})
	require.NoError(t, err)

	result, err := Run(models.TaskTypeMonteCarlo, input)
	require.NoError(t, err)

	var out RiskOutput
	require.NoError(t, json.Unmarshal(result, &out))
	assert.Equal(t, uint64(500), out.SimulationsRun)
}

func TestRunRejectsUnknownTaskType(t *testing.T) {
	_, err := Run(99, []byte(`{}`))
	assert.Error(t, err)
}

func TestRunRejectsMalformedInput(t *testing.T) {
	_, err := Run(models.TaskTypePrimeFinder, []byte(`not json`))
	assert.Error(t, err)
}

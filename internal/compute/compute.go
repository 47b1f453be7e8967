// Package compute implements the task types bridge nodes can execute
// locally: the prime finder and the Monte Carlo portfolio risk simulation.
// Inputs and results are JSON payloads; the gateway ledger treats both as
// opaque bytes.
package compute

import (
	"encoding/json"
	"fmt"

	"tengen/gateway/internal/models"
)

// Run executes the task type against the JSON-encoded input and returns the
// JSON-encoded result.
func Run(taskType uint8, inputData []byte) ([]byte, error) {
	switch taskType {
	case models.TaskTypePrimeFinder:
		var input PrimeInput
		if err := json.Unmarshal(inputData, &input); err != nil {
			return nil, fmt.Errorf("invalid prime finder input: %w", err)
		}
		output, err := FindPrime(input)
		if err != nil {
			return nil, err
		}
		return json.Marshal(output)

	case models.TaskTypeMonteCarlo:
		var input RiskInput
		if err := json.Unmarshal(inputData, &input); err != nil {
			return nil, fmt.Errorf("invalid monte carlo input: %w", err)
		}
		output := CalculateRisk(input)
		return json.Marshal(output)

	default:
		return nil, fmt.Errorf("unsupported task type: %d", taskType)
	}
}

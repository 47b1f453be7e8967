package compute

import (
	"fmt"
)

// maxPrimeIterations bounds the search so a malformed request cannot pin a
// bridge node forever.
const maxPrimeIterations = 1000000

// PrimeInput asks for the Nth prime at or after a starting number.
type PrimeInput struct {
	StartNumber uint64 `json:"start_number"`
	Count       uint64 `json:"count"`
}

// PrimeOutput carries the prime found and how many candidates were examined.
type PrimeOutput struct {
	PrimeNumber uint64 `json:"prime_number"`
	Iterations  uint64 `json:"iterations"`
}

// FindPrime finds the Nth prime at or after input.StartNumber.
func FindPrime(input PrimeInput) (*PrimeOutput, error) {
	if input.StartNumber < 2 {
		input.StartNumber = 2 // Minimum valid starting point
	}
	if input.Count < 1 {
		input.Count = 1
	}

	current := input.StartNumber
	var primesFound, iterations uint64

	for primesFound < input.Count {
		iterations++
		if iterations > maxPrimeIterations {
			return nil, fmt.Errorf("iteration limit reached after %d candidates", maxPrimeIterations)
		}

		if isPrime(current) {
			primesFound++
			if primesFound == input.Count {
				return &PrimeOutput{
					PrimeNumber: current,
					Iterations:  iterations,
				}, nil
			}
		}
		current++
	}

	// Unreachable; the loop exits through the return or the limit above
	return nil, fmt.Errorf("prime search terminated unexpectedly")
}

func isPrime(n uint64) bool {
	if n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}

	// Check divisibility up to sqrt(n)
	for i := uint64(5); i*i <= n; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

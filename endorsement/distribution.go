// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package endorsement

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/bitmark-inc/fmsim/fault"
)

// Distribution - validated population and cumulative weights
type Distribution struct {
	population    []int
	probabilities []float64
	cumulative    []float64
}

// New - validate and create a distribution
func New(population []int, probabilities []float64) (*Distribution, error) {
	if len(population) == 0 {
		return nil, fault.ErrEmptyPopulation
	}
	if len(population) != len(probabilities) {
		return nil, fault.ErrPopulationLength
	}

	cumulative := make([]float64, len(probabilities))
	sum := 0.0
	for i, p := range probabilities {
		if p < 0 || math.IsNaN(p) {
			return nil, fault.ErrNegativeProbability
		}
		if population[i] < 0 {
			return nil, fault.ErrNegativeEndorsements
		}
		sum += p
		cumulative[i] = sum
	}
	// summed in order, the total must be exactly one
	if 1.0 != sum {
		return nil, fault.ErrProbabilitySum
	}

	d := &Distribution{
		population:    append([]int(nil), population...),
		probabilities: append([]float64(nil), probabilities...),
		cumulative:    cumulative,
	}
	return d, nil
}

// FromShape - expand a nominal endorsement count and two shape
// parameters into a four point distribution
func FromShape(endorsements int, alpha float64, beta float64) (*Distribution, error) {
	if endorsements < 0 {
		return nil, fault.ErrNegativeEndorsements
	}
	population := []int{
		endorsements / 2,
		endorsements,
		endorsements + 1,
		(endorsements + 1) * 2,
	}
	probabilities := []float64{
		beta / 2,
		alpha,
		1 - beta - alpha,
		beta / 2,
	}
	return New(population, probabilities)
}

// Population - copy of the possible endorsement counts
func (d *Distribution) Population() []int {
	return append([]int(nil), d.population...)
}

// Probabilities - copy of the probabilities
func (d *Distribution) Probabilities() []float64 {
	return append([]float64(nil), d.probabilities...)
}

// Mean - expected endorsements per transaction
func (d *Distribution) Mean() float64 {
	m := 0.0
	for i, e := range d.population {
		m += float64(e) * d.probabilities[i]
	}
	return m
}

// Draw - pick one endorsement count
//
// entries with zero probability are never picked
func (d *Distribution) Draw(rng *rand.Rand) int {
	total := d.cumulative[len(d.cumulative)-1]
	u := rng.Float64() * total
	i := sort.Search(len(d.cumulative), func(i int) bool {
		return d.cumulative[i] > u
	})
	if i >= len(d.population) {
		i = len(d.population) - 1
	}
	return d.population[i]
}

// DrawN - pick n independent endorsement counts
func (d *Distribution) DrawN(rng *rand.Rand, n int) []int {
	if n <= 0 {
		return nil
	}
	counts := make([]int, n)
	for i := range counts {
		counts[i] = d.Draw(rng)
	}
	return counts
}

// String - human readable form used in the configuration banner
func (d *Distribution) String() string {
	return fmt.Sprintf("pop=%v prob=%v", d.population, d.probabilities)
}

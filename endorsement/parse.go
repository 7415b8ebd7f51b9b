// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package endorsement

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/bitmark-inc/fmsim/fault"
)

// Parse - decode "e1,e2,e3:p1,p2,p3"
func Parse(s string) (*Distribution, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return nil, errors.Wrapf(fault.ErrPopulationLength, "endorsements: %q", s)
	}

	population, err := parseInts(parts[0])
	if err != nil {
		return nil, errors.Wrapf(err, "endorsement population: %q", parts[0])
	}
	probabilities, err := parseFloats(parts[1])
	if err != nil {
		return nil, errors.Wrapf(err, "endorsement probabilities: %q", parts[1])
	}
	return New(population, probabilities)
}

// ParseShape - decode a nominal count "e" and parameters "alpha,beta"
func ParseShape(endorsements string, parameters string) (*Distribution, error) {
	e, err := strconv.Atoi(strings.TrimSpace(endorsements))
	if err != nil {
		return nil, errors.Wrapf(err, "endorsements: %q", endorsements)
	}
	p, err := parseFloats(parameters)
	if err != nil {
		return nil, errors.Wrapf(err, "endorsement parameters: %q", parameters)
	}
	if len(p) != 2 {
		return nil, errors.Wrapf(fault.ErrInvalidShapeParameters, "endorsement parameters: %q", parameters)
	}
	return FromShape(e, p[0], p[1])
}

func parseInts(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	result := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, nil
}

func parseFloats(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	result := make([]float64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, nil
}

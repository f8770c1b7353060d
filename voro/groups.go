/*
 * groups.go, part of vorotraj.
 *
 * Copyright 2026 The vorotraj authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package voro

import (
	"fmt"
	"strconv"
	"strings"
)

//Groups contains the upper-bound atom ids (1-based, as in GROMACS files) of contiguous
//groups of atoms, in strictly increasing order. Group 0 goes from atom 1 to Groups[0],
//group i from Groups[i-1]+1 to Groups[i]. Atoms after the last bound, if any, form
//one last, implicit group.
type Groups []int

//ParseGroups reads a space-separated list of group bounds, e.g. "100 123 250".
//The list must not be empty, and the bounds must be positive and strictly increasing.
func ParseGroups(s string) (Groups, error) {
	f := strings.Fields(s)
	if len(f) == 0 {
		return nil, configError("no group bounds given", "ParseGroups")
	}
	G := make(Groups, 0, len(f))
	for i, v := range f {
		b, err := strconv.Atoi(v)
		if err != nil {
			return nil, configError(fmt.Sprintf("group bound %d ('%s') is not an integer", i+1, v), "ParseGroups")
		}
		if b < 1 {
			return nil, configError(fmt.Sprintf("group bound %d (%d) must be a positive atom id", i+1, b), "ParseGroups")
		}
		if i > 0 && b <= G[i-1] {
			return nil, configError(fmt.Sprintf("group bounds must be strictly increasing, but %d follows %d", b, G[i-1]), "ParseGroups")
		}
		G = append(G, b)
	}
	return G, nil
}

//Validate checks the bounds against the number of atoms in the system.
func (G Groups) Validate(natoms int) error {
	if len(G) == 0 {
		return configError("no group bounds given", "Validate")
	}
	if last := G[len(G)-1]; last > natoms {
		return configError(fmt.Sprintf("last group bound (%d) exceeds the number of atoms (%d)", last, natoms), "Validate")
	}
	return nil
}

//String returns the bounds separated by single spaces, the way the external program takes them.
func (G Groups) String() string {
	s := make([]string, len(G))
	for i, v := range G {
		s[i] = strconv.Itoa(v)
	}
	return strings.Join(s, " ")
}

//Ranges returns the first and last atom ids of each group, for a system with
//natoms atoms, including the implicit last group.
func (G Groups) Ranges(natoms int) [][2]int {
	r := make([][2]int, 0, len(G)+1)
	first := 1
	for _, v := range G {
		r = append(r, [2]int{first, v})
		first = v + 1
	}
	if first <= natoms {
		r = append(r, [2]int{first, natoms})
	}
	return r
}

//Of returns the index of the group containing the atom with the given (1-based) id.
//Ids past the last bound belong to the implicit last group, len(G).
//It returns -1 for ids smaller than 1.
func (G Groups) Of(id int) int {
	if id < 1 {
		return -1
	}
	for i, v := range G {
		if id <= v {
			return i
		}
	}
	return len(G)
}

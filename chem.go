/*
 * chem.go, part of vorotraj.
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

package chem

import "fmt"

/**Note: Topology accessors panic instead of returning errors when given out of range
 * indexes. If that happens, the program is wrong and should crash.**/

//Atom contains the information read for an atom, except for the coordinates,
//which will be in a v3.Matrix.
type Atom struct {
	Name    string
	ID      int //as read from the file, 1-based in GROMACS files.
	MolName string
	MolID   int
	Symbol  string
}

//Topology contains the information about a system that is not expected to
//change in time, i.e. everything except for coordinates and box.
type Topology struct {
	Atoms []*Atom
}

//NewTopology returns a topology with the given atoms. The slice is not copied.
func NewTopology(ats []*Atom) (*Topology, error) {
	if ats == nil {
		return nil, CError{"Supplied a nil atom slice", []string{"NewTopology"}}
	}
	return &Topology{Atoms: ats}, nil
}

//Atom returns the Atom corresponding to the index i
//of the Atom slice in the Topology. Panics if
//out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() || i < 0 {
		panic(fmt.Sprintf("Topology: Requested Atom %d out of bounds", i))
	}
	return T.Atoms[i]
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

//CError (Chemical error) is the basic error type for the chem package.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

/*
 * gro.go, part of vorotraj.
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

//Package gro reads multi-frame GROMACS .gro files as trajectories.
//Coordinates and box are returned in nm, as written in the file.
package gro

import (
	"bufio"
	"fmt"
	"io"
	"os"

	chem "github.com/rmera/vorotraj"
	v3 "github.com/rmera/vorotraj/v3"
)

//GroR is a .gro trajectory opened for reading.
type GroR struct {
	f        *os.File
	h        *bufio.Reader
	natoms   int
	filename string
	readable bool
	pending  bool //the header of the next frame has already been read
	frames   int
}

//New opens the .gro trajectory name. The first frame header is read to
//obtain the number of atoms.
func New(name string) (*GroR, error) {
	G := new(GroR)
	G.filename = name
	var err error
	G.f, err = os.Open(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"New"}, true}
	}
	G.h = bufio.NewReader(G.f)
	_, G.natoms, err = chem.GroHeader(G.h)
	if err != nil {
		G.f.Close()
		return nil, Error{WrongFormat + ": " + err.Error(), name, []string{"New"}, true}
	}
	if G.natoms <= 0 {
		G.f.Close()
		return nil, Error{WrongFormat + ": the first frame has no atoms", name, []string{"New"}, true}
	}
	G.pending = true
	G.readable = true
	return G, nil
}

//Readable returns true if the handle is readable (if it is possible to call Next on it)
func (G *GroR) Readable() bool {
	return G != nil && G.readable
}

//Len returns the number of atoms per frame.
func (G *GroR) Len() int {
	return G.natoms
}

//Next puts in c the coordinates of the next frame and, if given, puts the box in box[0],
//which must have at least 9 elements. If c is nil, the frame is read and checked, but discarded.
//At the end of the trajectory it returns an error implementing chem.LastFrameError.
func (G *GroR) Next(c *v3.Matrix, box ...[]float64) error {
	if !G.Readable() {
		return Error{TrajUnIniRead, G.filename, []string{"Next"}, true}
	}
	if !G.pending {
		_, natoms, err := chem.GroHeader(G.h)
		if err == io.EOF {
			G.Close()
			return newlastFrameError(G.filename, "Next")
		}
		if err != nil {
			return Error{WrongFormat + ": " + err.Error(), G.filename, []string{"Next"}, true}
		}
		if natoms != G.natoms {
			return Error{fmt.Sprintf("Frame %d has %d atoms, %d expected", G.frames, natoms, G.natoms), G.filename, []string{"Next"}, true}
		}
	}
	G.pending = false
	var b []float64
	if len(box) > 0 {
		b = box[0]
	}
	if err := chem.GroBody(G.h, G.natoms, c, b, nil); err != nil {
		return Error{fmt.Sprintf("%s in frame %d: %s", ReadError, G.frames, err.Error()), G.filename, []string{"Next"}, true}
	}
	G.frames++
	return nil
}

//Close closes the file and marks the object as unreadable.
func (G *GroR) Close() {
	if !G.Readable() {
		return
	}
	G.f.Close()
	G.readable = false
}

//Errors

//Error is the general structure for gro trajectory errors. It fullfills chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("gro file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

//Format returns the format of the file (always "gro") associated to the error
func (err Error) Format() string { return "gro" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead = "Traj object uninitialized to read"
	ReadError     = "Error reading frame"
	UnableToOpen  = "Unable to open file"
	WrongFormat   = "Wrong format in the gro file or frame"
)

//lastFrameError implements chem.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

//NormalLastFrameTermination does nothing
func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "gro" }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}

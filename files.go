/*
 * files.go, part of vorotraj.
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

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	v3 "github.com/rmera/vorotraj/v3"
)

//GroFileRead reads the first frame of the GROMACS .gro file grofile.
//It returns the topology, the coordinates (in nm) and the box as the 9 elements
//of the box matrix, row-major.
func GroFileRead(grofile string) (*Topology, *v3.Matrix, []float64, error) {
	f, err := os.Open(grofile)
	if err != nil {
		return nil, nil, nil, CError{err.Error(), []string{"os.Open", "GroFileRead"}}
	}
	defer f.Close()
	return GroRead(bufio.NewReader(f))
}

//GroRead reads the first frame of a .gro file from r. See GroFileRead.
func GroRead(r *bufio.Reader) (*Topology, *v3.Matrix, []float64, error) {
	_, natoms, err := GroHeader(r)
	if err != nil {
		if err == io.EOF {
			err = CError{"Empty gro file", []string{"GroRead"}}
		}
		return nil, nil, nil, err
	}
	if natoms == 0 {
		return nil, nil, nil, CError{"The gro file has no atoms", []string{"GroRead"}}
	}
	atoms := make([]*Atom, natoms)
	coords := v3.Zeros(natoms)
	box := make([]float64, 9)
	if err := GroBody(r, natoms, coords, box, atoms); err != nil {
		return nil, nil, nil, err
	}
	top, _ := NewTopology(atoms)
	return top, coords, box, nil
}

//GroHeader reads the title and the atom-count lines of a .gro frame.
//If r contains only blank lines before the title line, it returns io.EOF unchanged, so
//readers can tell the normal end of a trajectory from an error.
func GroHeader(r *bufio.Reader) (string, int, error) {
	title, err := r.ReadString('\n')
	if err != nil {
		if err == io.EOF && strings.TrimSpace(title) == "" {
			return "", 0, io.EOF
		}
		return "", 0, CError{fmt.Sprintf("Can't read gro title: %s", err), []string{"GroHeader"}}
	}
	line, err := r.ReadString('\n')
	//A blank title followed only by blank lines is trailing whitespace at the end of the file.
	for strings.TrimSpace(title) == "" && strings.TrimSpace(line) == "" {
		if err != nil {
			return "", 0, io.EOF
		}
		line, err = r.ReadString('\n')
	}
	if err != nil && line == "" {
		return "", 0, CError{"Ill formatted gro file: missing atom number", []string{"GroHeader"}}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms < 0 {
		return "", 0, CError{fmt.Sprintf("Ill formatted gro file: can't read atom number from '%s'", strings.TrimSpace(line)), []string{"GroHeader"}}
	}
	return strings.TrimSpace(title), natoms, nil
}

//GroBody reads natoms atom lines and the box line of a .gro frame.
//coords, box and atoms can each be nil, in which case the
//corresponding information is checked but not kept.
func GroBody(r *bufio.Reader, natoms int, coords *v3.Matrix, box []float64, atoms []*Atom) error {
	if coords != nil && coords.NVecs() != natoms {
		return CError{fmt.Sprintf("Frame has %d atoms, but a matrix for %d was given", natoms, coords.NVecs()), []string{"GroBody"}}
	}
	var xyz [3]float64
	for i := 0; i < natoms; i++ {
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return CError{fmt.Sprintf("Unexpected end of gro frame at atom %d: %s", i+1, err), []string{"GroBody"}}
		}
		line = strings.TrimRight(line, "\r\n")
		if err := groCoords(line, &xyz); err != nil {
			return CError{fmt.Sprintf("Atom line %d: %s", i+1, err), []string{"groCoords", "GroBody"}}
		}
		if coords != nil {
			coords.SetVec(i, xyz[0], xyz[1], xyz[2])
		}
		if atoms != nil {
			atoms[i] = groAtom(line, i)
		}
	}
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return CError{"Missing box line in gro frame", []string{"GroBody"}}
	}
	b, err := groBox(line)
	if err != nil {
		return CError{err.Error(), []string{"groBox", "GroBody"}}
	}
	if len(box) >= 9 {
		copy(box, b[:])
	}
	return nil
}

//groCoords reads the 3 positions from a .gro atom line. The field width
//is taken from the distance between the first two decimal points, as GROMACS
//allows variable precision.
func groCoords(line string, xyz *[3]float64) error {
	if len(line) < 20 {
		return fmt.Errorf("line too short: '%s'", line)
	}
	rest := line[20:]
	width := 8
	if p1 := strings.IndexByte(rest, '.'); p1 >= 0 {
		if p2 := strings.IndexByte(rest[p1+1:], '.'); p2 >= 0 {
			width = p2 + 1
		}
	}
	if len(rest) < 3*width {
		//not quite fixed-column. Let's try with fields.
		f := strings.Fields(rest)
		if len(f) < 3 {
			return fmt.Errorf("can't read coordinates from '%s'", rest)
		}
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(f[j], 64)
			if err != nil {
				return err
			}
			xyz[j] = v
		}
		return nil
	}
	for j := 0; j < 3; j++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(rest[j*width:(j+1)*width]), 64)
		if err != nil {
			return err
		}
		xyz[j] = v
	}
	return nil
}

func groAtom(line string, i int) *Atom {
	at := new(Atom)
	at.MolID, _ = strconv.Atoi(strings.TrimSpace(line[0:5]))
	at.MolName = strings.TrimSpace(line[5:10])
	at.Name = strings.TrimSpace(line[10:15])
	id, err := strconv.Atoi(strings.TrimSpace(line[15:20]))
	if err != nil {
		id = i + 1 //GROMACS ids are 1-based and wrap around after 99999 anyway.
	}
	at.ID = id
	at.Symbol = symbolFromName(at.Name)
	return at
}

//symbolFromName guesses the element from the atom name. Only the leading
//letter is used, which is right for the usual biomolecular elements.
func symbolFromName(name string) string {
	for _, c := range name {
		if unicode.IsLetter(c) {
			return string(unicode.ToUpper(c))
		}
	}
	return ""
}

//groBox reads a .gro box line, with 3 (rectangular) or 9 values, and returns
//the box matrix, row-major.
//The .gro order is v1(x) v2(y) v3(z) v1(y) v1(z) v2(x) v2(z) v3(x) v3(y).
func groBox(line string) ([9]float64, error) {
	var b [9]float64
	f := strings.Fields(line)
	if len(f) != 3 && len(f) != 9 {
		return b, fmt.Errorf("box line should have 3 or 9 values, has %d: '%s'", len(f), strings.TrimSpace(line))
	}
	order := []int{0, 4, 8, 1, 2, 3, 5, 6, 7}
	for i, v := range f {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return b, fmt.Errorf("can't read box value '%s': %w", v, err)
		}
		b[order[i]] = val
	}
	return b, nil
}

//GroWrite writes one .gro frame with the coordinates (nm) and box to w.
//top can be nil, in which case dummy names are used.
func GroWrite(w io.Writer, title string, coords *v3.Matrix, box []float64, top Atomer) error {
	natoms := coords.NVecs()
	if top != nil && top.Len() != natoms {
		return CError{fmt.Sprintf("Topology has %d atoms, coordinates %d", top.Len(), natoms), []string{"GroWrite"}}
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n%5d\n", title, natoms)
	for i := 0; i < natoms; i++ {
		at := &Atom{Name: "X", ID: i + 1, MolName: "UNK", MolID: 1}
		if top != nil {
			at = top.Atom(i)
		}
		fmt.Fprintf(bw, "%5d%-5s%5s%5d%8.3f%8.3f%8.3f\n", at.MolID%100000, at.MolName, at.Name, at.ID%100000, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
	}
	if len(box) < 9 {
		return CError{"Box needs 9 values", []string{"GroWrite"}}
	}
	if box[1] == 0 && box[2] == 0 && box[3] == 0 && box[5] == 0 && box[6] == 0 && box[7] == 0 {
		fmt.Fprintf(bw, "%10.5f%10.5f%10.5f\n", box[0], box[4], box[8])
	} else {
		fmt.Fprintf(bw, "%10.5f%10.5f%10.5f%10.5f%10.5f%10.5f%10.5f%10.5f%10.5f\n", box[0], box[4], box[8], box[1], box[2], box[3], box[5], box[6], box[7])
	}
	return bw.Flush()
}

//GroFileWrite writes a one-frame .gro file. If the file exists it will be overwritten.
func GroFileWrite(name, title string, coords *v3.Matrix, box []float64, top Atomer) error {
	out, err := os.Create(name)
	if err != nil {
		return CError{err.Error(), []string{"os.Create", "GroFileWrite"}}
	}
	defer out.Close()
	if err := GroWrite(out, title, coords, box, top); err != nil {
		return err
	}
	return out.Close()
}

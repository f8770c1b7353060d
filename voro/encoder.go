/*
 * encoder.go, part of vorotraj.
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
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	v3 "github.com/rmera/vorotraj/v3"
)

//EncoderOptions controls how a frame is turned into input for the external program.
type EncoderOptions struct {
	Scale          float64 //factor applied to coordinates and box, 10 turns nm into A.
	Precision      int     //decimal places printed before trailing zeros are removed.
	CubicTolerance float64 //maximum difference, in nm, between the diagonal elements of the box.
}

//DefaultEncoderOptions returns the options used by the voro_interfaces++ bridge:
//nm to A, 6 decimal places and a 1e-6 nm tolerance for the box.
func DefaultEncoderOptions() *EncoderOptions {
	return &EncoderOptions{Scale: 10, Precision: 6, CubicTolerance: 1e-6}
}

//Encoder formats frames. It keeps no state between frames.
type Encoder struct {
	opts EncoderOptions
}

//NewEncoder returns an encoder with the given options. A nil opts gives the default ones.
func NewEncoder(opts *EncoderOptions) (*Encoder, error) {
	if opts == nil {
		opts = DefaultEncoderOptions()
	}
	if opts.Scale <= 0 || math.IsInf(opts.Scale, 0) || math.IsNaN(opts.Scale) {
		return nil, configError(fmt.Sprintf("invalid scale factor %g", opts.Scale), "NewEncoder")
	}
	if opts.Precision < 0 || opts.Precision > 17 {
		return nil, configError(fmt.Sprintf("precision must be between 0 and 17, got %d", opts.Precision), "NewEncoder")
	}
	if opts.CubicTolerance < 0 {
		return nil, configError(fmt.Sprintf("negative box tolerance %g", opts.CubicTolerance), "NewEncoder")
	}
	return &Encoder{opts: *opts}, nil
}

//Frame is one frame, ready to be fed to the external program.
type Frame struct {
	NAtoms int
	Input  []byte //one "id x y z" line per atom, each ending in a newline.
	Edge   string //the formatted, scaled, box edge.
}

//Lines returns the input lines, without newlines.
func (F *Frame) Lines() []string {
	return strings.Split(strings.TrimSuffix(string(F.Input), "\n"), "\n")
}

//Format renders v with the encoder's precision, then removes trailing zeros
//and a trailing decimal point. Negative zero is rendered as "0".
func (E *Encoder) Format(v float64) string {
	s := strconv.FormatFloat(v, 'f', E.opts.Precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

//BoxEdge checks that box, a row-major 3x3 matrix, is cubic, and returns its
//edge, already scaled.
func (E *Encoder) BoxEdge(box []float64) (float64, error) {
	if len(box) < 9 {
		return 0, geometryError(fmt.Sprintf("the box needs 9 values, got %d", len(box)), "BoxEdge")
	}
	xx, yy, zz := box[0], box[4], box[8]
	for _, v := range []float64{xx, yy, zz} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, geometryError(fmt.Sprintf("non-finite box dimension %g", v), "BoxEdge")
		}
	}
	if xx <= 0 {
		return 0, geometryError(fmt.Sprintf("non-positive box edge %g", xx), "BoxEdge")
	}
	if math.Abs(xx-yy) > E.opts.CubicTolerance || math.Abs(xx-zz) > E.opts.CubicTolerance {
		return 0, geometryError(fmt.Sprintf("only cubic boxes are supported, got %g x %g x %g", xx, yy, zz), "BoxEdge")
	}
	return xx * E.opts.Scale, nil
}

//Encode formats the coordinates (in nm) and box of one frame. Atom ids start at 1.
func (E *Encoder) Encode(coords *v3.Matrix, box []float64) (*Frame, error) {
	edge, err := E.BoxEdge(box)
	if err != nil {
		return nil, err
	}
	if coords == nil {
		return nil, geometryError("nil coordinates", "Encode")
	}
	n := coords.NVecs()
	scaled := v3.Zeros(n)
	scaled.Scale(E.opts.Scale, coords)
	var b bytes.Buffer
	b.Grow(n * 32)
	for i := 0; i < n; i++ {
		b.WriteString(strconv.Itoa(i + 1))
		for j := 0; j < 3; j++ {
			v := scaled.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, geometryError(fmt.Sprintf("non-finite coordinate for atom %d", i+1), "Encode")
			}
			b.WriteByte(' ')
			b.WriteString(E.Format(v))
		}
		b.WriteByte('\n')
	}
	return &Frame{NAtoms: n, Input: b.Bytes(), Edge: E.Format(edge)}, nil
}

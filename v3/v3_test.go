/*
 * v3_test.go, part of vorotraj.
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

package v3

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewMatrix(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Fatal(err)
	}
	if A.NVecs() != 3 {
		Te.Errorf("expected 3 vectors, got %d", A.NVecs())
	}
	a[3] = 100
	if A.At(1, 0) != 100 {
		Te.Errorf("the slice should back the matrix: %v", A.At(1, 0))
	}
	if _, err := NewMatrix([]float64{1, 2}); err == nil {
		Te.Error("expected error for a slice not divisible by 3")
	}
}

func TestScale(Te *testing.T) {
	A := Zeros(2)
	A.SetVec(0, 0.1, 0.2, 0.3)
	A.SetVec(1, -1, 0, 1)
	B := Zeros(2)
	B.Scale(10, A)
	want := []float64{1, 2, 3, -10, 0, 10}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if d := B.At(i, j) - want[3*i+j]; d > 1e-12 || d < -1e-12 {
				Te.Errorf("(%d,%d): got %v want %v", i, j, B.At(i, j), want[3*i+j])
			}
		}
	}
}

func TestStringAndShape(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	if s := A.String(); !strings.HasPrefix(s, "   1.000    2.000    3.000\n") {
		Te.Errorf("unexpected rendering %q", s)
	}
	defer func() {
		if r := recover(); r != ErrNotXx3Matrix {
			Te.Errorf("expected a panic with ErrNotXx3Matrix, got %v", r)
		}
	}()
	B := &Matrix{mat.NewDense(2, 2, nil)}
	B.NVecs()
}

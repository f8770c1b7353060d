/*
 * report.go, part of vorotraj.
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
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

//Report collects the results of all frames, in trajectory order.
//It doesn't interpret the output of the program beyond finding which of
//its lines are made only of numbers.
type Report struct {
	frames []*FrameResult
}

//NewReport returns an empty report.
func NewReport() *Report {
	return &Report{frames: make([]*FrameResult, 0, 100)}
}

//Add appends the result of one frame.
func (R *Report) Add(F *FrameResult) {
	R.frames = append(R.frames, F)
}

//Len returns the number of frames in the report.
func (R *Report) Len() int {
	return len(R.frames)
}

//Frames returns the results, in the order they were added.
func (R *Report) Frames() []*FrameResult {
	return R.frames
}

//Failed returns the frames where the program failed, or couldn't be run.
//Frames in dry runs are not considered failed.
func (R *Report) Failed() []*FrameResult {
	var ret []*FrameResult
	for _, v := range R.frames {
		if v.Err != nil || (v.Status != StatusSuccess && v.Status != StatusNotRun) {
			ret = append(ret, v)
		}
	}
	return ret
}

//WriteTo writes, for each frame, a header line and then the output of the program, unchanged.
func (R *Report) WriteTo(w io.Writer) (int64, error) {
	b := bufio.NewWriter(w)
	var n int64
	for _, v := range R.frames {
		i, err := fmt.Fprintf(b, "# frame %d status=%s exit=%d\n", v.Frame, v.Status, v.ExitCode)
		n += int64(i)
		if err != nil {
			return n, err
		}
		for _, l := range v.Output {
			i, err = fmt.Fprintln(b, l)
			n += int64(i)
			if err != nil {
				return n, err
			}
		}
	}
	return n, b.Flush()
}

//NumericRows returns the lines of out where every whitespace-separated field is a
//finite number, parsed. Other lines, including those with nan or inf, are skipped.
func NumericRows(out []string) [][]float64 {
	var rows [][]float64
	for _, l := range out {
		f := strings.Fields(l)
		if len(f) == 0 {
			continue
		}
		row := make([]float64, 0, len(f))
		for _, v := range f {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				row = nil
				break
			}
			row = append(row, n)
		}
		if row != nil {
			rows = append(rows, row)
		}
	}
	return rows
}

//Cell is a position in the numeric output of the program: the Col-th
//number of the Row-th numeric line, both 0-based.
type Cell struct {
	Row, Col int
}

func (C Cell) String() string { return fmt.Sprintf("%d,%d", C.Row, C.Col) }

//ParseCell reads a cell given as "row,col".
func ParseCell(s string) (Cell, error) {
	f := strings.Split(s, ",")
	if len(f) != 2 {
		return Cell{}, configError(fmt.Sprintf("cell '%s' is not of the form row,col", s), "ParseCell")
	}
	r, err1 := strconv.Atoi(strings.TrimSpace(f[0]))
	c, err2 := strconv.Atoi(strings.TrimSpace(f[1]))
	if err1 != nil || err2 != nil || r < 0 || c < 0 {
		return Cell{}, configError(fmt.Sprintf("cell '%s' is not of the form row,col", s), "ParseCell")
	}
	return Cell{Row: r, Col: c}, nil
}

//CellStat contains the mean and standard deviation of one cell over the
//N successful frames where it appeared. StdDev is 0 if N<2.
type CellStat struct {
	Cell
	N      int
	Mean   float64
	StdDev float64
}

//Series returns the frame numbers and values of the given cell, for the
//successful frames that have it.
func (R *Report) Series(C Cell) (frames, values []float64) {
	for _, v := range R.frames {
		if !v.OK() {
			continue
		}
		rows := NumericRows(v.Output)
		if C.Row >= len(rows) || C.Col >= len(rows[C.Row]) {
			continue
		}
		frames = append(frames, float64(v.Frame))
		values = append(values, rows[C.Row][C.Col])
	}
	return frames, values
}

//Summary returns statistics for every cell that appears in at least one
//successful frame, sorted by row and then column.
func (R *Report) Summary() []CellStat {
	vals := make(map[Cell][]float64)
	for _, v := range R.frames {
		if !v.OK() {
			continue
		}
		for i, row := range NumericRows(v.Output) {
			for j, n := range row {
				c := Cell{i, j}
				vals[c] = append(vals[c], n)
			}
		}
	}
	ret := make([]CellStat, 0, len(vals))
	for c, v := range vals {
		s := CellStat{Cell: c, N: len(v)}
		if len(v) > 1 {
			s.Mean, s.StdDev = stat.MeanStdDev(v, nil)
		} else {
			s.Mean = v[0]
		}
		ret = append(ret, s)
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Row != ret[j].Row {
			return ret[i].Row < ret[j].Row
		}
		return ret[i].Col < ret[j].Col
	})
	return ret
}

//WriteSummary writes the Summary as a table, one cell per line.
func (R *Report) WriteSummary(w io.Writer) error {
	b := bufio.NewWriter(w)
	fmt.Fprintf(b, "# %d frames, %d failed\n", R.Len(), len(R.Failed()))
	fmt.Fprintf(b, "# %5s %5s %6s %14s %14s\n", "row", "col", "frames", "mean", "stddev")
	for _, v := range R.Summary() {
		fmt.Fprintf(b, "  %5d %5d %6d %14.6g %14.6g\n", v.Row, v.Col, v.N, v.Mean, v.StdDev)
	}
	return b.Flush()
}

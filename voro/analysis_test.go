/*
 * analysis_test.go, part of vorotraj.
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
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	digest "github.com/opencontainers/go-digest"
	v3 "github.com/rmera/vorotraj/v3"
)

//memTraj is a trajectory kept in memory.
type memTraj struct {
	natoms int
	frames [][]float64
	boxes  [][]float64
	cur    int
}

func (M *memTraj) Readable() bool { return M.cur < len(M.frames) }

func (M *memTraj) Len() int { return M.natoms }

func (M *memTraj) Next(c *v3.Matrix, box ...[]float64) error {
	if M.cur >= len(M.frames) {
		return memEnd{}
	}
	f := M.frames[M.cur]
	if c != nil {
		for i := 0; i < M.natoms; i++ {
			c.SetVec(i, f[3*i], f[3*i+1], f[3*i+2])
		}
	}
	if len(box) > 0 {
		copy(box[0], M.boxes[M.cur])
	}
	M.cur++
	return nil
}

type memEnd struct{}

func (memEnd) Error() string { return "EOF" }
func (memEnd) Decorate(string) []string { return nil }
func (memEnd) Critical() bool { return false }
func (memEnd) FileName() string { return "memory" }
func (memEnd) Format() string { return "memory" }
func (memEnd) NormalLastFrameTermination() {}

func twoFrames() *memTraj {
	return &memTraj{
		natoms: 2,
		frames: [][]float64{
			{0, 0, 0, 0.1, 0.2, 0.3},
			{0.2, 0, 0, 0.3, 0, 0},
		},
		boxes: [][]float64{cubic(1), cubic(1)},
	}
}

//the program is sh, and the script prints its arguments, then the number of
//atoms and the sum of their x coordinates.
const sumScript = `echo "args: $*"; awk '{n++; s+=$2} END {print n, s}'`

func shOptions(script string) *Options {
	o := DefaultOptions()
	o.Groups = "1"
	o.Tool = "sh"
	o.Flags = []string{"-c", script, "voro"}
	return o
}

func TestAnalysisRun(Te *testing.T) {
	needSh(Te)
	A, err := NewAnalysis(shOptions(sumScript))
	if err != nil {
		Te.Fatal(err)
	}
	rep := NewReport()
	var done []int
	if err := A.Run(context.Background(), twoFrames(), rep, func(i int) { done = append(done, i) }); err != nil {
		Te.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 2}, done); diff != "" {
		Te.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
	if rep.Len() != 2 || len(rep.Failed()) != 0 {
		Te.Fatalf("expected 2 successful frames, got %d, %d failed", rep.Len(), len(rep.Failed()))
	}
	want := [][]string{
		{"args: -gp 1 -p 0 10 0 10 0 10 file_name_placeholder", "2 1"},
		{"args: -gp 1 -p 0 10 0 10 0 10 file_name_placeholder", "2 5"},
	}
	for i, F := range rep.Frames() {
		if F.Frame != i || F.Status != StatusSuccess || F.ExitCode != 0 || !F.OK() {
			Te.Errorf("frame %d: unexpected result %+v", i, F)
		}
		if diff := cmp.Diff(want[i], F.Output); diff != "" {
			Te.Errorf("frame %d output mismatch (-want +got):\n%s", i, diff)
		}
	}
	if got := rep.Frames()[0].Input; got != digest.FromString("1 0 0 0\n2 1 2 3\n") {
		Te.Errorf("unexpected input digest %s", got)
	}
	argv := rep.Frames()[0].Argv
	if argv[0] != "sh" || argv[len(argv)-1] != DefaultPlaceholder {
		Te.Errorf("unexpected argument vector %v", argv)
	}
}

func TestAnalysisDryRun(Te *testing.T) {
	o := shOptions(sumScript)
	o.Tool = filepath.Join(Te.TempDir(), "never-run")
	o.DryRun = true
	var diag bytes.Buffer
	o.DiagOut = &diag
	A, err := NewAnalysis(o)
	if err != nil {
		Te.Fatal(err)
	}
	rep := NewReport()
	if err := A.Run(context.Background(), twoFrames(), rep, nil); err != nil {
		Te.Fatal(err)
	}
	if rep.Len() != 2 || len(rep.Failed()) != 0 {
		Te.Errorf("expected 2 frames and no failures, got %d, %d", rep.Len(), len(rep.Failed()))
	}
	for _, F := range rep.Frames() {
		if F.Status != StatusNotRun || F.Output != nil {
			Te.Errorf("dry-run frame was run: %+v", F)
		}
	}
	if n := strings.Count(diag.String(), "never-run"); n != 2 {
		Te.Errorf("expected 2 commands in the diagnostics, got %d:\n%s", n, diag.String())
	}
	if strings.Contains(diag.String(), "<<<") || strings.Contains(diag.String(), "2 1 2 3") {
		Te.Errorf("the coordinates should only be shown in verbose mode:\n%s", diag.String())
	}

	o.Verbose = true
	diag.Reset()
	A, err = NewAnalysis(o)
	if err != nil {
		Te.Fatal(err)
	}
	if err := A.Run(context.Background(), twoFrames(), NewReport(), nil); err != nil {
		Te.Fatal(err)
	}
	if !strings.Contains(diag.String(), "<<< '1 0 0 0\n2 1 2 3'") {
		Te.Errorf("verbose diagnostics should show the coordinates:\n%s", diag.String())
	}
}

func TestAnalysisNoAtoms(Te *testing.T) {
	A, err := NewAnalysis(shOptions(sumScript))
	if err != nil {
		Te.Fatal(err)
	}
	for _, n := range []int{0, -5} {
		rep := NewReport()
		err := A.Run(context.Background(), &memTraj{natoms: n}, rep, nil)
		if !IsKind(err, ConfigError) {
			Te.Errorf("%d atoms: expected a ConfigError, got %v", n, err)
		}
		if rep.Len() != 0 {
			Te.Errorf("%d atoms: no frame should have been processed", n)
		}
	}
}

func TestAnalysisConfigErrors(Te *testing.T) {
	o := DefaultOptions()
	for _, g := range []string{"", "100 90", "a"} {
		o.Groups = g
		if _, err := NewAnalysis(o); !IsKind(err, ConfigError) {
			Te.Errorf("groups %q: expected a ConfigError, got %v", g, err)
		}
	}
	o.Groups = "5"
	o.Encoder = &EncoderOptions{Scale: -1, Precision: 6}
	if _, err := NewAnalysis(o); !IsKind(err, ConfigError) {
		Te.Errorf("expected a ConfigError for a negative scale, got %v", err)
	}
}

func TestAnalysisFailsBeforeFirstFrame(Te *testing.T) {
	//more atoms in the groups than in the system
	o := shOptions(sumScript)
	o.Groups = "1 5"
	A, err := NewAnalysis(o)
	if err != nil {
		Te.Fatal(err)
	}
	rep := NewReport()
	err = A.Run(context.Background(), twoFrames(), rep, nil)
	if !IsKind(err, ConfigError) {
		Te.Errorf("expected a ConfigError, got %v", err)
	}
	if rep.Len() != 0 {
		Te.Errorf("no frame should have been processed, got %d", rep.Len())
	}

	//non-cubic first box
	A, _ = NewAnalysis(shOptions(sumScript))
	T := twoFrames()
	T.boxes[0] = []float64{1, 0, 0, 0, 2, 0, 0, 0, 1}
	err = A.Run(context.Background(), T, rep, nil)
	if !IsKind(err, GeometryError) {
		Te.Errorf("expected a GeometryError, got %v", err)
	}
	if rep.Len() != 0 {
		Te.Errorf("no frame should have been processed, got %d", rep.Len())
	}
}

func TestAnalysisLaterBadBox(Te *testing.T) {
	needSh(Te)
	A, _ := NewAnalysis(shOptions(sumScript))
	T := twoFrames()
	T.boxes[1] = []float64{1, 0, 0, 0, 1, 0, 0, 0, 3}
	rep := NewReport()
	err := A.Run(context.Background(), T, rep, nil)
	if !IsKind(err, GeometryError) {
		Te.Errorf("expected a GeometryError, got %v", err)
	}
	if rep.Len() != 1 {
		Te.Errorf("expected only the first frame, got %d", rep.Len())
	}
}

func TestAnalysisToolFailures(Te *testing.T) {
	needSh(Te)
	A, err := NewAnalysis(shOptions("echo partial; exit 2"))
	if err != nil {
		Te.Fatal(err)
	}
	rep := NewReport()
	if err := A.Run(context.Background(), twoFrames(), rep, nil); err != nil {
		Te.Fatalf("tool failures should not stop the run: %v", err)
	}
	failed := rep.Failed()
	if len(failed) != 2 {
		Te.Fatalf("expected 2 failed frames, got %d", len(failed))
	}
	for i, F := range failed {
		if F.Frame != i || F.Status != StatusExitFailure || F.ExitCode != 2 || !IsKind(F.Err, ToolError) {
			Te.Errorf("unexpected result %+v", F)
		}
		if diff := cmp.Diff([]string{"partial"}, F.Output); diff != "" {
			Te.Errorf("output mismatch (-want +got):\n%s", diff)
		}
	}

	o := shOptions(sumScript)
	o.Tool = filepath.Join(Te.TempDir(), "no-such-program")
	A, _ = NewAnalysis(o)
	rep = NewReport()
	if err := A.Run(context.Background(), twoFrames(), rep, nil); err != nil {
		Te.Fatalf("spawn failures should not stop the run: %v", err)
	}
	for _, F := range rep.Failed() {
		if F.Status != StatusSpawnFailure || !IsKind(F.Err, SpawnError) || F.Output != nil {
			Te.Errorf("unexpected result %+v", F)
		}
	}
	if len(rep.Failed()) != 2 {
		Te.Errorf("expected 2 failed frames, got %d", len(rep.Failed()))
	}
}

func TestAnalyzeFrameAtomCount(Te *testing.T) {
	A, _ := NewAnalysis(shOptions(sumScript))
	if err := A.Init(2, cubic(1)); err != nil {
		Te.Fatal(err)
	}
	c, _ := v3.NewMatrix([]float64{0, 0, 0})
	if _, err := A.AnalyzeFrame(context.Background(), 0, c, cubic(1)); !IsKind(err, GeometryError) {
		Te.Errorf("expected a GeometryError for the wrong number of atoms, got %v", err)
	}
	if err := A.Init(0, cubic(1)); !IsKind(err, ConfigError) {
		Te.Errorf("expected a ConfigError for an empty system, got %v", err)
	}
}

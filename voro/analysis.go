/*
 * analysis.go, part of vorotraj.
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
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	digest "github.com/opencontainers/go-digest"
	chem "github.com/rmera/vorotraj"
	v3 "github.com/rmera/vorotraj/v3"
)

//Options contains all the settings for a trajectory analysis.
type Options struct {
	Groups      string   //space-separated upper bounds of the atom groups, e.g. "100 123".
	Tool        string   //the program to run. Empty means the Handle default.
	Flags       []string //flags before the group bounds. nil means the Handle default.
	Placeholder string   //file name argument ending the command. Empty means DefaultPlaceholder.
	Encoder     *EncoderOptions
	Bridge      *BridgeOptions
	DryRun      bool      //print the commands instead of running them. With Verbose, the coordinates too.
	DiagOut     io.Writer //where the dry-run commands go. nil means os.Stdout.
	Custom      string    //custom output format. Not implemented, ignored with a warning.
	Verbose     bool
}

//DefaultOptions returns the default options, with no groups set.
func DefaultOptions() *Options {
	return &Options{
		Encoder: DefaultEncoderOptions(),
		Bridge:  DefaultBridgeOptions(),
	}
}

//FrameResult is what happened with one frame.
type FrameResult struct {
	Frame    int      //0-based, in trajectory order.
	Argv     []string //program and arguments.
	Status   Status
	ExitCode int
	Output   []string //lines written by the program, without newlines.
	Input    digest.Digest
	Stderr   string
	Err      error //nil if the frame was processed without problems.
}

//OK returns true if the frame was processed by the program without problems.
func (F *FrameResult) OK() bool {
	return F.Status == StatusSuccess && F.Err == nil
}

//Analysis runs voro_interfaces++ over each frame of a trajectory.
type Analysis struct {
	groups  Groups
	enc     *Encoder
	handle  *Handle
	bridge  *Bridge
	dryrun  bool
	diag    io.Writer
	verbose bool
	natoms  int
	inited  bool
}

//NewAnalysis checks the options and prepares an analysis. The errors are
//ConfigErrors: bad group bounds, encoder options or program name.
func NewAnalysis(opts *Options) (*Analysis, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	G, err := ParseGroups(opts.Groups)
	if err != nil {
		return nil, err
	}
	enc, err := NewEncoder(opts.Encoder)
	if err != nil {
		return nil, err
	}
	H := NewHandle()
	if opts.Tool != "" {
		H.SetCommand(opts.Tool)
	}
	if strings.TrimSpace(H.Command()) == "" {
		return nil, configError(fmt.Sprintf("invalid program name '%s'", opts.Tool), "NewAnalysis")
	}
	if opts.Flags != nil {
		H.SetFlags(opts.Flags)
	}
	if opts.Placeholder != "" {
		H.SetPlaceholder(opts.Placeholder)
	}
	if opts.Custom != "" {
		log.Printf("voro: custom output formats are not implemented, '%s' will be ignored", opts.Custom)
	}
	A := &Analysis{
		groups:  G,
		enc:     enc,
		handle:  H,
		bridge:  NewBridge(opts.Bridge),
		dryrun:  opts.DryRun,
		diag:    opts.DiagOut,
		verbose: opts.Verbose,
	}
	if A.diag == nil {
		A.diag = os.Stdout
	}
	return A, nil
}

//Groups returns the group bounds of the analysis.
func (A *Analysis) Groups() Groups {
	return A.groups
}

//Handle returns the handle used to build the commands.
func (A *Analysis) Handle() *Handle {
	return A.handle
}

//Init checks the analysis against the system, before any frame is processed:
//the group bounds must fit in natoms atoms and the box must be cubic.
func (A *Analysis) Init(natoms int, box []float64) error {
	if natoms <= 0 {
		return configError(fmt.Sprintf("the system has no atoms (%d)", natoms), "Init")
	}
	if err := A.groups.Validate(natoms); err != nil {
		return err
	}
	if _, err := A.enc.BoxEdge(box); err != nil {
		return err
	}
	A.natoms = natoms
	A.inited = true
	return nil
}

//AnalyzeFrame encodes one frame and runs, or in dry runs prints, the command for it.
//Problems with the program are recorded in the returned FrameResult, and logged.
//Problems with the frame itself (GeometryError, or a frame with the wrong number of atoms)
//are returned as errors, since they will affect the whole trajectory.
func (A *Analysis) AnalyzeFrame(ctx context.Context, frnr int, coords *v3.Matrix, box []float64) (*FrameResult, error) {
	if A.inited && coords != nil && coords.NVecs() != A.natoms {
		return nil, geometryError(fmt.Sprintf("frame %d has %d atoms, expected %d", frnr, coords.NVecs(), A.natoms), "AnalyzeFrame")
	}
	F, err := A.enc.Encode(coords, box)
	if err != nil {
		return nil, decorate(err, fmt.Sprintf("AnalyzeFrame: frame %d", frnr))
	}
	C, err := A.handle.BuildCommand(A.groups, F)
	if err != nil {
		return nil, err
	}
	res := &FrameResult{Frame: frnr, Argv: C.Argv(), ExitCode: -1, Input: digest.FromBytes(C.Stdin)}
	if A.dryrun {
		line := C.String()
		if A.verbose {
			line = C.ShellString()
		}
		_, err := fmt.Fprintf(A.diag, "\n%s\n", line)
		if err != nil {
			return nil, Error{message: err.Error(), kind: OutputError, exitcode: -1, deco: []string{"AnalyzeFrame"}, critical: true}
		}
		return res, nil
	}
	var out bytes.Buffer
	r, err := A.bridge.Run(ctx, C, &out)
	res.Status = r.Status
	res.ExitCode = r.ExitCode
	res.Stderr = r.Stderr
	res.Output = splitLines(out.String())
	if err != nil {
		res.Err = decorate(err, fmt.Sprintf("AnalyzeFrame: frame %d", frnr))
		log.Printf("voro: frame %d: %v", frnr, err)
	} else if A.verbose {
		log.Printf("voro: frame %d: %d output lines", frnr, len(res.Output))
	}
	return res, nil
}

//Run goes through all the frames of traj, in order, adding the results to report.
//If progress is not nil it is called after each frame with the number of frames done.
//The first frame is used to Init the analysis, if that wasn't done before.
//Run stops at the first error reading the trajectory or encoding a frame, or when ctx
//is cancelled. Failures of the program in single frames don't stop it.
func (A *Analysis) Run(ctx context.Context, traj chem.Traj, report *Report, progress func(int)) error {
	if traj.Len() <= 0 {
		return configError(fmt.Sprintf("the trajectory has no atoms (%d)", traj.Len()), "Run")
	}
	coords := v3.Zeros(traj.Len())
	box := make([]float64, 9)
	for frnr := 0; ; frnr++ {
		if err := ctx.Err(); err != nil {
			return Error{message: err.Error(), kind: TimeoutError, exitcode: -1, deco: []string{"Run"}, critical: true}
		}
		err := traj.Next(coords, box)
		if err != nil {
			if _, ok := err.(chem.LastFrameError); ok {
				return nil
			}
			return fmt.Errorf("voro: reading frame %d: %w", frnr, err)
		}
		if !A.inited {
			if err := A.Init(traj.Len(), box); err != nil {
				return err
			}
		}
		res, err := A.AnalyzeFrame(ctx, frnr, coords, box)
		if err != nil {
			return err
		}
		if report != nil {
			report.Add(res)
		}
		if progress != nil {
			progress(frnr + 1)
		}
	}
}

func decorate(err error, dec string) error {
	var e Error
	if errors.As(err, &e) {
		e.deco = e.Decorate(dec)
		return e
	}
	return err
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

/*
 * run.go, part of vorotraj.
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

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	chem "github.com/rmera/vorotraj"
	"github.com/rmera/vorotraj/chemplot"
	"github.com/rmera/vorotraj/store"
	"github.com/rmera/vorotraj/traj/gro"
	"github.com/rmera/vorotraj/traj/stf"
	"github.com/rmera/vorotraj/voro"
)

type runFlags struct {
	groups     string
	structure  string
	traj       string
	custom     string
	tool       string
	scale      float64
	precision  int
	timeout    time.Duration
	dryRun     bool
	output     string
	summary    bool
	db         string
	plot       string
	cells      []string
	noProgress bool
}

func addRunFlags(fs *pflag.FlagSet, f *runFlags) {
	def := voro.DefaultEncoderOptions()
	fs.StringVar(&f.groups, "groups", "", "Upper bounds (atom ids) of the atom groups, e.g. \"100 123\" (required)")
	fs.StringVarP(&f.structure, "structure", "s", "", "Structure file, .gro (required)")
	fs.StringVarP(&f.traj, "traj", "f", "", "Trajectory, .gro or .stf. Defaults to the structure file")
	fs.StringVarP(&f.custom, "custom", "c", "", "Custom output format (not implemented, ignored)")
	fs.StringVar(&f.tool, "tool", "", "voro_interfaces++ executable. Defaults to $VORO_INTERFACES, or voro_interfaces++ in the PATH")
	fs.Float64Var(&f.scale, "scale", def.Scale, "Factor applied to coordinates and box (10 converts nm to A)")
	fs.IntVar(&f.precision, "precision", def.Precision, "Decimal places in the coordinates given to the program")
	fs.DurationVar(&f.timeout, "timeout", 0, "Maximum time for the program to process one frame (0 for no limit)")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Print the commands instead of running them")
	fs.StringVarP(&f.output, "output", "o", "-", "Report file ('-' for the standard output)")
	fs.BoolVar(&f.summary, "summary", false, "Append the per-cell mean and standard deviation to the report")
	fs.StringVar(&f.db, "db", "", "SQLite database to store the results in")
	fs.StringVar(&f.plot, "plot", "", "Plot the cells given with --plot-cell along the trajectory to this file (png, svg, pdf)")
	fs.StringSliceVar(&f.cells, "plot-cell", []string{"0,0"}, "Cells (numeric row,column of the program output) to plot")
	fs.BoolVar(&f.noProgress, "no-progress", false, "Disable the progress bar")
}

func newRunCmd() *cobra.Command {
	f := new(runFlags)
	cmd := &cobra.Command{
		Use:   "run --groups \"B1 B2 ...\" -s structure.gro [-f trajectory]",
		Short: "Run voro_interfaces++ on every frame of a trajectory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd.Context(), f)
		},
	}
	addRunFlags(cmd.Flags(), f)
	cmd.MarkFlagRequired("groups")
	cmd.MarkFlagRequired("structure")
	return cmd
}

//openTraj opens a .gro or STF trajectory, choosing the reader from the extension.
func openTraj(name string) (chem.Traj, func(), error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".gro":
		t, err := gro.New(name)
		if err != nil {
			return nil, nil, err
		}
		return t, t.Close, nil
	case strings.HasPrefix(ext, ".st"):
		t, _, err := stf.New(name)
		if err != nil {
			return nil, nil, err
		}
		return t, t.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported trajectory format '%s'", ext)
}

func analysisOptions(f *runFlags) *voro.Options {
	opts := voro.DefaultOptions()
	opts.Groups = f.groups
	opts.Tool = f.tool
	opts.Encoder.Scale = f.scale
	opts.Encoder.Precision = f.precision
	opts.Bridge.Timeout = f.timeout
	opts.DryRun = f.dryRun
	opts.DiagOut = os.Stdout
	opts.Custom = f.custom
	opts.Verbose = verbose
	return opts
}

func runAnalysis(ctx context.Context, f *runFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	A, err := voro.NewAnalysis(analysisOptions(f))
	if err != nil {
		return err
	}
	top, _, box, err := chem.GroFileRead(f.structure)
	if err != nil {
		return fmt.Errorf("reading structure %s: %w", f.structure, err)
	}
	if err := A.Init(top.Len(), box); err != nil {
		return err
	}
	if verbose {
		for i, r := range A.Groups().Ranges(top.Len()) {
			log.Printf("group %d: atoms %d to %d", i, r[0], r[1])
		}
	}
	trajname := f.traj
	if trajname == "" {
		trajname = f.structure
	}
	traj, closeTraj, err := openTraj(trajname)
	if err != nil {
		return err
	}
	defer closeTraj()
	if traj.Len() != top.Len() {
		return fmt.Errorf("the trajectory has %d atoms, the structure %d", traj.Len(), top.Len())
	}

	var progress func(int)
	var bar *progressbar.ProgressBar
	if !f.noProgress && !f.dryRun {
		bar = progressbar.Default(-1, "Analyzing frames")
		progress = func(n int) { bar.Set(n) }
	}
	rep := voro.NewReport()
	runerr := A.Run(ctx, traj, rep, progress)
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	//Whatever was processed is reported, even if the run stopped early.
	if err := writeReport(f, rep); err != nil {
		return err
	}
	if f.db != "" {
		if err := saveRun(f, A, trajname, rep); err != nil {
			return err
		}
	}
	if f.plot != "" && !f.dryRun {
		if err := plotCells(f, rep); err != nil {
			return err
		}
	}
	if runerr != nil {
		return runerr
	}
	if failed := rep.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d frames failed, the first one was frame %d: %v", len(failed), rep.Len(), failed[0].Frame, failed[0].Err)
	}
	log.Printf("%d frames processed", rep.Len())
	return nil
}

func writeReport(f *runFlags, rep *voro.Report) error {
	if f.dryRun {
		return nil
	}
	var w io.Writer = os.Stdout
	if f.output != "-" && f.output != "" {
		fout, err := os.Create(f.output)
		if err != nil {
			return err
		}
		defer fout.Close()
		w = fout
	}
	if _, err := rep.WriteTo(w); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if f.summary {
		if err := rep.WriteSummary(w); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	return nil
}

func saveRun(f *runFlags, A *voro.Analysis, trajname string, rep *voro.Report) error {
	db, err := store.Open(f.db)
	if err != nil {
		return err
	}
	defer db.Close()
	//a fresh context, so results are saved even after an interrupt.
	ctx := context.Background()
	R := &store.Run{
		Tool:       A.Handle().Command(),
		Groups:     A.Groups().String(),
		Scale:      f.scale,
		Structure:  f.structure,
		Trajectory: trajname,
		DryRun:     f.dryRun,
	}
	id, err := db.CreateRun(ctx, R)
	if err != nil {
		return err
	}
	if err := db.SaveReport(ctx, id, rep); err != nil {
		return err
	}
	log.Printf("results stored in %s, run %s", f.db, id)
	return nil
}

func plotCells(f *runFlags, rep *voro.Report) error {
	series := make([]chemplot.Series, 0, len(f.cells))
	for _, v := range f.cells {
		c, err := voro.ParseCell(v)
		if err != nil {
			return err
		}
		xs, ys := rep.Series(c)
		if len(xs) == 0 {
			log.Printf("cell %s is not present in any successful frame, not plotted", c)
			continue
		}
		series = append(series, chemplot.Series{Name: c.String(), X: xs, Y: ys})
	}
	if len(series) == 0 {
		return fmt.Errorf("nothing to plot")
	}
	return chemplot.MultiSeriesPlot(series, "voro_interfaces++, groups "+f.groups, "Value", f.plot)
}

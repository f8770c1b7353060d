/*
 * convert.go, part of vorotraj.
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
	"fmt"
	"log"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	chem "github.com/rmera/vorotraj"
	"github.com/rmera/vorotraj/traj/stf"
	v3 "github.com/rmera/vorotraj/v3"
)

func newConvertCmd() *cobra.Command {
	var level int
	var noProgress bool
	cmd := &cobra.Command{
		Use:   "convert <input.gro|input.stf> <output.stf>",
		Short: "Convert a trajectory to the compressed STF format",
		Long: "Convert a trajectory to the compressed STF format. The compression is chosen\n" +
			"from the last letter of the output name: .stz gzip, .stfr deflate, .stl lzw, otherwise zstd.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return convert(args[0], args[1], level, !noProgress)
		},
	}
	cmd.Flags().IntVar(&level, "level", 0, "Compression level (0 for the default)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

func convert(in, out string, level int, showProgress bool) error {
	traj, closeTraj, err := openTraj(in)
	if err != nil {
		return err
	}
	defer closeTraj()
	var levels []int
	if level != 0 {
		levels = append(levels, level)
	}
	w, err := stf.NewWriter(out, traj.Len(), map[string]string{"source": in}, levels...)
	if err != nil {
		return err
	}
	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(-1, "Converting frames")
	}
	coords := v3.Zeros(traj.Len())
	box := make([]float64, 9)
	frames := 0
	for ; ; frames++ {
		err := traj.Next(coords, box)
		if err != nil {
			if _, ok := err.(chem.LastFrameError); ok {
				break
			}
			w.Close()
			return fmt.Errorf("reading frame %d: %w", frames, err)
		}
		if err := w.WNext(coords, box); err != nil {
			w.Close()
			return fmt.Errorf("writing frame %d: %w", frames, err)
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}
	if err := w.Close(); err != nil {
		return err
	}
	log.Printf("%d frames of %d atoms written to %s", frames, traj.Len(), out)
	return nil
}

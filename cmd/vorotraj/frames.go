/*
 * frames.go, part of vorotraj.
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
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmera/vorotraj/store"
)

func newFramesCmd() *cobra.Command {
	var dbname string
	var showOutput bool
	cmd := &cobra.Command{
		Use:   "frames --db results.db [run-id]",
		Short: "List the stored runs, or the frames of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(dbname)
			if err != nil {
				return err
			}
			defer db.Close()
			if len(args) == 0 {
				return listRuns(cmd.Context(), db)
			}
			return listFrames(cmd.Context(), db, args[0], showOutput)
		},
	}
	cmd.Flags().StringVar(&dbname, "db", "", "SQLite database with the results (required)")
	cmd.Flags().BoolVar(&showOutput, "output", false, "Print the program output of each frame")
	cmd.MarkFlagRequired("db")
	return cmd
}

func listRuns(ctx context.Context, db *store.DB) error {
	runs, err := db.Runs(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tGROUPS\tTRAJECTORY\tTOOL")
	for _, r := range runs {
		dry := ""
		if r.DryRun {
			dry = " (dry run)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%s\n", r.ID, r.Started.Local().Format(time.DateTime), r.Groups, r.Trajectory, r.Tool, dry)
	}
	return w.Flush()
}

func listFrames(ctx context.Context, db *store.DB, runID string, showOutput bool) error {
	frames, err := db.Frames(ctx, runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no frames stored for run %s", runID)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FRAME\tSTATUS\tEXIT\tLINES\tINPUT\tERROR")
	for _, F := range frames {
		input := "-"
		if F.Input != "" {
			input = F.Input.Encoded()[:12]
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\n", F.Frame, F.Status, F.ExitCode, len(F.Output), input, F.Error)
		if showOutput {
			w.Flush()
			for _, l := range F.Output {
				fmt.Println("  " + l)
			}
		}
	}
	return w.Flush()
}

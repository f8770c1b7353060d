/*
 * main.go, part of vorotraj.
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

//vorotraj runs the voro_interfaces++ Voronoi interface analysis over every
//frame of a GROMACS trajectory.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

func main() {
	log.SetFlags(0)
	log.SetPrefix("vorotraj: ")
	rootCmd := &cobra.Command{
		Use:           "vorotraj",
		Short:         "Voronoi interface analysis of molecular dynamics trajectories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print information for every frame")
	rootCmd.AddCommand(newRunCmd(), newConvertCmd(), newFramesCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

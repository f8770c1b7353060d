/*
 * doc.go, part of vorotraj.
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

/*
Package chem is the base package of vorotraj. It provides the atom and topology
structures, reading and writing of GROMACS .gro files, and the interfaces shared
by the trajectory readers and the analysis code.


	**vorotraj Capabilities**


    Reads GROMACS .gro structures and multi-frame .gro trajectories (traj/gro).

    Reads and writes compressed STF trajectories (traj/stf).

    For each frame of a trajectory, feeds the coordinates and the (cubic) box to
	voro_interfaces++, an external Voronoi tessellation program, and collects its
	output (voro).

    Stores per-frame results in an SQLite database (store) and plots time series
	of numeric results (chemplot).

Coordinates are kept in nanometers, as GROMACS writes them. Conversion to the
length unit of the external program happens only in the voro encoder.
*/
package chem

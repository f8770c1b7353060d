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
Package voro runs the voro_interfaces++ program, which finds the interfaces
between groups of atoms from a Voronoi tessellation, over the frames of a trajectory.

For each frame, an Encoder turns the coordinates (nm) into lines of the form

	<atom id> <x> <y> <z>

with ids starting at 1 and positions multiplied by the scale factor (10 by default,
so the program gets A). Only cubic boxes are supported. A Handle builds the command
line, which gives the group bounds and the box to the program, and the Bridge runs
it, with the coordinates in its standard input, streaming its output back.

The Analysis type puts all this together, and collects the results in a Report.
The output of the program is kept as it is. The Report only finds out which lines
are made of numbers, so they can be averaged or plotted along the trajectory.
*/
package voro

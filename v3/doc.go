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
Package v3 implements a Matrix type representing a row-major Nx3 matrix.
A v3.Matrix holds the cartesian coordinates of the atoms of one trajectory
frame. It is based on gonum's Dense type, restricted to 3 columns, with a few
helpers that are handy when moving frames between readers and encoders.

Coordinates are kept in whatever unit the reader produced. The trajectory
readers in vorotraj keep GROMACS' nanometers.
*/
package v3

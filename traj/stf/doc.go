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
Package stf implements the simple trajectory format, a compressed plain-text
trajectory format which is easy to read and write from any language.

Format, as used in vorotraj:

The file is compressed. The compression is chosen from the last letter of the
file name: 'l' lzw, 'z' gzip (e.g. .stz), 'r' raw deflate (.stfr), anything
else (.stf, .sts) z-standard.

A header starts in the first line and ends with a line starting with "**",
one or more spaces, and the number of atoms per frame. Every other header line
is a key=value pair. The key "prec" gives the precision (see below); this
package writes prec=3 by default and also writes units=nm.

After the header, each frame has one line per atom with 3 integers: the x, y
and z coordinates multiplied by 10^prec and rounded. Each frame ends with a
line starting with "*", optionally followed by the 9 elements of the box
matrix, row-major, as floating point numbers.

The "**" sequence is only used to end the header.
*/
package stf

/*
 * stf.go, part of vorotraj.
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

package stf

import (
	"bufio"
	"compress/lzw"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/vorotraj/v3"
)

const (
	defaultPrec = 3 //nm, so 3 decimals is 1/100 of an Angstrom.
	lzwLitwidth = 8
)

//Write!

//StfW is an STF trajectory opened for writing.
type StfW struct {
	f         *os.File
	h         io.WriteCloser
	w         *bufio.Writer
	natoms    int
	filename  string
	writeable bool
	prec      int
}

//NewWriter creates the STF file name for frames of natoms atoms. The header keys
//are written in lexical order; "prec" in the header sets the precision.
//compressionLevel, if given, is passed to the gzip/deflate compressor or
//mapped to a z-standard level.
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	if natoms <= 0 {
		return nil, Error{fmt.Sprintf("Invalid atom number %d", natoms), name, []string{"NewWriter"}, true}
	}
	S := new(StfW)
	S.filename = name
	S.natoms = natoms
	S.prec = defaultPrec
	if p, ok := header["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec < 0 {
			return nil, Error{fmt.Sprintf("Invalid precision '%s'", p), name, []string{"NewWriter"}, true}
		}
		S.prec = prec
	}
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S.h, err = compressor(S.f, name, compressionLevel...)
	if err != nil {
		S.f.Close()
		return nil, Error{"Can't set compression: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S.w = bufio.NewWriter(S.h)
	keys := make([]string, 0, len(header)+2)
	h := map[string]string{"prec": strconv.Itoa(S.prec), "units": "nm"}
	for k, v := range header {
		h[k] = v
	}
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(S.w, "%s=%s\n", k, h[k])
	}
	fmt.Fprintf(S.w, "** %d\n", S.natoms)
	S.writeable = true
	return S, nil
}

func compressor(f io.Writer, name string, level ...int) (io.WriteCloser, error) {
	switch strings.ToLower(name)[len(name)-1] {
	case 'l':
		return lzw.NewWriter(f, lzw.MSB, lzwLitwidth), nil
	case 'z':
		if len(level) > 0 {
			return gzip.NewWriterLevel(f, level[0])
		}
		return gzip.NewWriter(f), nil
	case 'r':
		l := flate.DefaultCompression
		if len(level) > 0 {
			l = level[0]
		}
		return flate.NewWriter(f, l)
	default:
		l := zstd.SpeedBestCompression
		if len(level) > 0 {
			l = zstd.EncoderLevelFromZstd(level[0])
		}
		return zstd.NewWriter(f, zstd.WithEncoderLevel(l))
	}
}

//Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

//WNext writes a frame with the coordinates in coord and, if given, the
//9-element box in box[0].
func (S *StfW) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	v := coord.NVecs()
	if v != S.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	var floats [3]float64
	for i := 0; i < v; i++ {
		floats[0] = coord.At(i, 0)
		floats[1] = coord.At(i, 1)
		floats[2] = coord.At(i, 2)
		if _, err := S.w.WriteString(coordsEncode(floats, S.prec)); err != nil {
			return Error{err.Error(), S.filename, []string{"WNext"}, true}
		}
	}
	var err error
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		_, err = fmt.Fprintf(S.w, "* %.5f %.5f %.5f %.5f %.5f %.5f %.5f %.5f %.5f\n", b[0],
			b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
	} else {
		_, err = S.w.WriteString("*\n")
	}
	if err != nil {
		return Error{err.Error(), S.filename, []string{"WNext"}, true}
	}
	return nil
}

//Close flushes and closes the file. The object can't be used after this call.
func (S *StfW) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.w.Flush()
	if err2 := S.h.Close(); err == nil {
		err = err2
	}
	if err2 := S.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return Error{err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

func coordsEncode(f [3]float64, prec int) string {
	p := math.Pow(10.0, float64(prec))
	var temp [3]int
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * p))
	}
	return fmt.Sprintf("%d %d %d\n", temp[0], temp[1], temp[2])
}

//Read!

//StfR is an STF trajectory opened for reading.
type StfR struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	readable bool
}

//zstd.Decoder's Close doesn't return an error, so it can't be an io.ReadCloser on its own.
type zstdrc struct {
	*zstd.Decoder
}

func (z zstdrc) Close() error {
	z.Decoder.Close()
	return nil
}

func decompressor(r io.Reader, name string) (io.ReadCloser, error) {
	switch strings.ToLower(name)[len(name)-1] {
	case 'l':
		return lzw.NewReader(r, lzw.MSB, lzwLitwidth), nil
	case 'z':
		return gzip.NewReader(r)
	case 'r':
		return flate.NewReader(r), nil
	default:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdrc{d}, nil
	}
}

//New opens a STF trajectory for reading, and returns a pointer
//to the handle, a map with the metadata (or an empty map, if no metadata is found)
//and error or nil.
func New(name string) (*StfR, map[string]string, error) {
	S := new(StfR)
	S.natoms = -1
	S.prec = defaultPrec
	S.filename = name
	m := make(map[string]string)
	var err error
	S.f, err = os.Open(name)
	if err != nil {
		return nil, nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"New"}, true}
	}
	S.dec, err = decompressor(bufio.NewReader(S.f), name)
	if err != nil {
		S.f.Close()
		return nil, nil, Error{"Can't read header " + err.Error(), name, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.dec)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.closeFiles()
			return nil, nil, Error{"Can't read header " + err.Error(), name, []string{"New"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.closeFiles()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", str), name, []string{"New"}, true}
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil {
				S.closeFiles()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s': %s", nat[1], err.Error()), name, []string{"New"}, true}
			}
			if S.natoms <= 0 {
				S.closeFiles()
				return nil, nil, Error{fmt.Sprintf("Invalid atom number %d", S.natoms), name, []string{"New"}, true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			S.closeFiles()
			return nil, nil, Error{"Malformed header line: " + str, name, []string{"New"}, true}
		}
		m[kv[0]] = kv[1]
	}
	if p, ok := m["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec >= 0 {
			S.prec = prec
		} else {
			log.Printf("Invalid precision for trajectory %s. Will assume the default", S.filename)
		}
	}
	S.readable = true
	return S, m, nil
}

//Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *StfR) Readable() bool {
	return S != nil && S.readable
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := math.Pow(10.0, float64(prec))
	s := strings.Fields(str)
	if len(s) < 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: Too few fields: %s", str)
	}
	if len(s) > 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: Too many fields: %s", str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s). Error: %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

//Next puts in the given matrix (c) the coordinates for the next frame of the trajectory
//and, if given, and the information is present, puts the box vector information in box.
//If c is nil, the frame is read and checked, but not kept.
//At the end of the trajectory it returns an error implementing chem.LastFrameError.
func (S *StfR) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.Readable() {
		return Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	if c != nil && c.NVecs() != S.natoms {
		return Error{fmt.Sprintf("Matrix for %d atoms given, frames have %d", c.NVecs(), S.natoms), S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			// EOF is only normal when reading the first atom
			if err == io.EOF && i == 0 && b == "" {
				S.Close()
				return newlastFrameError(S.filename, "Next")
			}
			return Error{ReadError + ": " + err.Error(), S.filename, []string{"Next"}, true}
		}
		if strings.HasPrefix(b, "*") {
			return Error{fmt.Sprintf("%s: frame ended after %d atoms", WrongFormat, i), S.filename, []string{"Next"}, true}
		}
		if err = coordsDecode(strings.TrimSuffix(b, "\n"), &temp, S.prec); err != nil {
			return Error{err.Error(), S.filename, []string{"coordsDecode", "Next"}, true}
		}
		if c == nil {
			continue
		}
		c.SetVec(i, temp[0], temp[1], temp[2])
	}
	s, err := S.h.ReadString('\n')
	if err != nil && s == "" {
		return Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if s[0] != '*' {
		return Error{WrongFormat + ": wrong number of atoms in frame", S.filename, []string{"Next"}, true}
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		fields := strings.Fields(strings.TrimSpace(s))
		if len(fields) >= 10 {
			var errbox error
			for j, v := range fields[1:10] {
				box[0][j], errbox = strconv.ParseFloat(v, 64)
				if errbox != nil {
					break
				}
			}
			//If we got an error reading any of the values, we just set the whole thing to zero
			//and log, no error returned.
			if errbox != nil {
				log.Printf("Failed to read box in a frame from %s", S.filename)
				for i := range box[0] {
					box[0][i] = 0.0
				}
			}
		} else {
			log.Printf("Trajectory file %s does not contain (correct) box information: %s", S.filename, fields)
		}
	}
	return nil
}

func (S *StfR) closeFiles() {
	S.dec.Close()
	S.f.Close()
}

//Close closes the object, and marks it as unreadable
func (S *StfR) Close() {
	if !S.Readable() {
		return
	}
	S.closeFiles()
	S.readable = false
}

//Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}

//Errors

//Error is the general structure for STF trajectory errors. It fullfills chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("stf file %s error: %s", err.filename, err.message)
}

//Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

//Format returns the format of the file (always "stf") associated to the error
func (err Error) Format() string { return "stf" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	UnableToOpen   = "Unable to open file"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the STF file or frame"
)

//lastFrameError implements chem.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

//NormalLastFrameTermination does nothing
func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "stf" }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}

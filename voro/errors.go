/*
 * errors.go, part of vorotraj.
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
	"errors"
	"fmt"
)

//ErrorKind tells apart the different failures of the pipeline.
type ErrorKind int

const (
	//ConfigError: malformed or missing options, mostly the group boundaries.
	ConfigError ErrorKind = iota + 1
	//GeometryError: a box or coordinates the encoder can't handle, like a non-cubic box.
	GeometryError
	//SpawnError: the external program could not be started.
	SpawnError
	//ToolError: the external program ran but failed, or its status could not be obtained.
	ToolError
	//TimeoutError: the external program was killed after the timeout, or the run was cancelled.
	TimeoutError
	//OutputError: the output of the program could not be read or forwarded.
	OutputError
)

func (k ErrorKind) String() string {
	switch k {
	case ConfigError:
		return "configuration error"
	case GeometryError:
		return "geometry error"
	case SpawnError:
		return "spawn error"
	case ToolError:
		return "tool error"
	case TimeoutError:
		return "timeout"
	case OutputError:
		return "output error"
	}
	return "unknown error"
}

//Error is the error type for the voro package. It fullfills chem.Error.
type Error struct {
	message  string
	kind     ErrorKind
	tool     string //the external program involved, if any.
	exitcode int    //only meaningful for ToolErrors
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.tool != "" {
		return fmt.Sprintf("voro: %s (%s): %s", err.kind, err.tool, err.message)
	}
	return fmt.Sprintf("voro: %s: %s", err.kind, err.message)
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical returns true if the whole analysis should stop because of this error.
func (err Error) Critical() bool { return err.critical }

//Kind returns the kind of failure.
func (err Error) Kind() ErrorKind { return err.kind }

//ExitCode returns the exit status of the external program for ToolErrors,
//-1 if there is none.
func (err Error) ExitCode() int { return err.exitcode }

//IsKind returns true if err is, or wraps, a voro Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e Error
	if errors.As(err, &e) {
		return e.kind == kind
	}
	return false
}

func configError(msg string, deco ...string) Error {
	return Error{message: msg, kind: ConfigError, exitcode: -1, deco: deco, critical: true}
}

func geometryError(msg string, deco ...string) Error {
	return Error{message: msg, kind: GeometryError, exitcode: -1, deco: deco, critical: true}
}

/*
 * handle.go, part of vorotraj.
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

//In order to actually run the analysis you need the voro_interfaces++ program,
//which is built on top of the Voro++ library by Chris Rycroft.

package voro

import (
	"bytes"
	"io"
	"os"
	"strings"
)

//DefaultPlaceholder is passed where the program expects an input file name.
//With -stdin the program never opens it.
const DefaultPlaceholder = "file_name_placeholder"

//Handle builds voro_interfaces++ invocations. The program and its options are set
//once, then one command is built per frame.
type Handle struct {
	command     string
	flags       []string
	placeholder string
}

//NewHandle returns a handle with the default settings.
func NewHandle() *Handle {
	H := new(Handle)
	H.SetDefaults()
	return H
}

//SetDefaults uses the program given in $VORO_INTERFACES, or voro_interfaces++ from
//the PATH, reading coordinates from stdin and writing a summary to stdout.
func (H *Handle) SetDefaults() {
	H.command = os.ExpandEnv("$VORO_INTERFACES")
	if H.command == "" {
		H.command = "voro_interfaces++"
	}
	H.flags = []string{"-stdin", "-stdout", "-sum"}
	H.placeholder = DefaultPlaceholder
}

//Command returns the program to be run.
func (H *Handle) Command() string {
	return H.command
}

//SetCommand sets the program to be run. Environment variables in name are expanded.
func (H *Handle) SetCommand(name string) {
	H.command = os.ExpandEnv(name)
}

//SetFlags replaces the flags given before the group bounds.
func (H *Handle) SetFlags(flags []string) {
	H.flags = append([]string(nil), flags...)
}

//Flags returns a copy of the flags given before the group bounds.
func (H *Handle) Flags() []string {
	return append([]string(nil), H.flags...)
}

//SetPlaceholder sets the file name argument that ends the command line.
func (H *Handle) SetPlaceholder(p string) {
	H.placeholder = p
}

//BuildCommand returns the command that processes the frame F with the given groups:
//
//	program [flags] -gp "<groups>" -p 0 L 0 L 0 L placeholder
//
//The group bounds go in a single argument. The coordinates of F go to the standard input.
func (H *Handle) BuildCommand(groups Groups, F *Frame) (*Command, error) {
	if strings.TrimSpace(H.command) == "" {
		return nil, configError("no program to run", "BuildCommand")
	}
	if len(groups) == 0 {
		return nil, configError("no group bounds given", "BuildCommand")
	}
	args := make([]string, 0, len(H.flags)+10)
	args = append(args, H.flags...)
	args = append(args, "-gp", groups.String())
	args = append(args, "-p", "0", F.Edge, "0", F.Edge, "0", F.Edge)
	args = append(args, H.placeholder)
	return &Command{Path: H.command, Args: args, Stdin: F.Input}, nil
}

//Command is one invocation of an external program.
type Command struct {
	Path  string
	Args  []string //not including the program itself
	Stdin []byte
}

//Argv returns the program followed by its arguments.
func (C *Command) Argv() []string {
	return append([]string{C.Path}, C.Args...)
}

//StdinReader returns a new reader over the standard input of the command.
func (C *Command) StdinReader() io.Reader {
	return bytes.NewReader(C.Stdin)
}

//String renders the command line, quoting arguments that need it.
//It is meant for humans, nothing should execute it.
func (C *Command) String() string {
	s := make([]string, 0, len(C.Args)+1)
	for _, v := range C.Argv() {
		s = append(s, shellQuote(v))
	}
	return strings.Join(s, " ")
}

//ShellString renders the command as a shell command line with the standard input
//given as a here-string, the way voro_interfaces++ is usually run by hand.
//For diagnostics only.
func (C *Command) ShellString() string {
	in := strings.TrimSuffix(string(C.Stdin), "\n")
	return C.String() + " <<< " + shellQuote(in)
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>()*?[]#~!{}") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

/*
 * handle_test.go, part of vorotraj.
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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildCommand(Te *testing.T) {
	Te.Setenv("VORO_INTERFACES", "/opt/voro/bin/voro_interfaces++")
	H := NewHandle()
	if H.Command() != "/opt/voro/bin/voro_interfaces++" {
		Te.Errorf("the program was not taken from the environment: %s", H.Command())
	}
	F := &Frame{NAtoms: 2, Input: []byte("1 0 0 0\n2 1 2 3\n"), Edge: "10"}
	C, err := H.BuildCommand(Groups{100, 123}, F)
	if err != nil {
		Te.Fatal(err)
	}
	want := []string{"/opt/voro/bin/voro_interfaces++", "-stdin", "-stdout", "-sum", "-gp", "100 123",
		"-p", "0", "10", "0", "10", "0", "10", "file_name_placeholder"}
	if diff := cmp.Diff(want, C.Argv()); diff != "" {
		Te.Errorf("BuildCommand mismatch (-want +got):\n%s", diff)
	}
	if string(C.Stdin) != string(F.Input) {
		Te.Errorf("unexpected stdin %q", C.Stdin)
	}
	s := C.ShellString()
	if !strings.Contains(s, "-gp '100 123'") || !strings.HasSuffix(s, "<<< '1 0 0 0\n2 1 2 3'") {
		Te.Errorf("unexpected shell rendering %q", s)
	}
}

func TestHandleDefaults(Te *testing.T) {
	Te.Setenv("VORO_INTERFACES", "")
	H := NewHandle()
	if H.Command() != "voro_interfaces++" {
		Te.Errorf("unexpected default program %s", H.Command())
	}
	if diff := cmp.Diff([]string{"-stdin", "-stdout", "-sum"}, H.Flags()); diff != "" {
		Te.Errorf("default flags mismatch (-want +got):\n%s", diff)
	}
	H.SetFlags([]string{"-stdin", "-stdout"})
	H.SetPlaceholder("none")
	C, err := H.BuildCommand(Groups{5}, &Frame{Edge: "3.5"})
	if err != nil {
		Te.Fatal(err)
	}
	want := []string{"-stdin", "-stdout", "-gp", "5", "-p", "0", "3.5", "0", "3.5", "0", "3.5", "none"}
	if diff := cmp.Diff(want, C.Args); diff != "" {
		Te.Errorf("BuildCommand mismatch (-want +got):\n%s", diff)
	}
	H.SetCommand("  ")
	if _, err := H.BuildCommand(Groups{5}, &Frame{Edge: "1"}); !IsKind(err, ConfigError) {
		Te.Errorf("expected a ConfigError for an empty program, got %v", err)
	}
	H.SetCommand("sh")
	if _, err := H.BuildCommand(nil, &Frame{Edge: "1"}); !IsKind(err, ConfigError) {
		Te.Errorf("expected a ConfigError for empty groups, got %v", err)
	}
}

func TestShellQuote(Te *testing.T) {
	for in, want := range map[string]string{
		"":        "''",
		"plain":   "plain",
		"a b":     "'a b'",
		"it's":    `'it'\''s'`,
		"$HOME":   "'$HOME'",
		"x;rm -f": "'x;rm -f'",
	} {
		if got := shellQuote(in); got != want {
			Te.Errorf("shellQuote(%q): expected %s, got %s", in, want, got)
		}
	}
}

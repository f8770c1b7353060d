/*
 * groups_test.go, part of vorotraj.
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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseGroups(Te *testing.T) {
	G, err := ParseGroups("100 123 250")
	if err != nil {
		Te.Fatal(err)
	}
	if diff := cmp.Diff(Groups{100, 123, 250}, G); diff != "" {
		Te.Errorf("ParseGroups mismatch (-want +got):\n%s", diff)
	}
	if G.String() != "100 123 250" {
		Te.Errorf("unexpected rendering %q", G.String())
	}
	G, err = ParseGroups("  7\t 12 ")
	if err != nil {
		Te.Fatal(err)
	}
	if G.String() != "7 12" {
		Te.Errorf("unexpected rendering %q", G.String())
	}
	for _, bad := range []string{"", "   ", "100 90", "100 100", "0 5", "-3 5", "10 x", "1.5"} {
		if _, err := ParseGroups(bad); err == nil {
			Te.Errorf("expected %q to be rejected", bad)
		} else if !IsKind(err, ConfigError) {
			Te.Errorf("%q: expected a ConfigError, got %v", bad, err)
		}
	}
}

func TestGroupsValidate(Te *testing.T) {
	G := Groups{100, 123}
	if err := G.Validate(123); err != nil {
		Te.Error(err)
	}
	if err := G.Validate(200); err != nil {
		Te.Error(err)
	}
	err := G.Validate(120)
	if err == nil || !IsKind(err, ConfigError) {
		Te.Errorf("expected a ConfigError, got %v", err)
	}
	if err := (Groups{}).Validate(10); err == nil {
		Te.Error("empty groups should not validate")
	}
}

func TestGroupsRanges(Te *testing.T) {
	G := Groups{100, 123}
	want := [][2]int{{1, 100}, {101, 123}, {124, 200}}
	if diff := cmp.Diff(want, G.Ranges(200)); diff != "" {
		Te.Errorf("Ranges mismatch (-want +got):\n%s", diff)
	}
	want = [][2]int{{1, 100}, {101, 123}}
	if diff := cmp.Diff(want, G.Ranges(123)); diff != "" {
		Te.Errorf("Ranges mismatch (-want +got):\n%s", diff)
	}
	for id, g := range map[int]int{0: -1, 1: 0, 100: 0, 101: 1, 123: 1, 124: 2, 5000: 2} {
		if got := G.Of(id); got != g {
			Te.Errorf("atom %d: expected group %d, got %d", id, g, got)
		}
	}
}

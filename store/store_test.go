/*
 * store_test.go, part of vorotraj.
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

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	digest "github.com/opencontainers/go-digest"
	"github.com/rmera/vorotraj/voro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	D, err := Open(filepath.Join(t.TempDir(), "vorotraj.db"))
	require.NoError(t, err)
	t.Cleanup(func() { D.Close() })
	return D
}

func TestOpenMigrates(t *testing.T) {
	D := openTest(t)
	v, dirty, err := D.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)

	for _, table := range []string{"runs", "frames"} {
		var name string
		err := D.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}
	//a second migration is a no-op
	require.NoError(t, D.MigrateUp())
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vorotraj.db")
	D, err := Open(path)
	require.NoError(t, err)
	id, err := D.CreateRun(context.Background(), &Run{Tool: "voro_interfaces++", Groups: "3", Scale: 10})
	require.NoError(t, err)
	require.NoError(t, D.Close())

	D, err = Open(path)
	require.NoError(t, err)
	defer D.Close()
	runs, err := D.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
}

func TestRunsAndFrames(t *testing.T) {
	ctx := context.Background()
	D := openTest(t)
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	R := &Run{Tool: "voro_interfaces++", Groups: "100 123", Scale: 10, Structure: "sys.gro", Trajectory: "traj.stf", Started: started}
	id, err := D.CreateRun(ctx, R)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, R.ID)

	input := []byte("1 0 0 0\n2 1 2 3\n")
	ok := &voro.FrameResult{
		Frame:    0,
		Argv:     []string{"voro_interfaces++", "-stdin", "-gp", "100 123"},
		Status:   voro.StatusSuccess,
		ExitCode: 0,
		Output:   []string{"# header", "1 2 3.5"},
		Input:    digest.FromBytes(input),
	}
	failed := &voro.FrameResult{
		Frame:    1,
		Argv:     []string{"voro_interfaces++"},
		Status:   voro.StatusExitFailure,
		ExitCode: 2,
		Input:    digest.FromBytes(input),
		Err:      errors.New("program failed"),
	}
	require.NoError(t, D.SaveFrame(ctx, id, failed))
	require.NoError(t, D.SaveFrame(ctx, id, ok))

	frames, err := D.Frames(ctx, id)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, 0, frames[0].Frame)
	assert.Equal(t, "success", frames[0].Status)
	assert.Equal(t, ok.Argv, frames[0].Argv)
	assert.Equal(t, ok.Output, frames[0].Output)
	assert.Equal(t, digest.FromBytes(input), frames[0].Input)
	assert.Empty(t, frames[0].Error)
	assert.Equal(t, "exit-failure", frames[1].Status)
	assert.Equal(t, 2, frames[1].ExitCode)
	assert.Nil(t, frames[1].Output)
	assert.Equal(t, "program failed", frames[1].Error)

	runs, err := D.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "100 123", runs[0].Groups)
	assert.Equal(t, "traj.stf", runs[0].Trajectory)
	assert.True(t, runs[0].Started.Equal(started))

	//the same frame can't be stored twice for a run
	assert.Error(t, D.SaveFrame(ctx, id, ok))
}

func TestSaveReport(t *testing.T) {
	ctx := context.Background()
	D := openTest(t)
	id, err := D.CreateRun(ctx, &Run{Tool: "sh", Groups: "1", Scale: 10, DryRun: true})
	require.NoError(t, err)
	rep := voro.NewReport()
	for i := 0; i < 3; i++ {
		rep.Add(&voro.FrameResult{Frame: i, Argv: []string{"sh"}, ExitCode: -1})
	}
	require.NoError(t, D.SaveReport(ctx, id, rep))
	frames, err := D.Frames(ctx, id)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	for i, F := range frames {
		assert.Equal(t, i, F.Frame)
		assert.Equal(t, "not-run", F.Status)
		assert.Equal(t, digest.Digest(""), F.Input)
	}
	runs, err := D.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].DryRun)
}

func TestFramesOfUnknownRun(t *testing.T) {
	D := openTest(t)
	frames, err := D.Frames(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, frames)
	//frames need an existing run
	err = D.SaveFrame(context.Background(), "no-such-run", &voro.FrameResult{Frame: 0})
	assert.Error(t, err)
}

/*
 * store.go, part of vorotraj.
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

//Package store keeps the results of trajectory analyses in a SQLite database,
//one row per run and one per frame.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	digest "github.com/opencontainers/go-digest"
	"github.com/rmera/vorotraj/voro"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

//DB is a vorotraj results database.
type DB struct {
	*sql.DB
}

//Open opens, or creates, the database at path, and brings its schema up to date.
func Open(path string) (*DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: can't open %s: %w", path, err)
	}
	D := &DB{db}
	if err := D.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return D, nil
}

func (D *DB) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("store: can't read migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(D.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("store: can't create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("store: can't create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

//MigrateUp applies all pending migrations. The migrate instance is not closed,
//as that would close the database too.
func (D *DB) MigrateUp() error {
	m, err := D.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("store: migration up failed: %w", err)
	}
	return nil
}

//Version returns the schema version, 0 for an empty database.
func (D *DB) Version() (uint, bool, error) {
	m, err := D.newMigrate()
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("store: migrate: "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

//Run describes one analysis of a trajectory.
type Run struct {
	ID         string
	Tool       string
	Groups     string
	Scale      float64
	Structure  string
	Trajectory string
	DryRun     bool
	Started    time.Time
}

//Frame is the stored result of one frame.
type Frame struct {
	RunID    string
	Frame    int
	Status   string
	ExitCode int
	Argv     []string
	Input    digest.Digest
	Output   []string
	Error    string
}

//CreateRun stores R with a new random id, which is set in R and returned.
//A zero R.Started is set to the current time.
func (D *DB) CreateRun(ctx context.Context, R *Run) (string, error) {
	R.ID = uuid.NewString()
	if R.Started.IsZero() {
		R.Started = time.Now().UTC()
	}
	_, err := D.ExecContext(ctx, `INSERT INTO runs (run_id, tool, groups, scale, structure, trajectory, dry_run, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		R.ID, R.Tool, R.Groups, R.Scale, R.Structure, R.Trajectory, R.DryRun, R.Started.Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("store: can't create run: %w", err)
	}
	return R.ID, nil
}

//Runs returns all the runs, oldest first.
func (D *DB) Runs(ctx context.Context) ([]*Run, error) {
	rows, err := D.QueryContext(ctx, `SELECT run_id, tool, groups, scale, structure, trajectory, dry_run, started_at
		FROM runs ORDER BY started_at, run_id`)
	if err != nil {
		return nil, fmt.Errorf("store: can't query runs: %w", err)
	}
	defer rows.Close()
	var ret []*Run
	for rows.Next() {
		R := new(Run)
		var structure, traj sql.NullString
		var started string
		if err := rows.Scan(&R.ID, &R.Tool, &R.Groups, &R.Scale, &structure, &traj, &R.DryRun, &started); err != nil {
			return nil, fmt.Errorf("store: can't read run: %w", err)
		}
		R.Structure = structure.String
		R.Trajectory = traj.String
		if R.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("store: bad start time for run %s: %w", R.ID, err)
		}
		ret = append(ret, R)
	}
	return ret, rows.Err()
}

const insertFrame = `INSERT INTO frames (run_id, frame, status, exit_code, argv, input, output, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func frameArgs(runID string, F *voro.FrameResult) ([]any, error) {
	argv, err := json.Marshal(F.Argv)
	if err != nil {
		return nil, fmt.Errorf("store: can't encode arguments: %w", err)
	}
	var errmsg sql.NullString
	if F.Err != nil {
		errmsg = sql.NullString{String: F.Err.Error(), Valid: true}
	}
	return []any{runID, F.Frame, F.Status.String(), F.ExitCode, string(argv), F.Input.String(), strings.Join(F.Output, "\n"), errmsg}, nil
}

//SaveFrame stores the result of one frame of the run runID.
func (D *DB) SaveFrame(ctx context.Context, runID string, F *voro.FrameResult) error {
	args, err := frameArgs(runID, F)
	if err != nil {
		return err
	}
	if _, err = D.ExecContext(ctx, insertFrame, args...); err != nil {
		return fmt.Errorf("store: can't save frame %d: %w", F.Frame, err)
	}
	return nil
}

//Frames returns the frames of the run runID, in trajectory order.
func (D *DB) Frames(ctx context.Context, runID string) ([]*Frame, error) {
	rows, err := D.QueryContext(ctx, `SELECT frame, status, exit_code, argv, input, output, error
		FROM frames WHERE run_id = ? ORDER BY frame`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: can't query frames: %w", err)
	}
	defer rows.Close()
	var ret []*Frame
	for rows.Next() {
		F := &Frame{RunID: runID}
		var argv, input, output string
		var errmsg sql.NullString
		if err := rows.Scan(&F.Frame, &F.Status, &F.ExitCode, &argv, &input, &output, &errmsg); err != nil {
			return nil, fmt.Errorf("store: can't read frame: %w", err)
		}
		if err := json.Unmarshal([]byte(argv), &F.Argv); err != nil {
			return nil, fmt.Errorf("store: bad arguments in frame %d: %w", F.Frame, err)
		}
		if input != "" {
			if F.Input, err = digest.Parse(input); err != nil {
				return nil, fmt.Errorf("store: bad input digest in frame %d: %w", F.Frame, err)
			}
		}
		if output != "" {
			F.Output = strings.Split(output, "\n")
		}
		F.Error = errmsg.String
		ret = append(ret, F)
	}
	return ret, rows.Err()
}

//SaveReport stores every frame of the report under runID, in one transaction.
func (D *DB) SaveReport(ctx context.Context, runID string, R *voro.Report) error {
	tx, err := D.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: can't begin transaction: %w", err)
	}
	defer tx.Rollback() //no-op after Commit
	stmt, err := tx.PrepareContext(ctx, insertFrame)
	if err != nil {
		return fmt.Errorf("store: can't prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, F := range R.Frames() {
		args, err := frameArgs(runID, F)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("store: can't save frame %d: %w", F.Frame, err)
		}
	}
	return tx.Commit()
}

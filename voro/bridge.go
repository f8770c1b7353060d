/*
 * bridge.go, part of vorotraj.
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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

//Status is the outcome of one call to an external program.
type Status int

const (
	StatusNotRun       Status = iota //dry runs, and frames never sent to the program.
	StatusSuccess                    //the program exited with 0.
	StatusExitFailure                //the program exited with a non-zero status. Its output is still valid.
	StatusSpawnFailure               //the program could not be started. Nothing was read.
	StatusTimeout                    //the program was killed after the timeout, or the call was cancelled.
)

func (s Status) String() string {
	switch s {
	case StatusNotRun:
		return "not-run"
	case StatusSuccess:
		return "success"
	case StatusExitFailure:
		return "exit-failure"
	case StatusSpawnFailure:
		return "spawn-failure"
	case StatusTimeout:
		return "timeout"
	}
	return "unknown"
}

//BridgeOptions sets the limits of the calls to the external program.
type BridgeOptions struct {
	ChunkSize  int           //maximum number of bytes read from the program's output at once.
	Timeout    time.Duration //0 means no timeout.
	WaitDelay  time.Duration //how long to wait for the output pipes after the program is killed.
	StderrTail int           //bytes of the program's standard error kept for error messages.
}

//DefaultBridgeOptions returns chunks of 4096 bytes and no timeout.
func DefaultBridgeOptions() *BridgeOptions {
	return &BridgeOptions{ChunkSize: 4096, WaitDelay: 2 * time.Second, StderrTail: 2048}
}

//Result tells what happened in a call to the external program.
type Result struct {
	Status   Status
	ExitCode int    //-1 if the program didn't exit normally.
	Bytes    int64  //bytes forwarded to the sink.
	Chunks   int    //number of writes to the sink.
	Stderr   string //the last bytes the program wrote to its standard error.
}

//Bridge runs external programs and streams their output. Each call
//starts one process and waits for it, nothing is shared between calls.
type Bridge struct {
	opts BridgeOptions
}

//NewBridge returns a bridge with the given options, or the default ones if opts is nil.
func NewBridge(opts *BridgeOptions) *Bridge {
	if opts == nil {
		opts = DefaultBridgeOptions()
	}
	B := &Bridge{opts: *opts}
	if B.opts.ChunkSize < 16 {
		B.opts.ChunkSize = 4096
	}
	if B.opts.StderrTail <= 0 {
		B.opts.StderrTail = 2048
	}
	return B
}

//Run executes C, feeding it C.Stdin, and writes its standard output to sink in
//chunks of at most ChunkSize bytes, ending at newlines whenever a line fits in a chunk.
//It returns when the program has exited and all its output has been forwarded.
//The Result is never nil. The error is a voro Error of kind SpawnError, ToolError,
//TimeoutError or OutputError, or nil if the program exited with 0.
func (B *Bridge) Run(ctx context.Context, C *Command, sink io.Writer) (*Result, error) {
	res := &Result{Status: StatusNotRun, ExitCode: -1}
	if B.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, B.opts.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, C.Path, C.Args...)
	cmd.Stdin = C.StdinReader()
	stderr := &tail{max: B.opts.StderrTail}
	cmd.Stderr = stderr
	cmd.WaitDelay = B.opts.WaitDelay
	setKill(cmd)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		res.Status = StatusSpawnFailure
		return res, Error{message: err.Error(), kind: SpawnError, tool: C.Path, exitcode: -1, deco: []string{"Run"}}
	}
	if err := cmd.Start(); err != nil {
		if ctxerr := ctx.Err(); ctxerr != nil {
			res.Status = StatusTimeout
			return res, Error{message: "program not started: " + ctxerr.Error(), kind: TimeoutError, tool: C.Path, exitcode: -1, deco: []string{"Run"}}
		}
		res.Status = StatusSpawnFailure
		return res, Error{message: fmt.Sprintf("can't start program: %v", err), kind: SpawnError, tool: C.Path, exitcode: -1, deco: []string{"Run"}}
	}
	var readerr, sinkerr error
	r := bufio.NewReaderSize(stdout, B.opts.ChunkSize)
	for {
		chunk, err := r.ReadSlice('\n')
		if len(chunk) > 0 {
			res.Bytes += int64(len(chunk))
			res.Chunks++
			//If the sink fails we keep reading, so the program doesn't block on a full pipe.
			if sinkerr == nil {
				_, sinkerr = sink.Write(chunk)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil {
			if err != io.EOF {
				readerr = err
			}
			break
		}
	}
	waiterr := cmd.Wait()
	res.Stderr = stderr.String()
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if ctxerr := ctx.Err(); ctxerr != nil && (waiterr != nil || res.ExitCode != 0) {
		res.Status = StatusTimeout
		msg := "program killed after the timeout"
		if !errors.Is(ctxerr, context.DeadlineExceeded) {
			msg = "program killed: " + ctxerr.Error()
		}
		return res, Error{message: msg, kind: TimeoutError, tool: C.Path, exitcode: res.ExitCode, deco: []string{"Run"}}
	}
	var exiterr *exec.ExitError
	switch {
	case errors.As(waiterr, &exiterr):
		res.Status = StatusExitFailure
		msg := fmt.Sprintf("program failed: %s", exiterr.ProcessState)
		if res.Stderr != "" {
			msg += ": " + lastLine(res.Stderr)
		}
		return res, Error{message: msg, kind: ToolError, tool: C.Path, exitcode: res.ExitCode, deco: []string{"Run"}}
	case waiterr != nil && res.ExitCode != 0:
		//We could not obtain the exit status. What was read is kept.
		res.Status = StatusExitFailure
		return res, Error{message: fmt.Sprintf("can't get the program status: %v", waiterr), kind: ToolError, tool: C.Path, exitcode: res.ExitCode, deco: []string{"Run"}}
	}
	res.Status = StatusSuccess
	switch {
	case readerr != nil:
		return res, Error{message: fmt.Sprintf("error reading the program output: %v", readerr), kind: OutputError, tool: C.Path, exitcode: res.ExitCode, deco: []string{"Run"}}
	case sinkerr != nil:
		return res, Error{message: fmt.Sprintf("error forwarding the program output: %v", sinkerr), kind: OutputError, tool: C.Path, exitcode: res.ExitCode, deco: []string{"Run"}}
	case waiterr != nil:
		//exited with 0 but exec reported an I/O problem, like a pipe left open by a child process.
		return res, Error{message: waiterr.Error(), kind: OutputError, tool: C.Path, exitcode: res.ExitCode, deco: []string{"Run"}}
	}
	return res, nil
}

//tail keeps the last max bytes written to it.
type tail struct {
	max int
	buf []byte
}

func (t *tail) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = append(t.buf[:0], t.buf[len(t.buf)-t.max:]...)
	}
	return len(p), nil
}

func (t *tail) String() string { return string(t.buf) }

func lastLine(s string) string {
	end := len(s)
	for end > 0 && (s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	start := end
	for start > 0 && s[start-1] != '\n' {
		start--
	}
	return s[start:end]
}

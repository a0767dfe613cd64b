// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command kernsim runs the kernel's object and wait subsystem under
// emulation: it builds a static object table with two channel pairs and
// two wait groups, then runs the wait-group initiator and handler user
// programs as emulated user threads over the syscall surface.  The
// process exits with the status the user programs shut the system down
// with, so it doubles as an end-to-end test target.
package main

import "fmt"
import "time"

import "v.io/x/lib/cmd/flagvar"
import "v.io/x/lib/cmdline"
import "v.io/x/lib/vlog"

var cmdKernSim = &cmdline.Command{
	Name:   "kernsim",
	Short:  "Run the emulated kernel wait-group scenario",
	Long: `
Command kernsim builds an emulated kernel (two IPC channel pairs, two
wait groups, a handler process and an initiator process) and runs the
wait-group user programs against it, exiting with the shutdown status.
`,
	Runner: cmdline.RunnerFunc(runKernSim),
}

var flags struct {
	Timeout time.Duration `cmdline:"timeout,10s,overall deadline for the user programs"`
	Trace   bool          `cmdline:"trace,false,trace every syscall to the log"`
}

func main() {
	if err := flagvar.RegisterFlagsInStruct(&cmdKernSim.Flags, "cmdline", &flags, nil, nil); err != nil {
		panic(err)
	}
	cmdline.Main(cmdKernSim)
}

func runKernSim(env *cmdline.Env, args []string) error {
	if flags.Trace {
		if err := vlog.Log.Configure(vlog.Level(2), vlog.LogToStderr(true)); err != nil {
			return err
		}
	}
	code := runSimulation(flags.Timeout)
	if code != 0 {
		fmt.Fprintf(env.Stderr, "FAILED: status %d\n", code)
		return cmdline.ErrExitCode(int(code))
	}
	fmt.Fprintln(env.Stdout, "PASSED")
	return nil
}

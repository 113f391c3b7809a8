package main

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })

	Version = "0.1.0-test"
	GitCommit = "abc123"

	buf := &bytes.Buffer{}
	versionCmd.SetOut(buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)

	output := buf.String()
	for _, want := range []string{"Dashgate 0.1.0-test", "Git Commit: abc123", runtime.Version()} {
		if !strings.Contains(output, want) {
			t.Errorf("output = %q, want it to contain %q", output, want)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"run": false, "version": false, "apps": false, "validate": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}

	sub := map[string]bool{}
	for _, c := range appsCmd.Commands() {
		sub[c.Name()] = true
	}
	for _, name := range []string{"put", "list", "rm", "import"} {
		if !sub[name] {
			t.Errorf("apps subcommand %q not registered", name)
		}
	}
}

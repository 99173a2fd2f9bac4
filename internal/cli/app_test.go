// pattern: Functional Core
package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// newTestApp returns an app whose output and exit code are captured.
func newTestApp() (*App, *bytes.Buffer, *bytes.Buffer, *int) {
	app := NewApp("1.0.0")
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := -1
	app.Stdout = stdout
	app.Stderr = stderr
	app.ExitFunc = func(c int) { code = c }
	return app, stdout, stderr, &code
}

func TestApp_Execute_NoArgs_ReturnsTrueForTUI(t *testing.T) {
	app, _, _, _ := newTestApp()
	if !app.Execute(nil) {
		t.Error("Execute(nil) returned false, want true")
	}
}

func TestApp_Execute_Dispatches(t *testing.T) {
	app, _, _, code := newTestApp()
	var passedArgs []string
	app.AddCommand(&Command{
		Name:  "patch",
		Usage: "Usage: boost-installer patch <app>",
		Run: func(args []string) error {
			passedArgs = args
			return nil
		},
	})

	if app.Execute([]string{"patch", "ComfyUI", "Fooocus"}) {
		t.Error("Execute with command returned true, want false")
	}
	if len(passedArgs) != 2 || passedArgs[0] != "ComfyUI" || passedArgs[1] != "Fooocus" {
		t.Errorf("Command received args %v", passedArgs)
	}
	if *code != -1 {
		t.Errorf("ExitFunc called with %d on success", *code)
	}
}

func TestApp_Execute_CommandHelp_PrintsUsage(t *testing.T) {
	app, _, stderr, _ := newTestApp()
	runCalled := false
	app.AddCommand(&Command{
		Name:  "remove",
		Usage: "Usage: boost-installer remove <app>",
		Run: func(args []string) error {
			runCalled = true
			return nil
		},
	})

	for _, helpFlag := range []string{"--help", "-h"} {
		t.Run(helpFlag, func(t *testing.T) {
			stderr.Reset()
			app.Execute([]string{"remove", "x", helpFlag})
			if runCalled {
				t.Error("Run was called, should have printed usage instead")
			}
			if !strings.Contains(stderr.String(), "Usage: boost-installer remove") {
				t.Errorf("usage not printed, got %q", stderr.String())
			}
		})
	}
}

func TestApp_Execute_RunError_ExitsWithCode1(t *testing.T) {
	app, _, stderr, code := newTestApp()
	app.AddCommand(&Command{
		Name: "scan",
		Run:  func(args []string) error { return errors.New("root path not found") },
	})

	app.Execute([]string{"scan"})

	if *code != 1 {
		t.Errorf("exit code = %d, want 1", *code)
	}
	if stderr.String() != "error: root path not found\n" {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestApp_Execute_UnknownCommand_ExitsWithCode1(t *testing.T) {
	app, _, stderr, code := newTestApp()
	app.AddCommand(&Command{Name: "scan", Summary: "List apps", Run: func([]string) error { return nil }})

	if app.Execute([]string{"frobnicate"}) {
		t.Error("unknown command should not launch the TUI")
	}
	if *code != 1 {
		t.Errorf("exit code = %d, want 1", *code)
	}
	if !strings.Contains(stderr.String(), `unknown command "frobnicate"`) || !strings.Contains(stderr.String(), "scan") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestApp_PrintHelp_ListsCommandsInOrder(t *testing.T) {
	app, stdout, _, _ := newTestApp()
	for _, name := range []string{"scan", "patch", "remove"} {
		app.AddCommand(&Command{Name: name, Summary: name + " summary"})
	}

	app.Execute([]string{"help"})

	out := stdout.String()
	iScan, iPatch, iRemove := strings.Index(out, "scan"), strings.Index(out, "patch"), strings.Index(out, "remove")
	if iScan < 0 || iPatch < iScan || iRemove < iPatch {
		t.Errorf("commands missing or out of order:\n%s", out)
	}
	if !strings.Contains(out, "Launch interactive TUI") {
		t.Error("help missing TUI line")
	}
}

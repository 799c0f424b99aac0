package config

import (
	"bytes"
	"testing"
)

func captureExit(t *testing.T) (*bytes.Buffer, *int) {
	t.Helper()
	var buf bytes.Buffer
	code := -1
	prevStderr, prevExit := exitStderr, exitFunc
	exitStderr = &buf
	exitFunc = func(c int) { code = c }
	t.Cleanup(func() {
		exitStderr, exitFunc = prevStderr, prevExit
	})
	return &buf, &code
}

func TestExitfWritesMessageAndExitsWithCode1(t *testing.T) {
	buf, code := captureExit(t)

	Exitf("fatal: %s", "something broke")

	if *code != 1 {
		t.Fatalf("exit code = %d, want 1", *code)
	}
	if got, want := buf.String(), "fatal: something broke\n"; got != want {
		t.Fatalf("stderr = %q, want %q", got, want)
	}
}

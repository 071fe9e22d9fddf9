package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.hy")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRootCmdEmitAsm(t *testing.T) {
	path := writeSource(t, "return(42);")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--keep-asm", "--emit-asm", path})

	require.NoError(t, root.Execute())

	asmPath := path[:len(path)-len(filepath.Ext(path))] + ".s"
	require.FileExists(t, asmPath)
}

func TestRootCmdVerboseReportsStats(t *testing.T) {
	path := writeSource(t, "let x = 1; return(x);")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--keep-asm", "--emit-asm", "--verbose", path})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "build ")
	assert.Contains(t, out.String(), "tokens:")
}

func TestRootCmdReportsSemanticDiagnostic(t *testing.T) {
	path := writeSource(t, "return(y);")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--emit-asm", path})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, out.String(), "does not exist")
}

func TestRootCmdRequiresExactlyOneArg(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{})

	err := root.Execute()
	require.Error(t, err)
}

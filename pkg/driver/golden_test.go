package driver

import (
	"bytes"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

// requireToolchain skips a test when nasm or ld aren't on PATH: assembling
// and linking are outside the compiler core's responsibility (spec.md
// §6.1) and may not be present in every environment these tests run in.
func requireToolchain(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("nasm"); err != nil {
		t.Skip("nasm not found on PATH")
	}
	if _, err := exec.LookPath("ld"); err != nil {
		t.Skip("ld not found on PATH")
	}
}

// runScenario builds src end to end and returns the executed program's
// exit status, covering spec.md §8's "End-to-end scenarios" table.
func runScenario(t *testing.T, src string) int {
	t.Helper()
	requireToolchain(t)

	path := writeSource(t, src)
	res, err := Build(path, Options{})
	require.NoError(t, err)

	cmd := exec.Command(res.OutputPath)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	runErr := cmd.Run()
	if runErr == nil {
		return 0
	}
	exitErr, ok := runErr.(*exec.ExitError)
	require.True(t, ok, "unexpected run error: %v (%s)", runErr, out.String())
	return exitErr.ExitCode()
}

func TestScenarioPlainReturn(t *testing.T) {
	require.Equal(t, 42, runScenario(t, "return(42);"))
}

func TestScenarioLetAndAdd(t *testing.T) {
	require.Equal(t, 42, runScenario(t, "let x = 10; let y = 32; return(x + y);"))
}

func TestScenarioPrecedence(t *testing.T) {
	require.Equal(t, 14, runScenario(t, "let x = 2; let y = 3; return(x + y * 4);"))
}

func TestScenarioParentheses(t *testing.T) {
	require.Equal(t, 44, runScenario(t, "let x = 20; let y = 2; return((x + y) * 2);"))
}

func TestScenarioIfElse(t *testing.T) {
	require.Equal(t, 7, runScenario(t, "let x = 0; if (1) { x = 7; } else { x = 9; } return(x);"))
}

func TestScenarioIfElifElifElse(t *testing.T) {
	src := "let x = 0; if (0) { x = 1; } elif (0) { x = 2; } elif (1) { x = 3; } else { x = 4; } return(x);"
	require.Equal(t, 3, runScenario(t, src))
}

func TestScenarioDuplicateBindingFails(t *testing.T) {
	requireToolchain(t)
	path := writeSource(t, "let x = 1; let x = 2;")
	_, err := Build(path, Options{})
	require.Error(t, err)
}

func TestScenarioUndeclaredReadFails(t *testing.T) {
	requireToolchain(t)
	path := writeSource(t, "return(y);")
	_, err := Build(path, Options{})
	require.Error(t, err)
}

func TestScenarioMissingParensFails(t *testing.T) {
	requireToolchain(t)
	path := writeSource(t, "return 1;")
	_, err := Build(path, Options{})
	require.Error(t, err)
}

func TestScenarioMissingSemicolonFails(t *testing.T) {
	requireToolchain(t)
	path := writeSource(t, "return(1)")
	_, err := Build(path, Options{})
	require.Error(t, err)
}

func TestScenarioDefaultExitZeroWithoutReturn(t *testing.T) {
	require.Equal(t, 0, runScenario(t, "let x = 1;"))
}

func TestScenarioOutputIsExecutable(t *testing.T) {
	requireToolchain(t)
	path := writeSource(t, "return(0);")
	res, err := Build(path, Options{})
	require.NoError(t, err)
	info, err := os.Stat(res.OutputPath)
	require.NoError(t, err)
	require.NotEqual(t, 0, info.Mode().Perm()&0o111)
}

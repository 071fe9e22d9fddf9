package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-lang/hydroc/pkg/diagnostics"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.hy")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestBuildEmitAsmOnlyWritesAssembly(t *testing.T) {
	path := writeSource(t, "return(42);")
	res, err := Build(path, Options{EmitAsmOnly: true, KeepAsm: true})
	require.NoError(t, err)
	require.FileExists(t, res.AsmPath)

	content, err := os.ReadFile(res.AsmPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "global _start")
	assert.Contains(t, string(content), "; hydroc build ")
}

func TestBuildUsesSourceStemAsDefaultOutput(t *testing.T) {
	path := writeSource(t, "return(1);")
	res, err := Build(path, Options{EmitAsmOnly: true, KeepAsm: true})
	require.NoError(t, err)
	wantStem := path[:len(path)-len(filepath.Ext(path))]
	assert.Equal(t, wantStem, res.OutputPath)
	assert.Equal(t, wantStem+".s", res.AsmPath)
}

func TestBuildHonorsExplicitOutputPath(t *testing.T) {
	path := writeSource(t, "return(1);")
	dir := filepath.Dir(path)
	out := filepath.Join(dir, "custom-binary")
	res, err := Build(path, Options{EmitAsmOnly: true, KeepAsm: true, OutputPath: out})
	require.NoError(t, err)
	assert.Equal(t, out, res.OutputPath)
	assert.Equal(t, out+".s", res.AsmPath)
}

func TestBuildVerboseReportsStats(t *testing.T) {
	path := writeSource(t, "let x = 1; return(x);")
	res, err := Build(path, Options{EmitAsmOnly: true, KeepAsm: true, Verbose: true})
	require.NoError(t, err)
	require.NotNil(t, res.Stats)
	assert.NotEmpty(t, res.Stats.BuildID)
	assert.Greater(t, res.Stats.TokenCount, 0)
	assert.Greater(t, res.Stats.NodeCount, 0)
}

func TestBuildEmitAsmOnlyKeepsAsmWithoutKeepAsm(t *testing.T) {
	// EmitAsmOnly always keeps the .s file regardless of KeepAsm, since it
	// is the only build artifact produced.
	path := writeSource(t, "return(1);")
	res, err := Build(path, Options{EmitAsmOnly: true, KeepAsm: false})
	require.NoError(t, err)
	assert.FileExists(t, res.AsmPath)
}

func TestBuildPropagatesLexicalDiagnostic(t *testing.T) {
	path := writeSource(t, "let x = 1 @ 2;")
	_, err := Build(path, Options{EmitAsmOnly: true})
	require.Error(t, err)
	d, ok := diagnostics.As(err)
	require.True(t, ok)
	assert.Equal(t, diagnostics.PhaseLexer, d.Phase)
}

func TestBuildPropagatesSemanticDiagnostic(t *testing.T) {
	path := writeSource(t, "return(y);")
	_, err := Build(path, Options{EmitAsmOnly: true})
	require.Error(t, err)
	d, ok := diagnostics.As(err)
	require.True(t, ok)
	assert.Equal(t, diagnostics.CodeUndeclaredIdentifier, d.Code)
}

func TestBuildMissingSourceFileIsReported(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "missing.hy"), Options{EmitAsmOnly: true})
	require.Error(t, err)
}

// Package driver orchestrates a full build: read source, tokenize, parse,
// generate assembly, then (optionally) invoke an external assembler and
// linker to produce an executable. This mirrors the teacher's cmd/smog
// runFile/compileFile split between "do the compiler work" and "act on the
// result", generalized into a package the CLI layer (cmd/hydroc) can call
// without duplicating orchestration logic across subcommands.
//
// Assembling and linking are explicitly outside the compiler core's
// responsibility (spec.md §6.1) and may be replaced; this package shells
// out to nasm and ld via os/exec, the same way
// original_source/src/main.cpp calls system("nasm ...") and
// system("ld ...").
package driver

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hydro-lang/hydroc/pkg/codegen"
	"github.com/hydro-lang/hydroc/pkg/diagnostics"
	"github.com/hydro-lang/hydroc/pkg/lexer"
	"github.com/hydro-lang/hydroc/pkg/parser"
)

// Options controls one Build invocation. Zero value is a minimal build:
// assemble and link to an executable named after the source file, keep no
// intermediate files, stay quiet.
type Options struct {
	// OutputPath overrides the default executable path (source path with
	// its extension stripped).
	OutputPath string
	// KeepAsm leaves the generated .s file next to the output instead of
	// removing it once nasm has consumed it.
	KeepAsm bool
	// EmitAsmOnly stops after writing the .s file; nasm and ld are never
	// invoked.
	EmitAsmOnly bool
	// Verbose reports build statistics (node/token counts, timings,
	// output size) to Stats after a successful build.
	Verbose bool
}

// Stats carries the human-readable build statistics produced when
// Options.Verbose is set.
type Stats struct {
	BuildID      string
	SourceBytes  string
	TokenCount   int
	NodeCount    int
	AsmBytes     string
	Elapsed      time.Duration
	OutputPath   string
}

// Result is everything a caller needs after a successful Build.
type Result struct {
	AsmPath    string
	OutputPath string
	Stats      *Stats // nil unless Options.Verbose
}

// Build reads sourcePath, compiles it, and (unless EmitAsmOnly) produces a
// native executable. Every error returned is either a *diagnostics.Diagnostic
// (lexical/syntactic/semantic) or a file I/O or toolchain failure wrapped
// with context via diagnostics.Wrap / pkg/errors.
func Build(sourcePath string, opts Options) (*Result, error) {
	start := time.Now()

	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, errors.Wrap(err, "reading source file")
	}

	tokens, err := lexer.Tokenize(string(src))
	if err != nil {
		return nil, err
	}

	p := parser.New(tokens)
	prog, err := p.Parse()
	if err != nil {
		return nil, err
	}

	asm, err := codegen.Generate(prog)
	if err != nil {
		return nil, err
	}

	buildID := uuid.NewString()
	asm = fmt.Sprintf("; hydroc build %s\n", buildID) + asm

	asmPath := asmPathFor(sourcePath, opts)
	if err := os.WriteFile(asmPath, []byte(asm), 0o644); err != nil {
		return nil, errors.Wrap(err, "writing assembly file")
	}

	outPath := outputPathFor(sourcePath, opts)

	res := &Result{AsmPath: asmPath, OutputPath: outPath}

	if !opts.EmitAsmOnly {
		if err := assembleAndLink(asmPath, outPath); err != nil {
			return nil, err
		}
		if !opts.KeepAsm {
			_ = os.Remove(asmPath)
		}
	}

	if opts.Verbose {
		res.Stats = &Stats{
			BuildID:     buildID,
			SourceBytes: humanize.Bytes(uint64(len(src))),
			TokenCount:  len(tokens),
			NodeCount:   p.NodeCount(),
			AsmBytes:    humanize.Bytes(uint64(len(asm))),
			Elapsed:     time.Since(start),
			OutputPath:  outPath,
		}
	}

	return res, nil
}

// Run builds sourcePath (reusing Build) and then executes the resulting
// binary, propagating its exit status to the caller (supplemented feature,
// SPEC_FULL.md §3: a "run" mode for fast exit-code-fidelity checks).
func Run(sourcePath string, opts Options, args []string, stdout, stderr io.Writer) (int, error) {
	opts.EmitAsmOnly = false
	res, err := Build(sourcePath, opts)
	if err != nil {
		return 1, err
	}
	cmd := exec.Command(res.OutputPath, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	runErr := cmd.Run()
	if runErr == nil {
		return 0, nil
	}
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return 1, errors.Wrap(runErr, "running compiled program")
}

func asmPathFor(sourcePath string, opts Options) string {
	base := outputPathFor(sourcePath, opts)
	return base + ".s"
}

func outputPathFor(sourcePath string, opts Options) string {
	if opts.OutputPath != "" {
		return opts.OutputPath
	}
	ext := filepath.Ext(sourcePath)
	return strings.TrimSuffix(sourcePath, ext)
}

// assembleAndLink shells out to nasm (ELF64 object) and ld (static-ish
// link to a runnable executable), following
// original_source/src/main.cpp's system("nasm -felf64 ...") /
// system("ld ...") pipeline.
func assembleAndLink(asmPath, outPath string) error {
	objPath := strings.TrimSuffix(asmPath, ".s") + ".o"

	nasm := exec.Command("nasm", "-felf64", asmPath, "-o", objPath)
	if out, err := nasm.CombinedOutput(); err != nil {
		return diagnostics.Wrap(errors.Wrap(err, "nasm failed"), string(out))
	}
	defer os.Remove(objPath)

	ld := exec.Command("ld", "-o", outPath, objPath)
	if out, err := ld.CombinedOutput(); err != nil {
		return diagnostics.Wrap(errors.Wrap(err, "ld failed"), string(out))
	}
	return nil
}

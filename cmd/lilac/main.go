// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ida-lang/lilac/ast"
	"github.com/ida-lang/lilac/builder"
	"github.com/ida-lang/lilac/lilaerr"
	"github.com/ida-lang/lilac/ltac"
	"github.com/ida-lang/lilac/transform"
)

var command = &cobra.Command{
	Use:  "lilac ast.json [-o output]",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target, _ := cmd.PersistentFlags().GetString("target")
		useLibc, _ := cmd.PersistentFlags().GetBool("use-libc")
		dumpLtac, _ := cmd.PersistentFlags().GetBool("dump-ltac")
		dumpData, _ := cmd.PersistentFlags().GetBool("dump-data")
		output, _ := cmd.PersistentFlags().GetString("output")

		tree, err := readTree(args[0])
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		tree.Target = ast.Target(target)

		file, err := compile(tree, useLibc)
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		var out *os.File
		if output == "" {
			out = os.Stdout
		} else {
			f, err := os.Create(output)
			if err != nil {
				_, _ = fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}

		if dumpLtac {
			fmt.Fprint(out, file.Dump())
			return
		}
		if dumpData {
			for _, d := range file.Data {
				fmt.Fprintf(out, "%s: %s\n", d.Name, d.Value)
			}
			return
		}
		if err := json.NewEncoder(out).Encode(file); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

// readTree loads the JSON-encoded ast.Tree produced by an upstream
// frontend; this core never parses Ida/Lila source itself.
func readTree(path string) (*ast.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tree ast.Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &tree, nil
}

// compile runs the builder and the target-independent transform pipeline:
// builtin lowering always, RISC normalization on every target but x86_64,
// RISC-V quirks on riscv64 only (§4).
func compile(tree *ast.Tree, useLibc bool) (*ltac.File, error) {
	errs := lilaerr.New()
	b := builder.New(tree.FileName, errs)
	file, err := b.Build(tree)
	if err != nil {
		errs.Report(os.Stderr)
		return nil, err
	}

	file = transform.Builtin(file, tree.Target, useLibc, b.MallocSizes)
	if tree.Target != ast.X86_64 {
		file = transform.RiscNormalize(file)
	}
	if tree.Target == ast.RISCV64 {
		file = transform.RiscVQuirks(file)
	}
	return file, nil
}

// defaultTarget maps the host GOARCH to one of the three target names this
// core understands, so running without -t cross-compiles for nothing.
func defaultTarget() string {
	switch runtime.GOARCH {
	case "arm64":
		return string(ast.AArch64)
	case "riscv64":
		return string(ast.RISCV64)
	default:
		return string(ast.X86_64)
	}
}

func init() {
	command.PersistentFlags().StringP("target", "t", defaultTarget(), "target architecture (x86_64, aarch64, riscv64)")
	command.PersistentFlags().Bool("use-libc", false, "lower builtins to libc calls instead of raw syscalls")
	command.PersistentFlags().Bool("dump-ltac", false, "write the textual LTAC dump instead of JSON")
	command.PersistentFlags().Bool("dump-data", false, "write the data section instead of JSON")
	command.PersistentFlags().StringP("output", "o", "", "output file (default: stdout)")
}

func main() {
	if err := command.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

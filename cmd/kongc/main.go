// Command kongc is the kong shader compiler CLI.
//
// Usage:
//
//	kongc [options] <input.kong>
//
// Examples:
//
//	kongc -target hlsl shader.kong           # HLSL to ./
//	kongc -target spirv -o out shader.kong   # SPIR-V + C embedding to out/
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/kong-shade/kongc/compiler"
)

var (
	target      = flag.String("target", "spirv", "output target: hlsl, msl, glsl, wgsl, cpu, spirv")
	outputDir   = flag.String("o", ".", "output directory")
	versionFlag = flag.Bool("version", false, "print version")
)

// version returns the module version from build info.
func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("kongc version %s\n", version())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}
	inputPath := args[0]

	selected, err := compiler.ParseTarget(*target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	c := compiler.New()
	if err := c.Compile(inputPath, string(source)); err != nil {
		// One line: "<file>:<line>:<col>: <message>".
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	outputs, err := c.Emit(selected)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for _, output := range outputs {
		path := filepath.Join(*outputDir, output.Filename)
		if err := os.WriteFile(path, output.Data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d bytes)\n", path, len(output.Data))
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: kongc [options] <input.kong>\n\n")
	flag.PrintDefaults()
}

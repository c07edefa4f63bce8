// The iamf-tools composition root wires usermetadata -> wav -> codec ->
// parameters -> timing -> sequencer into one runnable encode. The teacher's
// own main.go is a documentation-only no-op that blank-imports every
// library package; a real composition is needed here, so this file plays
// that role instead, while keeping command-line flag parsing itself out of
// scope: three positional arguments (config path, WAV directory, output
// path) with defaults, read from a bare os.Args, no flag package, no cobra.
package main

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/BrandenAvalonCx/iamf-tools/logger"
)

func main() {
	cfgPath := "iamf.yaml"
	wavDir := "."
	outPath := "out.iamf"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		wavDir = os.Args[2]
	}
	if len(os.Args) > 3 {
		outPath = os.Args[3]
	}

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		logger.E(nil, "read config:", err)
		os.Exit(1)
	}
	cfg, err := decodeConfig(data)
	if err != nil {
		logger.E(nil, "decode config:", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		logger.E(nil, "create output:", err)
		os.Exit(1)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	if err := Encode(cfg, wavDir, w); err != nil {
		logger.E(nil, "encode:", err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		logger.E(nil, "flush output:", err)
		os.Exit(1)
	}
	logger.T(nil, "wrote", outPath, "from", cfgPath, "and wav directory", filepath.Clean(wavDir))
}

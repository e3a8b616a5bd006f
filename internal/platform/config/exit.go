package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Exitf prints "<program>: <message>" to stderr and exits with status 1.
func Exitf(format string, args ...any) {
	writeExit(os.Stderr, filepath.Base(os.Args[0]), format, args...)
	os.Exit(1)
}

func writeExit(w io.Writer, program, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if program != "" && program != "." {
		msg = program + ": " + msg
	}
	fmt.Fprintln(w, msg)
}

// Package iterm2 shows files inline in iTerm2 compatible terminals.
package iterm2

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// TODO: query the terminal instead of trusting the environment
func IsCompatible() bool {
	return os.Getenv("TERM_PROGRAM") == "iTerm.app"
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// File writes data as an inline file. The terminal sniffs the format, so any
// image it can decode, animated ones included, is shown in place.
func File(w io.Writer, name string, data []byte) error {
	if _, err := fmt.Fprintf(w, "\x1b]1337;File=name=%s;size=%d;inline=1:",
		base64.StdEncoding.EncodeToString([]byte(name)), len(data)); err != nil {
		return err
	}
	bw := base64.NewEncoder(base64.StdEncoding, w)
	if _, err := bw.Write(data); err != nil {
		return err
	}
	if err := bw.Close(); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\x07")); err != nil {
		return err
	}
	return nil
}

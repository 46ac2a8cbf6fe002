package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/room-controller/internal/logic"
)

// teeConsole mirrors every text channel line to the debug log.
type teeConsole struct {
	next logic.Console
}

func (c teeConsole) WriteLine(line string) error {
	log.Debug().Str("line", line).Msg("console")
	return c.next.WriteLine(line)
}

// stdio is a text channel port over the process's stdin and stdout.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdio) Close() error                { return nil }

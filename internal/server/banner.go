package server

import (
	"io"

	"github.com/labstack/gommon/color"
)

const banner = `
    VIDSCRIBE TRANSCRIPTION API v: %s

    listening on %s
    POST /api/transcribe   GET /health   GET /metrics
________________________________________________________

`

func PrintBanner(w io.Writer, colored bool, version, addr string) {
	cl := color.New()
	cl.SetOutput(w)
	if !colored {
		cl.Disable()
	}
	cl.Printf(banner, cl.Red(version), cl.Green(addr))
}

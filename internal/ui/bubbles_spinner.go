package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// SpinnerFrames is the ◐ ◓ ◑ ◒ animation shared by every spinner.
var SpinnerFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 10,
}

// NewSpinner returns a Bubble Tea spinner with the aegis frames and colour.
func NewSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(SpinnerFrames),
		spinner.WithStyle(InfoStyle()),
	)
}

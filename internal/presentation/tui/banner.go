package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner shown by the serve command.
func PrintBanner() {
	p := termenv.ColorProfile()
	lines := []string{
		`      _        _       _ _            `,
		`  ___| |_ __ _| |_ ___| (_)_ __   ___ `,
		" / __| __/ _` | __/ _ \\ | | '_ \\ / _ \\",
		` \__ \ || (_| | ||  __/ | | | | |  __/`,
		` |___/\__\__,_|\__\___|_|_|_| |_|\___|`,
	}
	colors := []string{"#38bdf8", "#22d3ee", "#2dd4bf", "#34d399", "#4ade80"}

	fmt.Println()
	for i, line := range lines {
		fmt.Println(termenv.String(line).Foreground(p.Color(colors[i%len(colors)])))
	}
	fmt.Println()
}

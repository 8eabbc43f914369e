package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the launch banner for the interactive playthrough.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Warm ignition gradient (amber to red)
	s1 := termenv.String(`  _____                      _ `).Foreground(p.Color("#fbbf24"))
	s2 := termenv.String(` |  ___|   _ _ __  _ __   ___| |`).Foreground(p.Color("#f59e0b"))
	s3 := termenv.String(` | |_ | | | | '_ \| '_ \ / _ \ |`).Foreground(p.Color("#f97316"))
	s4 := termenv.String(` |  _|| |_| | | | | | | |  __/ |`).Foreground(p.Color("#ef4444"))
	s5 := termenv.String(` |_|   \__,_|_| |_|_| |_|\___|_|`).Foreground(p.Color("#dc2626"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
}

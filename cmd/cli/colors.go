package main

import "github.com/fatih/color"

// Color definitions shared by every command, lifted from the teacher's
// review.go CLI output style.
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

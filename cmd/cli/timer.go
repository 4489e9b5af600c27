package main

import (
	"fmt"
	"time"
)

// stepTimer tracks timing for verbose CLI output, lifted from the
// teacher's review.go.
type stepTimer struct {
	stepNum    int
	totalSteps int
	start      time.Time
	verbose    bool
}

func newStepTimer(totalSteps int, verbose bool) *stepTimer {
	return &stepTimer{totalSteps: totalSteps, verbose: verbose}
}

func (t *stepTimer) step(name string) {
	t.stepNum++
	t.start = time.Now()
	if t.verbose {
		titleColor.Printf("\nStep %d/%d: %s...\n", t.stepNum, t.totalSteps, name)
	} else {
		fmt.Printf("%s...\n", name)
	}
}

func (t *stepTimer) done(details ...string) {
	if !t.verbose {
		return
	}
	elapsed := time.Since(t.start).Round(time.Millisecond)
	successColor.Printf("   done (%s)\n", elapsed)
	for _, d := range details {
		dimColor.Printf("   -- %s\n", d)
	}
}

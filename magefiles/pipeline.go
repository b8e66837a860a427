//go:build mage

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Discover builds the CLI and runs competitor discovery for $COMPANY
// (optionally in $INDUSTRY), writing the run to visibility/results/.
func Discover() error {
	mg.Deps(Init, Build)

	company := os.Getenv("COMPANY")
	if company == "" {
		return fmt.Errorf("set COMPANY to the company to analyse")
	}
	args := []string{"discover", company, "--output", "visibility/results/discovery.yaml"}
	if industry := os.Getenv("INDUSTRY"); industry != "" {
		args = append(args, "--industry", industry)
	}
	return sh.RunV(binPath, args...)
}

// Cite builds the CLI and scores the citations of the competitors found by
// the discovery run $RUN, or of those listed in the comma-separated $COMPETITORS.
func Cite() error {
	mg.Deps(Init, Build)

	args := []string{"cite", "--output", "visibility/results/citations.yaml"}
	if run := os.Getenv("RUN"); run != "" {
		args = append(args, "--from-run", run)
	}
	if competitors := os.Getenv("COMPETITORS"); competitors != "" {
		for _, c := range strings.Split(competitors, ",") {
			if c = strings.TrimSpace(c); c != "" {
				args = append(args, c)
			}
		}
	}
	if os.Getenv("FAST") != "" {
		args = append(args, "--fast")
	}
	return sh.RunV(binPath, args...)
}

package main

import "github.com/urfave/cli/v2"

var (
	IsVerbose     bool
	IsVeryVerbose bool
)

var FlagVerbose = &cli.BoolFlag{
	Name:        "verbose",
	Aliases:     []string{"v"},
	Usage:       "enable verbose logging",
	Destination: &IsVerbose,
}

var FlagVeryVerbose = &cli.BoolFlag{
	Name:        "very-verbose",
	Aliases:     []string{"vv"},
	Usage:       "enable very verbose logging",
	Destination: &IsVeryVerbose,
}

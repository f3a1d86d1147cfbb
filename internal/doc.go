// Package internal drives the loop conversion pipeline over source
// files.
//
// The Engine parses and type-checks one file at a time, collects its for
// and range statements, and hands each to the analysis stages in
// internal/loop. Analyses run concurrently; emission is serialized in
// source order so synthesized names and edit ranges stay deterministic.
// Results come back as types.Issue values carrying the replacement text,
// ready for the formatter, the fixer, or JSON output.
//
// Usage:
//
//	engine := internal.NewEngine(loop.DefaultConfig())
//	issues, err := engine.Run("path/to/file.go")
//	if err != nil {
//	    // handle error
//	}
//	for _, issue := range issues {
//	    fmt.Printf("%s at %s\n", issue.Message, issue.Start)
//	}
//
// This package is internal to the module; embedders go through the
// convert package instead.
package internal

// Package grid implements the codec between a training-plan CSV file and the
// typed weekly records the rest of the application works with.
//
// The plan file is a spreadsheet export edited by hand. Rows 0-8 are a free-form
// preamble, row 9 is a header whose only significant property is its width, and
// every row from 10 onwards describes one training week. Two column layouts exist
// in the wild; [DetectLayout] picks one from the header width.
//
// # Read path
//
//	g, err := grid.Parse(text)   // lossless [][]string
//	weeks := grid.Project(g)     // []TrainingWeek
//
// # Write path
//
//	g2, err := grid.Update(g, i, edited) // copy-on-write, five cells touched
//	text := grid.Serialize(g2)           // every field quoted
//
// A [Grid] is never mutated in place. [Update] returns a new top-level slice that
// shares every untouched row with its input, so callers can keep the old grid
// around and compare the two with [Diff].
//
// # Distances
//
// Workout descriptions are coaching shorthand ("3 x 2k", "13 Ez", "400m + 3k").
// [ExtractDistance] turns them into kilometres with a few ordered rewrite passes
// and two extraction patterns. Anything it does not understand counts as zero.
package grid

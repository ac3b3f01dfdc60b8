// Package config loads and saves visualizer layouts.
//
// Layouts live in a directory as JSON or HCL files. Both formats carry the
// same fields:
//
//	{
//	  "name": "Maze",
//	  "description": "A small maze",
//	  "layout": [
//	    "S.#..",
//	    "..#..",
//	    "....E"
//	  ]
//	}
//
// or
//
//	name   = "Maze"
//	layout = [
//	  "S.#..",
//	  "..#..",
//	  "....E",
//	]
//
// A layout is referenced by its file name without extension. Loaded layouts
// are cached until RefreshCache is called.
//
// Default Layout:
//
// The default layout is "default" when present, otherwise the first layout in
// the directory, otherwise a blank 30x60 grid.
package config

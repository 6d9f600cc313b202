// Package ux remembers per-workspace user preferences between sessions.
//
// Preferences live in .booklib/preferences.json next to the config file. They
// are written by the TUI on exit and read on start so the collection reopens
// in the layout the user left it in.
package ux

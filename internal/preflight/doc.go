// Package preflight provides readiness checks for the filesystem paths and
// external binaries silencescan depends on.
//
// The scan command calls RunAll before enumerating files so an unreadable
// input directory or missing ffmpeg fails fast instead of producing a report
// full of decode failures. The "silencescan check" command renders the same
// results as a table.
package preflight

// Package filesystem discovers videos in a library directory on local disk.
//
// Video ids are slash-separated paths relative to the library root, so the
// same library indexed from different mount points yields the same catalog.
package filesystem

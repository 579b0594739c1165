// Package ffmpeg decodes frames and detects scene cuts by running the
// ffmpeg and ffprobe command line tools.
package ffmpeg

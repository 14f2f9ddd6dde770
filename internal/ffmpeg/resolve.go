package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Environment variables for custom binary paths.
const (
	EnvFFmpegPath  = "FFMPEG_PATH"
	EnvFFprobePath = "FFPROBE_PATH"
)

// minFFmpegMajorVersion is the minimum supported ffmpeg version.
// Older builds lack silenceremove/loudnorm behavior this tool relies on.
const minFFmpegMajorVersion = 4

// Resolver locates the ffmpeg and ffprobe binaries.
type Resolver struct {
	env    envProvider
	cmd    commandRunner
	stderr io.Writer
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// WithCommandRunner sets the command runner (for testing).
func WithCommandRunner(c commandRunner) ResolverOption {
	return func(r *Resolver) { r.cmd = c }
}

// WithStderr sets the writer for warning messages.
func WithStderr(w io.Writer) ResolverOption {
	return func(r *Resolver) { r.stderr = w }
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		env:    osEnvProvider{},
		cmd:    osCommandRunner{},
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveFFmpeg finds the ffmpeg binary using the following precedence:
//  1. FFMPEG_PATH environment variable (error if set but invalid)
//  2. System PATH
//
// The media engine is mandatory: failure here aborts the run before any
// file is touched.
func (r *Resolver) ResolveFFmpeg() (string, error) {
	return r.resolve("ffmpeg", EnvFFmpegPath)
}

// ResolveFFprobe finds the ffprobe binary with the same precedence as
// ResolveFFmpeg, using FFPROBE_PATH.
func (r *Resolver) ResolveFFprobe() (string, error) {
	return r.resolve("ffprobe", EnvFFprobePath)
}

func (r *Resolver) resolve(binary, envVar string) (string, error) {
	if envPath := r.env.Getenv(envVar); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found",
				ErrNotFound, envVar, envPath)
		}
		return envPath, nil
	}

	path, err := r.env.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s not in PATH (install it or set %s)",
			ErrNotFound, binary, envVar)
	}
	return path, nil
}

// CheckVersion verifies that ffmpeg meets the minimum version requirement.
// Prints a warning to stderr if the version is below minimum but doesn't
// fail; returns false only if the version could not be determined.
func (r *Resolver) CheckVersion(ctx context.Context, ffmpegPath string) bool {
	stdout, stderr, err := r.cmd.Run(ctx, ffmpegPath, []string{"-version"})
	output := stdout + stderr
	if err != nil && output == "" {
		return false
	}

	// Parse version from output like "ffmpeg version 6.1.1 Copyright..."
	// or "ffmpeg version n6.1.1..." on some distro builds.
	line, _, _ := strings.Cut(output, "\n")
	var major int
	if _, err := fmt.Sscanf(line, "ffmpeg version %d", &major); err != nil {
		if _, err := fmt.Sscanf(line, "ffmpeg version n%d", &major); err != nil {
			return false
		}
	}

	if major < minFFmpegMajorVersion {
		fmt.Fprintf(r.stderr, "Warning: ffmpeg version %d detected, version %d+ recommended\n",
			major, minFFmpegMajorVersion)
	}
	return true
}

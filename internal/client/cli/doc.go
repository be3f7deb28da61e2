// Package cli provides the interactive file manager command line.
//
// It wires configuration, the object-store gateway, the upload pipeline and
// the local upload journal behind a small REPL. The working directory is a
// key prefix in the bucket; cd and ls move around it the way a shell does.
//
// Uploads started with put run in the background. Their progress is printed
// as it advances; pending, abort and retry manage them while the prompt
// stays usable.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli

package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context, args []string) error
	ChangeDir(ctx context.Context, args []string) error
	PrintDir(ctx context.Context, args []string) error
	MakeDir(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Stat(ctx context.Context, args []string) error
	Get(ctx context.Context, args []string) error
	URL(ctx context.Context, args []string) error
	Preview(ctx context.Context, args []string) error
	Put(ctx context.Context, args []string) error
	Pending(ctx context.Context, args []string) error
	Abort(ctx context.Context, args []string) error
	Retry(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  ls [query] [-t category]  list the current folder, optionally filtered
  cd <path>                 change folder ("..", "/" and relative paths work)
  pwd                       print the current folder
  mkdir <name>              create a folder
  rm <name>                 delete an object
  stat <name>               check whether an object exists
  get <name> [dir]          download an object
  url <name>                print a download link
  preview <name>            print an inline view link
  put <file>...             upload local files in the background
  pending                   list unfinished uploads
  abort <key>               abort an upload
  retry <key>               retry a failed upload
  history                   show recent uploads
  stats                     summarize the current folder
  exit | quit               leave the program`

// runREPL starts a simple read–eval–print loop.
//
// It reads a line from the provided scanner, parses the first token as the
// command and passes the remaining tokens to the matching method on a.
// Unknown commands are reported back to the user. The loop exits on scanner
// EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the loop focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("s3fm %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)
		case "ls", "l", "list":
			_ = a.List(ctx, args)
		case "cd":
			_ = a.ChangeDir(ctx, args)
		case "pwd":
			_ = a.PrintDir(ctx, args)
		case "mkdir":
			_ = a.MakeDir(ctx, args)
		case "rm", "delete":
			_ = a.Remove(ctx, args)
		case "stat":
			_ = a.Stat(ctx, args)
		case "get":
			_ = a.Get(ctx, args)
		case "url":
			_ = a.URL(ctx, args)
		case "preview":
			_ = a.Preview(ctx, args)
		case "put", "upload":
			_ = a.Put(ctx, args)
		case "pending":
			_ = a.Pending(ctx, args)
		case "abort":
			_ = a.Abort(ctx, args)
		case "retry":
			_ = a.Retry(ctx, args)
		case "history":
			_ = a.History(ctx, args)
		case "stats":
			_ = a.Stats(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

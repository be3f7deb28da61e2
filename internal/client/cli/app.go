package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/devendra0039/s3-file-manager/internal/client/client"
	"github.com/devendra0039/s3-file-manager/internal/client/config"
	"github.com/devendra0039/s3-file-manager/internal/client/services"
	"github.com/devendra0039/s3-file-manager/internal/logging"
	"github.com/devendra0039/s3-file-manager/internal/upload"
)

// historyLimit is how many journal records the history command shows.
const historyLimit = 20

type App struct {
	config  *config.Config
	objects services.ObjectService
	uploads services.UploadService
	logger  logging.Logger
	closer  io.Closer

	bucket   string
	cwd      string
	reader   *bufio.Reader
	progress *progressPrinter

	outMu sync.Mutex
	out   io.Writer

	// bg tracks background uploads so Run can wait for them on exit.
	bg sync.WaitGroup
}

// NewApp prompts for a missing secret key, then connects everything c
// describes.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if c.AccessKeyID != "" && c.SecretAccessKey == "" {
		secret, err := GetSecret(os.Stdout, "Secret access key")
		if err != nil {
			return nil, fmt.Errorf("read secret key: %w", err)
		}
		c.SecretAccessKey = secret
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	cl, err := client.New(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	a := newApp(cl.Objects, cl.Uploads, bufio.NewReader(os.Stdin), os.Stdout, logger)
	a.config = c
	a.closer = cl
	a.bucket = cl.Bucket
	return a, nil
}

func newApp(objects services.ObjectService, uploads services.UploadService, reader *bufio.Reader, out io.Writer, logger logging.Logger) *App {
	a := &App{
		objects: objects,
		uploads: uploads,
		logger:  logger,
		reader:  reader,
		out:     out,
	}
	a.progress = newProgressPrinter(a.println)
	return a
}

// Run starts the REPL and blocks until the user exits. Uploads still
// running at that point are aborted and waited for.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.closer != nil {
			_ = a.closer.Close()
		}
	}()

	a.println(fmt.Sprintf("Connected to bucket %q (type 'help' for commands)", a.bucket))
	runREPL(ctx, a, a.prompt, bufio.NewScanner(a.reader))

	a.shutdown(ctx)
}

func (a *App) shutdown(ctx context.Context) {
	for _, p := range a.uploads.Pending() {
		if p.Status != upload.StatusFailed {
			_ = a.uploads.Abort(ctx, p.Target.Key)
		}
	}
	a.bg.Wait()
}

func (a *App) prompt() string {
	return a.bucket + ":/" + a.cwd
}

// println writes one line; output from background uploads goes through it
// too, so lines never interleave.
func (a *App) println(s string) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, s)
}

func (a *App) printErr(err error) error {
	if err != nil {
		a.println("error: " + err.Error())
	}
	return err
}

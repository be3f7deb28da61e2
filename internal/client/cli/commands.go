package cli

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/devendra0039/s3-file-manager/internal/client/services"
	"github.com/devendra0039/s3-file-manager/internal/common"
	"github.com/devendra0039/s3-file-manager/internal/upload"
)

var errUsage = errors.New("usage")

func (a *App) usage(text string) error {
	a.println("Usage: " + text)
	return errUsage
}

// resolve turns a user path into a cleaned key relative to the bucket root.
// Absolute paths start at the root; everything else is relative to cwd. A
// trailing slash is kept so folder markers can be addressed.
func (a *App) resolve(p string) string {
	full := p
	if !strings.HasPrefix(p, "/") {
		full = path.Join(a.cwd, p)
		if strings.HasSuffix(p, "/") {
			full += "/"
		}
	}
	return services.CleanKey(full)
}

func (a *App) List(ctx context.Context, args []string) error {
	var query, category string
	for i := 0; i < len(args); i++ {
		if args[i] == "-t" && i+1 < len(args) {
			category = args[i+1]
			i++
			continue
		}
		query = args[i]
	}

	l, err := a.objects.List(ctx, a.cwd)
	if err != nil {
		return a.printErr(err)
	}

	dirs := l.Dirs
	if query != "" || category != "" {
		dirs = nil
	}
	files := services.Filter(l.Files, query, category)

	if len(dirs) == 0 && len(files) == 0 {
		a.println("(empty)")
		return nil
	}
	for _, d := range dirs {
		a.println(formatItem(d))
	}
	for _, f := range files {
		a.println(formatItem(f))
	}
	return nil
}

func (a *App) ChangeDir(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.cwd = ""
		return nil
	}

	target := services.CleanPath(a.resolve(args[0]))
	if target != "" && !strings.HasPrefix(a.cwd+"/", target+"/") {
		// Folders exist only through their objects, so a prefix with
		// nothing under it is not a folder.
		l, err := a.objects.List(ctx, target)
		if err != nil {
			return a.printErr(err)
		}
		if len(l.Dirs) == 0 && len(l.Files) == 0 {
			exists, err := a.objects.Exists(ctx, target+"/")
			if err != nil {
				return a.printErr(err)
			}
			if !exists {
				return a.printErr(fmt.Errorf("folder %q: %w", target, common.ErrNotFound))
			}
		}
	}
	a.cwd = target
	return nil
}

func (a *App) PrintDir(_ context.Context, _ []string) error {
	a.println("/" + a.cwd)
	return nil
}

func (a *App) MakeDir(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("mkdir <name>")
	}
	key, err := a.objects.CreateFolder(ctx, args[0], a.cwd)
	if err != nil {
		return a.printErr(err)
	}
	a.println("Created " + key)
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("rm <name>")
	}
	key := a.resolve(args[0])
	if !Confirm(a.reader, fmt.Sprintf("Delete %q?", key), a.out) {
		a.println("Cancelled")
		return nil
	}
	if err := a.objects.Delete(ctx, key); err != nil {
		return a.printErr(err)
	}
	a.println("Deleted " + key)
	return nil
}

func (a *App) Stat(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("stat <name>")
	}
	key := a.resolve(args[0])
	ok, err := a.objects.Exists(ctx, key)
	if err != nil {
		return a.printErr(err)
	}
	if ok {
		a.println(key + ": exists")
	} else {
		a.println(key + ": not found")
	}
	return nil
}

func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return a.usage("get <name> [dir]")
	}
	dir := ""
	if a.config != nil {
		dir = a.config.DownloadDir
	}
	if len(args) == 2 {
		dir = args[1]
	}

	p, n, err := a.objects.Download(ctx, a.resolve(args[0]), dir)
	if err != nil {
		return a.printErr(err)
	}
	a.println(fmt.Sprintf("Saved %s (%s)", p, humanize.IBytes(uint64(n))))
	return nil
}

func (a *App) URL(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("url <name>")
	}
	u, err := a.objects.DownloadURL(ctx, a.resolve(args[0]))
	if err != nil {
		return a.printErr(err)
	}
	a.println(u)
	return nil
}

func (a *App) Preview(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("preview <name>")
	}
	u, err := a.objects.PreviewURL(ctx, a.resolve(args[0]))
	if err != nil {
		return a.printErr(err)
	}
	a.println(u)
	return nil
}

// Put starts uploading the given local files into the current folder and
// returns at once; results are printed when the uploads finish.
func (a *App) Put(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("put <file>...")
	}

	dir := a.cwd
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		remaining := a.uploads.Put(ctx, args, dir, a.progress.sink)
		a.reportOutcomes(len(args), remaining)
	}()

	a.println(fmt.Sprintf("Uploading %d file(s) to /%s", len(args), dir))
	return nil
}

func (a *App) reportOutcomes(total int, remaining []upload.Outcome) {
	for _, o := range remaining {
		switch o.Status {
		case upload.StatusAborted:
			a.println(fmt.Sprintf("[%s] aborted", o.Key))
		default:
			a.println(fmt.Sprintf("[%s] failed: %v (use 'retry %s')", o.Key, o.Err, o.Key))
		}
	}
	if done := total - len(remaining); done > 0 {
		a.println(fmt.Sprintf("%d of %d upload(s) completed", done, total))
	}
}

func (a *App) Pending(_ context.Context, _ []string) error {
	pending := a.uploads.Pending()
	if len(pending) == 0 {
		a.println("No pending uploads")
		return nil
	}
	for _, p := range pending {
		a.println(formatPending(p))
	}
	return nil
}

func (a *App) Abort(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("abort <key>")
	}
	if err := a.uploads.Abort(ctx, args[0]); err != nil {
		return a.printErr(err)
	}
	a.println("Abort requested for " + args[0])
	return nil
}

// Retry restarts a failed upload in the background.
func (a *App) Retry(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("retry <key>")
	}
	key := args[0]

	found := false
	for _, p := range a.uploads.Pending() {
		if p.Target.Key == key {
			found = p.Status == upload.StatusFailed
			break
		}
	}
	if !found {
		return a.printErr(fmt.Errorf("retry %s: %w", key, common.ErrNotRetryable))
	}

	a.progress.reset(key)
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		o, err := a.uploads.Retry(ctx, key, a.progress.sink)
		if err != nil {
			_ = a.printErr(err)
			return
		}
		if o.Status == upload.StatusCompleted {
			a.reportOutcomes(1, nil)
			return
		}
		a.reportOutcomes(1, []upload.Outcome{o})
	}()

	a.println("Retrying " + key)
	return nil
}

func (a *App) History(ctx context.Context, _ []string) error {
	recs, err := a.uploads.History(ctx, historyLimit)
	if err != nil {
		return a.printErr(err)
	}
	if len(recs) == 0 {
		a.println("No uploads recorded")
		return nil
	}
	for _, r := range recs {
		a.println(formatRecord(r))
	}
	return nil
}

func (a *App) Stats(ctx context.Context, _ []string) error {
	l, err := a.objects.List(ctx, a.cwd)
	if err != nil {
		return a.printErr(err)
	}
	a.println(formatStats(services.Summarize(l)))
	return nil
}

package cli

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/devendra0039/s3-file-manager/internal/client/models"
	"github.com/devendra0039/s3-file-manager/internal/upload"
)

func formatItem(it models.Item) string {
	if it.IsDir {
		return fmt.Sprintf("%-10s %-16s %s/", "<dir>", "", it.Name)
	}
	return fmt.Sprintf("%-10s %-16s %s  (%s)",
		humanize.IBytes(uint64(it.Size)), it.LastModified.Local().Format("2006-01-02 15:04"), it.Name, it.ContentType)
}

func formatStats(st models.Stats) string {
	cats := make([]string, 0, len(st.ByCategory))
	for c, n := range st.ByCategory {
		cats = append(cats, fmt.Sprintf("%s=%d", c, n))
	}
	sort.Strings(cats)

	s := fmt.Sprintf("%d folder(s), %d file(s), %s", st.Dirs, st.Files, humanize.IBytes(uint64(st.TotalBytes)))
	if len(cats) > 0 {
		s += " [" + strings.Join(cats, " ") + "]"
	}
	return s
}

func formatPending(p upload.PendingFile) string {
	s := fmt.Sprintf("%-13s %3d%%  %s (%s)", p.Status, p.Percent, p.Target.Key, humanize.IBytes(uint64(p.Target.Size)))
	if p.Err != nil {
		s += ": " + p.Err.Error()
	}
	return s
}

func formatRecord(r models.UploadRecord) string {
	s := fmt.Sprintf("%s  %-9s %s (%s, %d part(s), %s)",
		r.FinishedAt.Local().Format("2006-01-02 15:04:05"), r.Status, r.Key,
		humanize.IBytes(uint64(r.Size)), r.Parts, r.Duration().Round(time.Millisecond))
	if r.Error != "" {
		s += ": " + r.Error
	}
	return s
}

// progressPrinter turns progress callbacks into output lines, one per ten
// percent step and one for each final state.
type progressPrinter struct {
	print func(string)

	mu   sync.Mutex
	last map[string]int
}

func newProgressPrinter(print func(string)) *progressPrinter {
	return &progressPrinter{print: print, last: make(map[string]int)}
}

func (p *progressPrinter) sink(pr upload.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	step := pr.Percent / 10
	prev, seen := p.last[pr.Key]

	switch {
	case pr.Aborted:
		if prev == -1 {
			return
		}
		p.last[pr.Key] = -1
		p.print(fmt.Sprintf("[%s] aborted at %d%%", pr.Key, pr.Percent))
	case !seen || step != prev:
		p.last[pr.Key] = step
		p.print(fmt.Sprintf("[%s] %d%%", pr.Key, pr.Percent))
	}
}

// reset forgets key so a retried upload prints from zero again.
func (p *progressPrinter) reset(key string) {
	p.mu.Lock()
	delete(p.last, key)
	p.mu.Unlock()
}

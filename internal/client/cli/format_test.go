package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devendra0039/s3-file-manager/internal/upload"
)

func TestProgressPrinter(t *testing.T) {
	var lines []string
	p := newProgressPrinter(func(s string) { lines = append(lines, s) })

	for _, pct := range []int{0, 3, 9, 10, 15, 42, 99, 100} {
		p.sink(upload.Progress{Key: "a", Percent: pct})
	}
	p.sink(upload.Progress{Key: "b", Percent: 20, Aborted: true})
	p.sink(upload.Progress{Key: "b", Percent: 20, Aborted: true})

	assert.Equal(t, []string{
		"[a] 0%",
		"[a] 10%",
		"[a] 42%",
		"[a] 99%",
		"[a] 100%",
		"[b] aborted at 20%",
	}, lines)

	lines = nil
	p.reset("a")
	p.sink(upload.Progress{Key: "a", Percent: 0})
	assert.Equal(t, []string{"[a] 0%"}, lines)
}

func TestFormatPending(t *testing.T) {
	got := formatPending(upload.PendingFile{
		Target:  upload.Target{Key: "x.bin", Size: 1536},
		Status:  upload.StatusFailed,
		Percent: 7,
		Err:     assert.AnError,
	})
	assert.Equal(t, "failed          7%  x.bin (1.5 KiB): "+assert.AnError.Error(), got)
}

package models

import "time"

// Item is one entry of a browsed prefix: either a folder or a file.
type Item struct {
	// Name is relative to the browsed prefix. Folders keep no trailing
	// slash.
	Name string

	// Key is the full object key (or prefix, for folders).
	Key string

	IsDir        bool
	Size         int64
	LastModified time.Time
	ContentType  string
	Category     string
}

// Listing is the content of one prefix. Folders come first.
type Listing struct {
	Path  string
	Dirs  []Item
	Files []Item
}

// Stats summarizes the files of a listing.
type Stats struct {
	Files      int
	Dirs       int
	TotalBytes int64
	ByCategory map[string]int
}

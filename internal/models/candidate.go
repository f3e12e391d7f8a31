package models

import "time"

// FileStat is the subset of file metadata the recovery tools care about
type FileStat struct {
	ModTime time.Time `json:"mtime"`
	Size    int64     `json:"size"`
}

// Candidate is a copy of a live file found inside a snapshot
type Candidate struct {
	Snapshot string    `json:"snapshot"`
	Path     string    `json:"path"`
	ModTime  time.Time `json:"mtime"`
	Size     int64     `json:"size"`
}

// Usage is one line of space accounting for a dataset or snapshot
type Usage struct {
	Name    string `json:"name"`
	Bytes   uint64 `json:"bytes"`
	Display string `json:"display"`
}

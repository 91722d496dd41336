package main

import "time"

const (
	tickInterval  = 120 * time.Millisecond // Progress view refresh.
	maxPathWidth  = 60                     // Current path is left-trimmed past this.
	sizeCacheFile = "folder_sizes.json"
	listCacheDir  = "file_lists"

	// Exit codes.
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// Scan stages, in the order a run reports them.
const (
	stageDiscover = "Discovering vehicle folders"
	stageSizes    = "Measuring folders"
	stageListings = "Listing files"
	stageReport   = "Writing report"
)

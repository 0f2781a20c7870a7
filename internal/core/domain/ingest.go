package domain

import "time"

// SourceDocument is a raw page handed to the section splitter.
type SourceDocument struct {
	// Path is the file path (or URI) the page was read from.
	Path string

	// Content is the raw HTML.
	Content []byte
}

// Section is one titled part of a split page.
type Section struct {
	// Heading is the section header text.
	Heading string

	// Filename is a filesystem-safe name derived from Heading.
	Filename string

	// Content is the section text, including its header line.
	Content string
}

// SplitDocument is the splitter's output for one page.
type SplitDocument struct {
	// Title is the page title, used as every chunk's title.
	Title string

	// Stem is the source file name without extension.
	Stem string

	// Sections are in document order.
	Sections []Section
}

// IngestStats summarises an ingestion run.
type IngestStats struct {
	TotalFiles      int       `json:"total_files"`
	ProcessedFiles  int       `json:"processed_files"`
	FailedFiles     int       `json:"failed_files"`
	TotalChunks     int       `json:"total_chunks"`
	FailedFilesList []string  `json:"failed_files_list"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// PartitionStatus reports the size of one partition.
type PartitionStatus struct {
	Partition Partition
	Chunks    int
	Titles    int
}

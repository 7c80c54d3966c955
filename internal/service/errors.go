package service

import "fmt"

// RemoteError marks a failed call against a workflow instance, as opposed to
// a problem with a local file. Transient by nature; rerunning the command is
// safe because every step deduplicates against the destination.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote call %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ArchiveError marks an unreadable or unparseable file in the export
// directory. The offending file is reported and skipped; sibling files are
// still processed.
type ArchiveError struct {
	File string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive file %s: %v", e.File, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

package model

import "errors"

// Error kinds surfaced by the provisioning pipeline. Every one of them aborts the run.
var (
	// Identity errors
	ErrIdentityClaimsIncomplete = errors.New("identity claims incomplete")

	// Directory errors
	ErrDirectoryUnreachable = errors.New("directory service unreachable")
	ErrTeamNotFound         = errors.New("team not found")

	// Content pack errors
	ErrContentPackTransferIncomplete = errors.New("content pack transfer incomplete")
	ErrContentPackExtractionFailed   = errors.New("content pack extraction failed")

	// Filesystem errors
	ErrFilesystemOperationFailed = errors.New("filesystem operation failed")

	// Runtime errors
	ErrRuntimeLaunchFailed = errors.New("game runtime launch failed")
)

// Directory server errors
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidDocument  = errors.New("invalid document")
)

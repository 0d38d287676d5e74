// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package allocpath derives file and directory paths from the allocctl
// configuration and data directories. All layout is defined here so callers
// don't duplicate path construction logic.
//
// The configuration directory contains:
//
//	config.yaml                       Config file
//
// The data directory contains:
//
//	v1/state/<key>.json               Persisted session, snapshot, and view toggles
package allocpath

import "path/filepath"

// ConfigFileName is the well-known config file name within the config directory.
const ConfigFileName = "config.yaml"

// ConfigFilePath returns the path to the config file within the config directory.
func ConfigFilePath(configDirPath string) string {
	return filepath.Join(configDirPath, ConfigFileName)
}

// DataDirV1Path returns the versioned data directory within the data directory.
func DataDirV1Path(dataDirPath string) string {
	return filepath.Join(dataDirPath, "v1")
}

// StateDirPath returns the directory for persisted state within the data directory.
func StateDirPath(dataDirPath string) string {
	return filepath.Join(DataDirV1Path(dataDirPath), "state")
}

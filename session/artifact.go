// Package session coordinates connection attempts. This file contains the
// directory artifact sink used to deliver fallback RDP files.
package session

import (
	"os"
	"path/filepath"

	"github.com/yllada/remote-manager/common"
)

// DirSink writes emitted artifacts into a directory, the local equivalent
// of offering the file as a download.
type DirSink struct {
	// Dir is the destination directory. Created on first emit.
	Dir string
}

// Emit writes the artifact with restrictive permissions and returns the
// write error, if any.
func (s DirSink) Emit(name string, content []byte) error {
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return common.WrapError(err, "failed to create artifact directory")
	}

	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, content, 0600); err != nil {
		return common.WrapError(err, "failed to write artifact")
	}
	return nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/loki-tui/internal/model"
)

func TestExportFileName(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World!", "hello-world-20250102-030405.md"},
		{"", "timeline-20250102-030405.md"},
		{"???", "timeline-20250102-030405.md"},
		{"  Glorious Purpose  ", "glorious-purpose-20250102-030405.md"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ExportFileName(tc.title, now), "title %q", tc.title)
	}
}

func TestWriteExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := NewConversationStore(model.DefaultGreeting)
	conv := s.Create()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	path, err := WriteExport(dir, conv, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ExportFileName(conv.Title, now)), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Greetings, Variant.")
}

func TestWriteExport_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("LOKI_HOME", home)

	conv := NewConversationStore("").Create()
	path, err := WriteExport("", conv, time.Now())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "exports"), filepath.Dir(path))
}

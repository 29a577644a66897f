// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/loki-tui/internal/config"
	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/util"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// ExportFileName builds "<slug>-<yyyymmdd-hhmmss>.md" for a conversation.
func ExportFileName(title string, now time.Time) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		slug = "timeline"
	}
	slug = util.TruncateRunesNoEllipsis(slug, 40)
	return slug + "-" + now.Format("20060102-150405") + ".md"
}

// DefaultExportDir is ~/.loki/exports, or $LOKI_HOME/exports.
func DefaultExportDir() (string, error) {
	base, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "exports"), nil
}

// WriteExport writes c as Markdown into dir and returns the file path.
// An empty dir means DefaultExportDir. Exports are private to the user.
func WriteExport(dir string, c *model.Conversation, now time.Time) (string, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultExportDir(); err != nil {
			return "", err
		}
	}
	path := filepath.Join(dir, ExportFileName(c.Title, now))
	if err := util.AtomicWriteFile(path, []byte(ExportMarkdown(c)), 0o600); err != nil {
		return "", errors.Wrap(err, "write export")
	}
	log.Info().Str("path", path).Str("conversation", c.ID).Msg("conversation exported")
	return path, nil
}

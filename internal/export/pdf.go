// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/util"
)

// ErrNoPassword means the active account carries no usable password,
// so no document password can be derived. The caller should tell the
// user to log out and back in.
var ErrNoPassword = errors.New("no password available to protect the export")

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	// Default: current working directory.
	OutputDir string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{OutputDir: "."}
}

// =============================================================================
// PASSWORD DERIVATION
// =============================================================================

// DerivePassword builds the document password: first 4 characters of
// the username + last 4 of the password. Shorter values contribute
// whatever they have.
func DerivePassword(username, password string) string {
	return util.FirstRunes(username, 4) + util.LastRunes(password, 4)
}

// =============================================================================
// PDF EXPORTER
// =============================================================================

// PDFExporter renders a chat to a protected PDF.
type PDFExporter struct {
	opts *Options
}

// NewPDFExporter creates a PDF exporter.
func NewPDFExporter(opts *Options) *PDFExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &PDFExporter{opts: opts}
}

// Export renders the chat and returns the PDF bytes. The document is
// protected with the password derived from the given credentials.
func (e *PDFExporter) Export(chat *model.ChatSession, username, password string) ([]byte, error) {
	if password == "" {
		return nil, ErrNoPassword
	}
	docPassword := DerivePassword(username, password)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetProtection(fpdf.CnProtectPrint, docPassword, "")
	pdf.SetTitle("Haven Safety Plan", true)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Haven — Confidential Safety Plan", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, chat.Title, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Exported "+time.Now().Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, msg := range chat.Messages {
		pdf.SetFont("Helvetica", "B", 10)
		if msg.Role == model.RoleUser {
			pdf.SetTextColor(40, 40, 120)
		} else {
			pdf.SetTextColor(20, 100, 60)
		}
		label := strings.ToUpper(msg.Role.DisplayName()) + "  " + msg.Timestamp.Format("Jan 2 15:04")
		pdf.CellFormat(0, 6, tr(label), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 5, tr(stripMarkdown(msg.Text)), "", "L", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf generation failed: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToFile renders the chat and writes it under OutputDir.
// Returns the output path.
func (e *PDFExporter) ExportToFile(chat *model.ChatSession, username, password string) (string, error) {
	content, err := e.Export(chat, username, password)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("SafetyPlan_%s_%s.pdf", sanitizeFilename(chat.Title), timestamp)
	outputPath := filepath.Join(e.opts.OutputDir, filename)

	if err := util.AtomicWriteFile(outputPath, content, 0600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// stripMarkdown removes the bold markers the assistant favors. The PDF
// body is plain text; leaving ** in place reads like noise.
func stripMarkdown(s string) string {
	return strings.ReplaceAll(s, "**", "")
}

// sanitizeFilename removes or replaces characters that are invalid in
// filenames.
func sanitizeFilename(s string) string {
	maxLen := 50
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "plan"
	}
	return string(result)
}

// Package archive builds and stores guild backup archives.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/klauspost/compress/flate"
)

// ArchiveName returns the file name for a backup archive of the named guild
// taken at the given time: backup_<safe name>_<YYYY-MM-DD_HH-MM-SS>.zip.
// Every rune of the guild name that is not a letter, digit or underscore is
// replaced with an underscore.
func ArchiveName(guildName string, now time.Time) string {
	return fmt.Sprintf("backup_%s_%s.zip", sanitizeName(guildName), now.Format("2006-01-02_15-04-05"))
}

func sanitizeName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}

	return sb.String()
}

// BuildZip serializes data to indented JSON and compresses it into a ZIP
// archive held entirely in memory. The archive contains a single entry named
// after the archive itself with a .json extension.
func BuildZip(data any, archiveName string) ([]byte, error) {
	jsonData, err := marshalIndented(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize backup data: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	entryName := strings.TrimSuffix(archiveName, ".zip") + ".json"
	w, err := zw.Create(entryName)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive entry %s: %w", entryName, err)
	}
	if _, err := w.Write(jsonData); err != nil {
		return nil, fmt.Errorf("failed to write archive entry %s: %w", entryName, err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}

// marshalIndented renders v as 4-space indented JSON without escaping HTML
// characters, keeping archive contents human-readable.
func marshalIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Package docs discovers and reads the documents of a folder.
package docs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"ragdocs/internal/domain"
)

// DefaultExtensions are the file types ingested when none are configured.
var DefaultExtensions = []string{".txt", ".md", ".pdf"}

// Load reads every file of dir whose extension is in extensions, sorted by
// name. Sub-directories are not walked. A folder with no matching file
// yields an empty slice.
func Load(dir string, extensions []string) ([]domain.Document, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read docs folder %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	documents := make([]domain.Document, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		content, err := readText(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		documents = append(documents, domain.Document{Source: name, Path: path, Content: content})
	}
	return documents, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ExtractPDFText(data)
	}
	return string(data), nil
}

// ExtractPDFText returns the plain text of a PDF. A PDF without extractable
// text yields an empty string.
func ExtractPDFText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf")
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

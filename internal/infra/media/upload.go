// Package media turns local input into gateway content and the FileInfo the
// gateway cannot know.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
)

const mimePDF = "application/pdf"

func init() {
	// pdfcpu otherwise creates a config dir under the user's home
	model.ConfigPath = "disable"
}

// Upload is one piece of input captured at submission time.
type Upload struct {
	Mode     detection.Mode
	Name     string
	MimeType string
	Text     string
	Data     []byte
}

// FromText wraps pasted text.
func FromText(text string) Upload {
	return Upload{Mode: detection.ModeText, MimeType: "text/plain", Text: text}
}

// FromBytes wraps raw media. An empty mimeType is detected from name and content.
func FromBytes(mode detection.Mode, name, mimeType string, data []byte) Upload {
	if mimeType == "" {
		mimeType = DetectMIME(name, data)
	}
	return Upload{Mode: mode, Name: name, MimeType: mimeType, Data: data}
}

// ReadFile loads path for a file or image scan.
func ReadFile(mode detection.Mode, path string) (Upload, error) {
	if !mode.IsMedia() {
		return Upload{}, fmt.Errorf("mode %q does not take a file", mode)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, err
	}
	return FromBytes(mode, filepath.Base(path), "", data), nil
}

// Content is the gateway content field: text as-is, media base64 encoded.
func (u Upload) Content() string {
	if u.Mode.IsMedia() {
		return base64.StdEncoding.EncodeToString(u.Data)
	}
	return u.Text
}

// DetectMIME prefers the extension and falls back to content sniffing.
func DetectMIME(name string, data []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if t := mime.TypeByExtension(strings.ToLower(ext)); t != "" {
			return baseType(t)
		}
	}
	return baseType(http.DetectContentType(data))
}

func baseType(t string) string {
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return t
}

// FileInfoFor describes the upload. Text size is its length in characters.
func FileInfoFor(u Upload) detection.FileInfo {
	fi := detection.FileInfo{Type: u.MimeType}
	if u.Name != "" {
		name := u.Name
		fi.Name = &name
	}

	var size int64
	if u.Mode.IsMedia() {
		size = int64(len(u.Data))
	} else {
		size = int64(utf8.RuneCountInString(u.Text))
	}
	fi.SizeBytes = &size

	if u.MimeType == mimePDF {
		if n, ok := PDFPages(u.Data); ok {
			fi.Pages = &n
		}
	}
	return fi
}

// PDFPages counts pages; ok is false for anything pdfcpu cannot read.
func PDFPages(data []byte) (int, bool) {
	if len(data) == 0 {
		return 0, false
	}
	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

package storage

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type Kind string

const (
	KindPhoto  Kind = "photo"
	KindResume Kind = "resume"
)

// UploadError is a rejected upload. Message is shown to the user as is.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string { return e.Message }

func uploadErrorf(format string, args ...any) *UploadError {
	return &UploadError{Message: fmt.Sprintf(format, args...)}
}

var (
	ErrEmptyFile    = &UploadError{Message: "The submitted file is empty."}
	ErrInvalidImage = &UploadError{Message: "Upload a valid image. The file you uploaded was either not an image or a corrupted image."}
)

// Magic byte signatures per lowercase extension
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}}, // GIF87a & GIF89a
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},                                                   // %PDF
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},                           // OLE Compound Document
	".docx": {{0x50, 0x4B, 0x03, 0x04}},                                                   // ZIP (PK..)
}

var allowed = map[Kind]struct {
	extensions map[string]bool
	mimes      []string
	prefix     string
}{
	KindPhoto: {
		extensions: map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true},
		mimes:      []string{"image/jpeg", "image/png", "image/gif"},
		prefix:     "profile_photos",
	},
	KindResume: {
		extensions: map[string]bool{".pdf": true, ".doc": true, ".docx": true},
		mimes: []string{
			"application/pdf",
			"application/msword",
			"application/x-ole-storage",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/zip",
		},
		prefix: "resumes",
	},
}

// ValidateUpload checks size, extension whitelist, magic bytes and detected
// MIME type. The returned error message is suitable for display.
func ValidateUpload(kind Kind, filename string, data []byte, maxBytes int64) error {
	rules, ok := allowed[kind]
	if !ok {
		return fmt.Errorf("unknown upload kind %q", kind)
	}
	if len(data) == 0 {
		return ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return uploadErrorf("File too large. Size should not exceed %d MB.", maxBytes>>20)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !rules.extensions[ext] {
		return uploadErrorf("File extension %q is not allowed. Allowed extensions are: %s.",
			strings.TrimPrefix(ext, "."), allowedList(rules.extensions))
	}

	if !hasMagic(ext, data) || !matchesAny(data, rules.mimes) {
		if kind == KindPhoto {
			return ErrInvalidImage
		}
		return uploadErrorf("File content does not match its %q extension.", strings.TrimPrefix(ext, "."))
	}
	return nil
}

// NewKey builds a unique storage key for an upload of the given kind,
// keeping ext (with its dot).
func NewKey(kind Kind, ext string) string {
	return allowed[kind].prefix + "/" + uuid.NewString() + strings.ToLower(ext)
}

func hasMagic(ext string, data []byte) bool {
	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

func matchesAny(data []byte, mimes []string) bool {
	detected := mimetype.Detect(data)
	for _, m := range mimes {
		if detected.Is(m) {
			return true
		}
	}
	return false
}

func allowedList(exts map[string]bool) string {
	out := make([]string, 0, len(exts))
	for e := range exts {
		out = append(out, strings.TrimPrefix(e, "."))
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}

// ContentType sniffs the MIME type of data.
func ContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

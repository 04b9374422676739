package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Project statuses. Status is a plain payload field set by explicit
// update; the lifecycle itself only knows absent/active/deleted.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusDelayed    = "delayed"
)

// Unassigned is the sentinel used by callers that have not picked a
// designer yet. Create rejects it; every project needs a designer.
const Unassigned = "unassigned"

// Project is a shared project row. AssignedTo is nil only for legacy
// rows; new projects always carry a designer.
type Project struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	CreatedBy   string           `json:"created_by"`
	AssignedTo  *string          `json:"assigned_to,omitempty"`
	Status      string           `json:"status"`
	Files       []FileAttachment `json:"files"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// FileAttachment is a durable file reference attached to a project.
// PublicURL is recomputed from SanitizedPath on read, never trusted
// from storage.
type FileAttachment struct {
	Name          string `json:"name"`
	SanitizedPath string `json:"sanitized_path"`
	MimeClass     string `json:"mime_class"`
	SizeBytes     int64  `json:"size_bytes"`
	PublicURL     string `json:"public_url,omitempty"`
}

// Durable reports whether the attachment already lives in blob storage.
func (f FileAttachment) Durable() bool {
	return f.SanitizedPath != "" && f.PublicURL != ""
}

// PendingFile is a file submitted by a caller that has not been
// uploaded yet.
type PendingFile struct {
	Name string
	Data []byte
}

// NormalizeAttachments decodes the files JSONB column, tolerating the
// legacy shapes older rows were written with: bare path strings and
// partial objects. Internal code only ever sees FileAttachment.
func NormalizeAttachments(raw []byte) ([]FileAttachment, error) {
	if len(raw) == 0 {
		return []FileAttachment{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	out := make([]FileAttachment, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			// Legacy rows stored the storage key as a bare string.
			out = append(out, FileAttachment{
				Name:          baseName(s),
				SanitizedPath: s,
				MimeClass:     MimeClassFor(s),
			})
			continue
		}

		var f FileAttachment
		if err := json.Unmarshal(item, &f); err != nil {
			return nil, err
		}
		if f.Name == "" {
			f.Name = baseName(f.SanitizedPath)
		}
		if f.MimeClass == "" {
			f.MimeClass = MimeClassFor(f.Name)
		}
		out = append(out, f)
	}
	return out, nil
}

// MimeClassFor derives the coarse mime class from a filename extension.
// Client-supplied MIME types are never trusted.
func MimeClassFor(name string) string {
	dot := strings.LastIndex(name, ".")
	if dot < 0 || dot == len(name)-1 {
		return "file"
	}
	switch strings.ToLower(name[dot+1:]) {
	case "pdf":
		return "pdf"
	case "png", "jpg", "jpeg", "gif", "webp", "svg", "bmp":
		return "image"
	case "go", "js", "ts", "py", "java", "rb", "c", "cpp", "h", "css", "html", "json", "yaml", "yml", "sql", "sh":
		return "code"
	case "txt", "md", "csv", "log":
		return "text"
	case "doc", "docx", "odt", "rtf":
		return "word"
	default:
		return "file"
	}
}

func baseName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

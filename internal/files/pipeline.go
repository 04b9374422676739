package files

import (
	"context"
	"log"

	"github.com/collabhub-dev/collab-backend/internal/projects/domain"
)

// BlobStore is the narrow blob storage contract consumed by the
// pipeline. Put uses overwrite-allowed semantics.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	PublicURL(key string) string
	List(ctx context.Context, prefix string) ([]Object, error)
	Delete(ctx context.Context, key string) error
}

// Object is a stored blob as reported by List.
type Object struct {
	Key  string
	Size int64
}

// SubmittedFile is one entry of a caller-submitted file list. A file
// with a durable attachment (resolved URL) passes through untouched;
// a file with only Data is pending and gets uploaded.
type SubmittedFile struct {
	Attachment domain.FileAttachment
	Data       []byte
}

// Durable reports whether the entry is already in blob storage: it
// carries a resolved storage key and no pending bytes.
func (s SubmittedFile) Durable() bool {
	return len(s.Data) == 0 && s.Attachment.SanitizedPath != ""
}

// Result is the outcome of one upload batch.
type Result struct {
	Succeeded   []domain.FileAttachment
	FailedNames []string
}

// ProgressFunc receives batch progress as a percentage. Monotonically
// increasing across the batch; observability only.
type ProgressFunc func(percent int)

// Pipeline uploads pending project files. Failures are isolated per
// file; a bad file never aborts the batch.
type Pipeline struct {
	store      BlobStore
	onProgress ProgressFunc
}

func NewPipeline(store BlobStore) *Pipeline {
	return &Pipeline{store: store}
}

// WithProgress sets an optional progress callback.
func (p *Pipeline) WithProgress(fn ProgressFunc) *Pipeline {
	p.onProgress = fn
	return p
}

// Upload processes the batch sequentially, in submission order.
// Already-durable entries are passed straight into Succeeded without a
// store write (edit flows resubmit the full list). Pending entries are
// sanitized, keyed under the project id, and uploaded; on failure the
// name is recorded and the batch continues.
func (p *Pipeline) Upload(ctx context.Context, projectID string, submitted []SubmittedFile) Result {
	res := Result{
		Succeeded:   make([]domain.FileAttachment, 0, len(submitted)),
		FailedNames: make([]string, 0),
	}

	for i, f := range submitted {
		if f.Durable() {
			res.Succeeded = append(res.Succeeded, f.Attachment)
			p.report(i+1, len(submitted))
			continue
		}

		name := f.Attachment.Name
		key := StorageKey(projectID, SanitizeName(name))

		if err := p.store.Put(ctx, key, f.Data); err != nil {
			log.Printf("[files] upload failed project=%s file=%q: %v", projectID, name, err)
			res.FailedNames = append(res.FailedNames, name)
			p.report(i+1, len(submitted))
			continue
		}

		res.Succeeded = append(res.Succeeded, domain.FileAttachment{
			Name:          name,
			SanitizedPath: key,
			MimeClass:     domain.MimeClassFor(name),
			SizeBytes:     int64(len(f.Data)),
			PublicURL:     p.store.PublicURL(key),
		})
		p.report(i+1, len(submitted))
	}

	return res
}

func (p *Pipeline) report(done, total int) {
	if p.onProgress == nil || total == 0 {
		return
	}
	p.onProgress(done * 100 / total)
}

package model

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ErrRecordNotFound is returned when no record exists for the requested ID.
var ErrRecordNotFound = errors.New("record not found")

// ErrNoFileConfigured is returned when a record exists but carries neither a
// remote URL nor a local path for the requested document kind.
var ErrNoFileConfigured = errors.New("no file configured")

// Collection names the record family a document belongs to.
type Collection string

const (
	CollectionJournals    Collection = "journals"
	CollectionSubmissions Collection = "submissions"
)

// Singular returns the human-readable singular name, e.g. "journal".
// It doubles as the default filename stem for untitled records.
func (c Collection) Singular() string {
	switch c {
	case CollectionJournals:
		return "journal"
	case CollectionSubmissions:
		return "submission"
	default:
		return "document"
	}
}

// DocumentKind is the file type a download endpoint serves.
type DocumentKind string

const (
	DocumentKindPDF  DocumentKind = "pdf"
	DocumentKindDOCX DocumentKind = "docx"
)

// ContentType returns the fixed MIME type served for the kind.
func (k DocumentKind) ContentType() string {
	switch k {
	case DocumentKindDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/pdf"
	}
}

// Extension returns the file extension without the leading dot.
func (k DocumentKind) Extension() string {
	return string(k)
}

// Label is the upper-case name used in client-facing messages ("PDF", "DOCX").
func (k DocumentKind) Label() string {
	switch k {
	case DocumentKindDOCX:
		return "DOCX"
	default:
		return "PDF"
	}
}

// RecordStatus is the editorial lifecycle state of a record.
type RecordStatus string

const (
	RecordStatusPending     RecordStatus = "pending"
	RecordStatusUnderReview RecordStatus = "under_review"
	RecordStatusApproved    RecordStatus = "approved"
	RecordStatusPublished   RecordStatus = "published"
	RecordStatusRejected    RecordStatus = "rejected"
)

// DocumentFile holds the storage locations of one document kind.
type DocumentFile struct {
	// URL is the object-storage link written by the current upload flow.
	URL string `json:"url,omitempty"`
	// LegacyURL is the alias link written by older uploads; used only when URL is empty.
	LegacyURL string `json:"legacy_url,omitempty"`
	// LocalPath is a filesystem copy, relative to a storage root or absolute.
	LocalPath string `json:"local_path,omitempty"`
}

// Record is a journal or submission with its optional document files.
type Record struct {
	ID         string       `json:"id"`
	Collection Collection   `json:"collection"`
	Title      string       `json:"title"`
	Status     RecordStatus `json:"status"`
	PDF        DocumentFile `json:"pdf"`
	DOCX       DocumentFile `json:"docx"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Source is where a document of one kind can be fetched from.
type Source struct {
	Kind      DocumentKind
	RemoteURL string
	LocalPath string
}

// HasRemote reports whether a remote URL is available.
func (s Source) HasRemote() bool { return s.RemoteURL != "" }

// HasLocal reports whether a local path is recorded.
func (s Source) HasLocal() bool { return s.LocalPath != "" }

// Empty reports whether neither source is recorded.
func (s Source) Empty() bool { return !s.HasRemote() && !s.HasLocal() }

// File returns the storage locations for kind.
func (r *Record) File(kind DocumentKind) DocumentFile {
	if kind == DocumentKindDOCX {
		return r.DOCX
	}
	return r.PDF
}

// Source resolves where the document of the given kind lives. The primary URL
// wins over the legacy alias.
func (r *Record) Source(kind DocumentKind) Source {
	f := r.File(kind)
	remote := f.URL
	if remote == "" {
		remote = f.LegacyURL
	}
	return Source{
		Kind:      kind,
		RemoteURL: remote,
		LocalPath: f.LocalPath,
	}
}

// ChooseSource returns the source for kind, or an error wrapping
// ErrNoFileConfigured when nothing usable is recorded. With remoteOnly a
// local path alone is not enough.
func (r *Record) ChooseSource(kind DocumentKind, remoteOnly bool) (Source, error) {
	src := r.Source(kind)
	if src.Empty() || (remoteOnly && !src.HasRemote()) {
		return src, fmt.Errorf("%w: %s %s has no %s source", ErrNoFileConfigured, r.Collection.Singular(), r.ID, kind)
	}
	return src, nil
}

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// ValidateRecordID accepts 24-digit hex object ids and UUIDs.
func ValidateRecordID(id string) error {
	if objectIDPattern.MatchString(id) {
		return nil
	}
	if _, err := uuid.Parse(id); err == nil && len(id) == 36 {
		return nil
	}
	return fmt.Errorf("invalid record id %q", id)
}

// NewRecordID returns a new UUIDv4 string for use as a record ID.
func NewRecordID() string {
	return uuid.New().String()
}

// Package journalfiles provides a Go client for the journal file download
// service. It wraps the download, redirect and file-info endpoints so callers
// do not have to deal with raw HTTP.
package journalfiles

// Collection names the record family a document belongs to.
type Collection string

const (
	// CollectionJournals addresses published journals.
	CollectionJournals Collection = "journals"
	// CollectionSubmissions addresses author submissions.
	CollectionSubmissions Collection = "submissions"
)

// DocumentKind is the file type to download.
type DocumentKind string

const (
	// DocumentKindPDF requests the PDF rendition.
	DocumentKindPDF DocumentKind = "pdf"
	// DocumentKindDOCX requests the Word rendition.
	DocumentKindDOCX DocumentKind = "docx"
)

// Download describes a completed document download.
type Download struct {
	// Filename is taken from the Content-Disposition header.
	Filename string
	// ContentType is the MIME type reported by the server.
	ContentType string
	// Size is the number of bytes written to the destination.
	Size int64
}

// FileInfo reports where one document kind of a record is stored.
type FileInfo struct {
	HasRemote   bool   `json:"has_remote"`
	HasLocal    bool   `json:"has_local"`
	DownloadURL string `json:"download_url,omitempty"`
}

// RecordFiles is the response of the file-info endpoint.
type RecordFiles struct {
	ID     string              `json:"id"`
	Title  string              `json:"title"`
	Status string              `json:"status"`
	Files  map[string]FileInfo `json:"files"`
}

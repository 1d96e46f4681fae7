package docgen

// DocumentType selects which upstream document pipeline to run. each
// type has its own target chunk, fingerprints and dependency list.
type DocumentType string

const (
	// academic transcript with per-semester grade tables
	Transcript DocumentType = "transcript"
	// enrollment reference letter
	Reference DocumentType = "reference"
)

// TranscriptRow is one graded record of the student's transcript.
type TranscriptRow struct {
	Semester    int     `json:"semester"`
	Subject     string  `json:"subject"`
	ControlType string  `json:"control_type"`
	Credits     float64 `json:"credits"`
	// numeric grade on the institution's five-point digital scale
	Grade float64 `json:"grade"`
}

// GenerationRequest carries every input one generation attempt needs.
// constructed fresh per call, never reused.
type GenerationRequest struct {
	Type      DocumentType
	Language  string
	StudentId string
	// student profile fields as a decoded json object
	StudentInfo map[string]any
	// transcript rows; empty for document types that don't carry a
	// grade table
	Rows []TranscriptRow
	// document-link identifier previously issued by the backend
	LinkId string
	// target url encoded into the document's QR code
	QrUrl string
}

// GeneratedDocument is the binary outcome of a generation attempt.
type GeneratedDocument struct {
	Bytes    []byte
	Filename string
	// local path the binary was persisted to, empty when persistence
	// is disabled
	Path string
}

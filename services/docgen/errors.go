package docgen

import "fmt"

// PatternMissError means a required resource fingerprint never
// matched the upstream bundle, usually because a deployment changed
// the bundle's internal shape. fatal to the generation attempt;
// optional resources degrade to defaults instead of raising this.
type PatternMissError struct {
	Resource string
}

func (e *PatternMissError) Error() string {
	return fmt.Sprintf("fingerprint %q did not match the upstream bundle", e.Resource)
}

// UploadError is a post-generation delivery failure. surfaced
// distinctly from generation failures: the document was produced but
// not delivered.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload document: %s", e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// ResolveError means the shareable url for an uploaded document could
// not be resolved.
type ResolveError struct {
	Err error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve document link: %s", e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

package dto

import "mime/multipart"

// ExtractRequest carries either an uploaded document or already-extracted
// text. Exactly one of the two is required.
type ExtractRequest struct {
	File *multipart.FileHeader
	Text string
}

func (r *ExtractRequest) Validate() error {
	if r.File == nil && r.Text == "" {
		return ErrNoInput
	}
	return nil
}

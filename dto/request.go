package dto

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// LookupRequest describes a workbook run against a directory of PDFs.
type LookupRequest struct {
	WorkbookPath string
	DocumentDir  string
	// OutputPath defaults to the workbook path with an _updated suffix.
	OutputPath string
}

func (r *LookupRequest) Validate() error {
	if r.WorkbookPath == "" {
		return errors.New("workbook path is required")
	}
	if r.DocumentDir == "" {
		return errors.New("document directory is required")
	}
	return nil
}

// UploadRequest is the multipart form of POST /lookup.
type UploadRequest struct {
	Workbook *multipart.FileHeader   `form:"workbook" binding:"required"`
	Files    []*multipart.FileHeader `form:"files[]" binding:"required"`
}

// Validate performs basic validation on the request
func (r *UploadRequest) Validate() error {
	if r.Workbook == nil {
		return errors.New("workbook is required")
	}
	if len(r.Files) == 0 {
		return ErrNoDocuments
	}
	seen := make(map[string]bool, len(r.Files))
	for _, f := range r.Files {
		if !strings.EqualFold(filepath.Ext(f.Filename), ".pdf") {
			return errors.New("only PDF documents are accepted: " + f.Filename)
		}
		// uploads share one directory
		base := filepath.Base(f.Filename)
		if seen[base] {
			return errors.New("duplicate document name: " + base)
		}
		seen[base] = true
	}
	return nil
}

// ResolveRequest carries already extracted text straight to the matcher.
type ResolveRequest struct {
	Names     []string       `json:"names" binding:"required"`
	Documents []DocumentText `json:"documents" binding:"required"`
}

func (r *ResolveRequest) Validate() error {
	if len(r.Documents) == 0 {
		return ErrNoDocuments
	}
	return nil
}

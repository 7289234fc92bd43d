package dto

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadRequestValidate(t *testing.T) {
	wb := &multipart.FileHeader{Filename: "roster.xlsx"}
	files := func(names ...string) []*multipart.FileHeader {
		out := make([]*multipart.FileHeader, len(names))
		for i, n := range names {
			out[i] = &multipart.FileHeader{Filename: n}
		}
		return out
	}

	assert.NoError(t, (&UploadRequest{Workbook: wb, Files: files("a.pdf", "b.PDF")}).Validate())
	assert.ErrorIs(t, (&UploadRequest{Workbook: wb}).Validate(), ErrNoDocuments)
	assert.Error(t, (&UploadRequest{Files: files("a.pdf")}).Validate())
	assert.Error(t, (&UploadRequest{Workbook: wb, Files: files("a.txt")}).Validate())
	assert.Error(t, (&UploadRequest{Workbook: wb, Files: files("a.pdf", "x/a.pdf")}).Validate())
}

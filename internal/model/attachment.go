package model

import "github.com/zunou-lab/chatsync/internal/entity"

type File struct {
	Name string
	Mime string
	Data []byte
}

type UploadAttachmentsRequest struct {
	// ThreadID groups the uploads under one storage prefix.
	ThreadID string
	Files    []File
}

type UploadAttachmentsResponse struct {
	Attachments []entity.Attachment
}

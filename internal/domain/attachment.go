package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/zunou-lab/chatsync/internal/entity"
	"github.com/zunou-lab/chatsync/internal/model"
	"github.com/zunou-lab/chatsync/pkg/errorx"
	"github.com/zunou-lab/chatsync/pkg/storage"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
)

type AttachmentDomain interface {
	Upload(ctx context.Context, req *model.UploadAttachmentsRequest) (*model.UploadAttachmentsResponse, error)
}

type attachmentDomain struct {
	storage storage.Storage
}

func NewAttachmentDomain(s storage.Storage) AttachmentDomain {
	return &attachmentDomain{storage: s}
}

// Upload pushes the files to object storage before the message referencing
// them is sent. The returned attachments carry the public urls a message can
// be composed with.
func (d *attachmentDomain) Upload(
	ctx context.Context, req *model.UploadAttachmentsRequest,
) (*model.UploadAttachmentsResponse, error) {
	if len(req.Files) == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty file list")
	}

	bucket := xcontext.Configs(ctx).Storage.Bucket
	objects := make([]*storage.UploadObject, 0, len(req.Files))
	for _, f := range req.Files {
		objects = append(objects, &storage.UploadObject{
			Bucket:   bucket,
			Prefix:   "attachments/" + req.ThreadID,
			FileName: f.Name,
			Mime:     f.Mime,
			Data:     f.Data,
		})
	}

	responses, err := d.storage.BulkUpload(ctx, objects)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upload attachments: %v", err)
		return nil, errorx.New(errorx.TransportFailed, "Cannot upload attachments")
	}

	attachments := make([]entity.Attachment, 0, len(responses))
	for i, r := range responses {
		attachments = append(attachments, entity.Attachment{
			ID:       uuid.NewString(),
			FileKey:  r.FileName,
			FileName: req.Files[i].Name,
			FileType: req.Files[i].Mime,
			URL:      r.Url,
		})
	}

	return &model.UploadAttachmentsResponse{Attachments: attachments}, nil
}

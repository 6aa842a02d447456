package storage

import "context"

type Storage interface {
	Upload(context.Context, *UploadObject) (*UploadResponse, error)
	BulkUpload(context.Context, []*UploadObject) ([]*UploadResponse, error)
}

// UploadObject is one attachment body on its way to object storage. The
// prefix groups uploads per thread so cleanup jobs can reason about them.
type UploadObject struct {
	Bucket   string
	Prefix   string
	FileName string
	Mime     string
	Data     []byte
}

type UploadResponse struct {
	Url      string
	FileName string
}

type MockStorage struct {
	UploadFunc     func(context.Context, *UploadObject) (*UploadResponse, error)
	BulkUploadFunc func(context.Context, []*UploadObject) ([]*UploadResponse, error)
}

func (m *MockStorage) Upload(ctx context.Context, o *UploadObject) (*UploadResponse, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, o)
	}

	return &UploadResponse{Url: "http://storage.local/" + o.FileName, FileName: o.FileName}, nil
}

func (m *MockStorage) BulkUpload(ctx context.Context, objects []*UploadObject) ([]*UploadResponse, error) {
	if m.BulkUploadFunc != nil {
		return m.BulkUploadFunc(ctx, objects)
	}

	out := make([]*UploadResponse, 0, len(objects))
	for _, o := range objects {
		resp, err := m.Upload(ctx, o)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}

	return out, nil
}

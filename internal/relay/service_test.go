package relay

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloudlinker/uploader/internal/config"
	"github.com/cloudlinker/uploader/internal/events"
	"github.com/cloudlinker/uploader/internal/models"
	"github.com/cloudlinker/uploader/internal/provider"
)

type fakeProvider struct {
	calls  int
	out    *provider.UploadOutput
	err    error
	gotIn  provider.UploadInput
}

func (f *fakeProvider) Upload(ctx context.Context, in provider.UploadInput) (*provider.UploadOutput, error) {
	f.calls++
	f.gotIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeProvider) Ping(ctx context.Context) error { return nil }

type fakeStore struct {
	appended []models.UploadRecord
	records  []models.UploadRecord
	err      error
}

func (f *fakeStore) Append(ctx context.Context, record *models.UploadRecord) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, *record)
	return nil
}

func (f *fakeStore) ListRecent(ctx context.Context) ([]models.UploadRecord, error) {
	return f.records, f.err
}

type fakePublisher struct {
	published []*events.UploadEvent
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, event *events.UploadEvent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, event)
	return nil
}

func testConfig() config.UploadConfig {
	return config.UploadConfig{
		MaxFileSize:   5 * 1024 * 1024,
		AllowedTypes:  []string{"image/jpeg", "image/jpg", "image/png", "image/webp"},
		DefaultFolder: "uploads",
	}
}

func newTestService(p provider.Provider, st *fakeStore, pub EventPublisher) *Service {
	return NewService(p, st, pub, zap.NewNop(), testConfig())
}

func jpegRequest() UploadRequest {
	return UploadRequest{
		File:        strings.NewReader("jpegdata"),
		Filename:    "a.jpg",
		Size:        2048,
		ContentType: "image/jpeg",
		Folder:      "uploads",
	}
}

func TestUpload_Success(t *testing.T) {
	p := &fakeProvider{out: &provider.UploadOutput{
		SecureURL: "https://res.example.com/uploads/a.jpg",
		PublicID:  "uploads/a",
	}}
	st := &fakeStore{}
	pub := &fakePublisher{}
	svc := newTestService(p, st, pub)

	result, err := svc.Upload(context.Background(), jpegRequest())
	require.NoError(t, err)

	assert.Equal(t, "https://res.example.com/uploads/a.jpg", result.URL)
	assert.Equal(t, "uploads/a", result.PublicID)
	assert.Equal(t, 1, p.calls)

	require.Len(t, st.appended, 1)
	rec := st.appended[0]
	assert.Equal(t, "a.jpg", rec.OriginalName)
	assert.Equal(t, "uploads/a", rec.PublicID)
	assert.Equal(t, "uploads/a", rec.Filename)
	assert.Equal(t, int64(2048), rec.Size)
	assert.Equal(t, "jpeg", rec.Format)
	assert.False(t, rec.UploadedAt.IsZero())

	require.Len(t, pub.published, 1)
	assert.Equal(t, "uploads/a", pub.published[0].PublicID)
}

func TestUpload_MissingFile(t *testing.T) {
	p := &fakeProvider{}
	svc := newTestService(p, &fakeStore{}, nil)

	req := jpegRequest()
	req.File = nil

	_, err := svc.Upload(context.Background(), req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgNoFile, verr.Message)
	assert.Zero(t, p.calls, "validation failure must not contact the provider")
}

func TestUpload_DisallowedType(t *testing.T) {
	p := &fakeProvider{}
	svc := newTestService(p, &fakeStore{}, nil)

	for _, ct := range []string{"image/gif", "application/pdf", "text/plain", ""} {
		req := jpegRequest()
		req.ContentType = ct

		_, err := svc.Upload(context.Background(), req)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "content type %q", ct)
		assert.Equal(t, MsgInvalidType, verr.Message)
	}
	assert.Zero(t, p.calls, "disallowed types must not contact the provider")
}

func TestUpload_AllowedTypes(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/jpg", "image/png", "image/webp"} {
		p := &fakeProvider{out: &provider.UploadOutput{SecureURL: "https://x/u", PublicID: "u"}}
		svc := newTestService(p, &fakeStore{}, nil)

		req := jpegRequest()
		req.ContentType = ct

		result, err := svc.Upload(context.Background(), req)
		require.NoError(t, err, "content type %q", ct)
		assert.NotEmpty(t, result.URL)
		assert.Equal(t, 1, p.calls)
	}
}

func TestUpload_SizeExceeded(t *testing.T) {
	p := &fakeProvider{}
	svc := newTestService(p, &fakeStore{}, nil)

	req := jpegRequest()
	req.Size = 5*1024*1024 + 1

	_, err := svc.Upload(context.Background(), req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgTooLarge, verr.Message)
	assert.Zero(t, p.calls, "oversize files must not contact the provider")
}

func TestUpload_DefaultFolder(t *testing.T) {
	p := &fakeProvider{out: &provider.UploadOutput{SecureURL: "https://x/u", PublicID: "u"}}
	svc := newTestService(p, &fakeStore{}, nil)

	req := jpegRequest()
	req.Folder = ""

	_, err := svc.Upload(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "uploads", p.gotIn.Folder)
}

func TestUpload_UpstreamErrorForwarded(t *testing.T) {
	p := &fakeProvider{err: &provider.UpstreamError{StatusCode: 401, Message: "Invalid Signature"}}
	st := &fakeStore{}
	svc := newTestService(p, st, nil)

	_, err := svc.Upload(context.Background(), jpegRequest())
	var upstream *provider.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 401, upstream.StatusCode)
	assert.Empty(t, st.appended, "failed uploads must not be logged")
}

func TestUpload_StoreFailureDoesNotFailUpload(t *testing.T) {
	p := &fakeProvider{out: &provider.UploadOutput{SecureURL: "https://x/u", PublicID: "u"}}
	st := &fakeStore{err: errors.New("db down")}
	svc := newTestService(p, st, nil)

	result, err := svc.Upload(context.Background(), jpegRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://x/u", result.URL)
}

func TestUpload_PublisherFailureDoesNotFailUpload(t *testing.T) {
	p := &fakeProvider{out: &provider.UploadOutput{SecureURL: "https://x/u", PublicID: "u"}}
	pub := &fakePublisher{err: errors.New("amqp down")}
	svc := newTestService(p, &fakeStore{}, pub)

	_, err := svc.Upload(context.Background(), jpegRequest())
	require.NoError(t, err)
}

func TestUpload_NoStoreConfigured(t *testing.T) {
	p := &fakeProvider{out: &provider.UploadOutput{SecureURL: "https://x/u", PublicID: "u"}}
	svc := NewService(p, nil, nil, zap.NewNop(), testConfig())

	result, err := svc.Upload(context.Background(), jpegRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://x/u", result.URL)

	records, err := svc.ListUploads(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, "jpeg", formatOf("image/jpeg", "a.jpg"))
	assert.Equal(t, "webp", formatOf("image/webp", "a.webp"))
	assert.Equal(t, "png", formatOf("", "a.PNG"))
	assert.Equal(t, "", formatOf("", "noext"))
}

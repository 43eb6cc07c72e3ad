package client

import (
	"context"
	"io"
)

// Status of one batch item. Items only move forward: pending → uploading →
// completed or error. A resolved item is never revisited.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Item is one file in a batch.
type Item struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
	Status      Status
	URL         string
	Err         string
}

// Batch drives a set of files through the relay strictly sequentially: one
// upload in flight at a time, submission order preserved. Deliberately not
// concurrent, and there is no mid-batch cancellation beyond the context.
type Batch struct {
	client *Client
	folder string
	items  []*Item

	// onChange, if set, observes every item transition.
	onChange func(index int, item *Item)
}

func NewBatch(c *Client, folder string, items []*Item) *Batch {
	for _, item := range items {
		item.Status = StatusPending
	}
	return &Batch{
		client: c,
		folder: folder,
		items:  items,
	}
}

// OnChange registers a callback invoked after each status transition.
func (b *Batch) OnChange(fn func(index int, item *Item)) {
	b.onChange = fn
}

func (b *Batch) Items() []*Item {
	return b.items
}

// Run processes every item and returns when the batch has finished. An item
// failure marks that item and moves on; Run itself only fails when the
// context is done.
func (b *Batch) Run(ctx context.Context) error {
	for i, item := range b.items {
		if err := ctx.Err(); err != nil {
			return err
		}

		b.transition(i, item, StatusUploading)

		url, err := b.uploadOne(ctx, item)
		if err != nil {
			item.Err = err.Error()
			b.transition(i, item, StatusError)
			continue
		}

		item.URL = url
		b.transition(i, item, StatusCompleted)
	}
	return nil
}

// CompletedCount reports how many items finished with a URL.
func (b *Batch) CompletedCount() int {
	n := 0
	for _, item := range b.items {
		if item.Status == StatusCompleted && item.URL != "" {
			n++
		}
	}
	return n
}

func (b *Batch) uploadOne(ctx context.Context, item *Item) (string, error) {
	f, err := item.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	resp, err := b.client.UploadImage(ctx, f, item.Name, item.ContentType, b.folder)
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (b *Batch) transition(index int, item *Item, status Status) {
	item.Status = status
	if b.onChange != nil {
		b.onChange(index, item)
	}
}

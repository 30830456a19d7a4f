// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"sort"

	"github.com/Enclicainteractive/volt/storage"
)

// FileMeta describes one uploaded file.
type FileMeta struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mimeType,omitempty"`
	UploaderID string `json:"uploaderId,omitempty"`
	Path       string `json:"path,omitempty"`
	UploadedAt int64  `json:"uploadedAt"`
}

// FilesService tracks uploaded file metadata.
type FilesService struct {
	db   *DB
	coll collection[FileMeta]
}

// Get returns one file's metadata or ErrNotFound.
func (service *FilesService) Get(id string) (FileMeta, error) {
	file, ok, err := service.coll.get(id)
	if err != nil {
		return FileMeta{}, err
	}
	if !ok {
		return FileMeta{}, storage.ErrNotFound.New("file %s", id)
	}
	return file, nil
}

// ListForUploader returns files uploaded by a user, newest first.
func (service *FilesService) ListForUploader(uploaderID string) ([]FileMeta, error) {
	records, err := service.coll.all()
	if err != nil {
		return nil, err
	}
	var files []FileMeta
	for _, file := range records {
		if file.UploaderID == uploaderID {
			files = append(files, file)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].UploadedAt != files[j].UploadedAt {
			return files[i].UploadedAt > files[j].UploadedAt
		}
		return files[i].ID > files[j].ID
	})
	return files, nil
}

// Record stores metadata for a new upload and returns it with identity
// and timestamp filled in.
func (service *FilesService) Record(ctx context.Context, file FileMeta) (_ FileMeta, err error) {
	defer mon.Task()(&ctx)(&err)

	if file.Name == "" {
		return FileMeta{}, storage.ErrConstraint.New("file needs a name")
	}
	if file.ID == "" {
		file.ID = newID("file")
	}
	file.UploadedAt = now()
	if err := service.coll.put(ctx, file.ID, file); err != nil {
		return FileMeta{}, err
	}
	return file, nil
}

// Delete removes one file's metadata.
func (service *FilesService) Delete(ctx context.Context, id string) error {
	return service.coll.remove(ctx, id)
}

// AttachmentList holds the file ids attached to one message.
type AttachmentList struct {
	MessageID string   `json:"messageId"`
	FileIDs   []string `json:"fileIds"`
}

// AttachmentsService maps messages to their attached files.
type AttachmentsService struct {
	db   *DB
	coll collection[AttachmentList]
}

// Get returns the attachment list for a message, empty when none.
func (service *AttachmentsService) Get(messageID string) (AttachmentList, error) {
	list, ok, err := service.coll.get(messageID)
	if err != nil {
		return AttachmentList{}, err
	}
	if !ok {
		return AttachmentList{MessageID: messageID}, nil
	}
	return list, nil
}

// Attach appends file ids to a message's attachment list, skipping
// duplicates.
func (service *AttachmentsService) Attach(ctx context.Context, messageID string, fileIDs ...string) (err error) {
	defer mon.Task()(&ctx)(&err)

	if messageID == "" {
		return storage.ErrConstraint.New("attachment needs a message id")
	}
	return service.coll.mutate(ctx, messageID, func(list *AttachmentList, exists bool) error {
		list.MessageID = messageID
		for _, fileID := range fileIDs {
			if fileID != "" && !contains(list.FileIDs, fileID) {
				list.FileIDs = append(list.FileIDs, fileID)
			}
		}
		return nil
	})
}

// Detach removes a file id from a message's attachment list. The record
// is dropped once no attachments remain.
func (service *AttachmentsService) Detach(ctx context.Context, messageID, fileID string) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.coll.update(ctx, func(snap storage.Snapshot) error {
		body, ok := snap[messageID]
		if !ok {
			return nil
		}
		var list AttachmentList
		if err := storage.Decode(body, &list); err != nil {
			return err
		}
		kept := list.FileIDs[:0]
		for _, id := range list.FileIDs {
			if id != fileID {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(snap, messageID)
			return nil
		}
		list.FileIDs = kept
		encoded, err := storage.Encode(list)
		if err != nil {
			return err
		}
		snap[messageID] = encoded
		return nil
	})
}

// Clear removes a message's attachment list.
func (service *AttachmentsService) Clear(ctx context.Context, messageID string) error {
	return service.coll.remove(ctx, messageID)
}

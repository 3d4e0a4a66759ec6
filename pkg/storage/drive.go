package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveFolder implements Folder on top of a Google Drive folder.
type DriveFolder struct {
	files    *drive.FilesService
	folderID string
	readOnly bool
}

// NewDriveFolder builds a Drive client once for the lifetime of the process.
func NewDriveFolder(ctx context.Context, creds *google.Credentials, folderID string, readOnly bool) (*DriveFolder, error) {
	if strings.TrimSpace(folderID) == "" {
		return nil, errors.New("drive folder id is required")
	}
	svc, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("init drive client: %w", err)
	}
	return &DriveFolder{files: svc.Files, folderID: folderID, readOnly: readOnly}, nil
}

// List returns the non-trashed files directly under the folder.
func (d *DriveFolder) List(ctx context.Context) ([]FileRef, error) {
	res, err := d.files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(d.folderID))).
		Fields("files(id, name)").
		PageSize(DefaultPageSize).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list drive folder: %w", err)
	}
	out := make([]FileRef, 0, len(res.Files))
	for _, f := range res.Files {
		out = append(out, FileRef{ID: f.Id, Name: f.Name})
	}
	return out, nil
}

// FindByName looks up a file by its exact name.
func (d *DriveFolder) FindByName(ctx context.Context, name string) (FileRef, bool, error) {
	res, err := d.files.List().
		Q(fmt.Sprintf("'%s' in parents and name = '%s' and trashed=false", escapeQuery(d.folderID), escapeQuery(name))).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return FileRef{}, false, fmt.Errorf("find drive file %q: %w", name, err)
	}
	if len(res.Files) == 0 {
		return FileRef{}, false, nil
	}
	return FileRef{ID: res.Files[0].Id, Name: res.Files[0].Name}, true, nil
}

// Open starts a media download. The caller owns Body.
func (d *DriveFolder) Open(ctx context.Context, id string) (*Object, error) {
	resp, err := d.files.Get(id).Context(ctx).Download()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("open drive file %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("open drive file %s: %w", id, err)
	}
	return &Object{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}

// Put uploads content under name, updating the existing file when present.
func (d *DriveFolder) Put(ctx context.Context, name string, r io.Reader, _ int64, contentType string) (FileRef, bool, error) {
	if d.readOnly {
		return FileRef{}, false, ErrReadOnly
	}
	existing, ok, err := d.FindByName(ctx, name)
	if err != nil {
		return FileRef{}, false, err
	}
	if ok {
		f, err := d.files.Update(existing.ID, &drive.File{}).
			Media(r, googleapi.ContentType(contentType)).
			Fields("id", "name").
			Context(ctx).
			Do()
		if err != nil {
			return FileRef{}, false, fmt.Errorf("update drive file %q: %w", name, err)
		}
		return FileRef{ID: f.Id, Name: f.Name}, false, nil
	}
	f, err := d.files.Create(&drive.File{
		Name:     name,
		Parents:  []string{d.folderID},
		MimeType: contentType,
	}).
		Media(r, googleapi.ContentType(contentType)).
		Fields("id", "name").
		Context(ctx).
		Do()
	if err != nil {
		return FileRef{}, false, fmt.Errorf("create drive file %q: %w", name, err)
	}
	return FileRef{ID: f.Id, Name: f.Name}, true, nil
}

func escapeQuery(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}

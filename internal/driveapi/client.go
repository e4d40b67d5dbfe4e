package driveapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/imroc/req/v3"

	"github.com/bricolab/fabsync/internal/sync"
	"github.com/bricolab/fabsync/internal/version"
)

const (
	DefaultBaseURL = "https://www.googleapis.com"

	filesEndpoint = "/drive/v3/files"
	folderMime    = "application/vnd.google-apps.folder"

	pageSize = 100
)

// Config selects what the client lists.
type Config struct {
	BaseURL   string
	Token     string
	FolderID  string   // root folder to sync from
	Subfolder string   // optional subfolder name under FolderID
	FileTypes []string // extension allow-list, empty means all
}

// Client lists and downloads files from a Drive folder tree. It is the
// remote listing capability consumed by the sync engine.
type Client struct {
	client *req.Client
	cfg    Config
}

func New(cfg Config) (*Client, error) {
	if cfg.FolderID == "" {
		return nil, ErrNoFolderID
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	client := req.C().
		SetBaseURL(cfg.BaseURL).
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1 * time.Second).
		SetUserAgent("FabSync/" + version.Version)

	if cfg.Token != "" {
		client.SetCommonBearerAuthToken(cfg.Token)
	}

	return &Client{client: client, cfg: cfg}, nil
}

// List walks the configured folder tree breadth-first and returns every
// non-trashed file, filtered by the extension allow-list. Each item
// carries its folder path relative to the listing root.
func (c *Client) List(ctx context.Context) ([]*sync.RemoteItem, error) {
	rootID := c.cfg.FolderID
	if c.cfg.Subfolder != "" {
		id, err := c.findSubfolder(ctx, rootID, c.cfg.Subfolder)
		switch {
		case errors.Is(err, ErrSubfolderNotFound):
			slog.Warn("subfolder not found, listing from root folder", "subfolder", c.cfg.Subfolder)
		case err != nil:
			return nil, err
		default:
			rootID = id
		}
	}

	type pending struct {
		id   string
		path []string
	}

	items := make([]*sync.RemoteItem, 0, 64)
	queue := []pending{{id: rootID}}
	seen := map[string]bool{}

	for len(queue) > 0 {
		folder := queue[0]
		queue = queue[1:]
		if seen[folder.id] {
			continue
		}
		seen[folder.id] = true

		pageToken := ""
		for {
			page, err := c.listPage(ctx, folder.id, pageToken)
			if err != nil {
				return nil, err
			}

			for _, f := range page.Files {
				if f.MimeType == folderMime {
					queue = append(queue, pending{
						id:   f.ID,
						path: append(append([]string{}, folder.path...), f.Name),
					})
					continue
				}
				if !allowedType(f.Name, c.cfg.FileTypes) {
					continue
				}
				items = append(items, f.toRemoteItem(folder.path))
			}

			pageToken = page.NextPageToken
			if pageToken == "" {
				break
			}
		}
	}

	return items, nil
}

// Download fetches one file's content.
func (c *Client) Download(ctx context.Context, item *sync.RemoteItem) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("fileId", item.ID).
		SetQueryParam("alt", "media").
		Get(filesEndpoint + "/{fileId}")

	if err := handleAPIError(resp, err, "download "+item.Name); err != nil {
		return nil, err
	}

	return resp.Bytes(), nil
}

func (c *Client) listPage(ctx context.Context, folderID, pageToken string) (*fileListResponse, error) {
	var result fileListResponse
	r := c.client.R().
		SetContext(ctx).
		SetQueryParam("q", fmt.Sprintf("'%s' in parents and trashed = false", folderID)).
		SetQueryParam("fields", "nextPageToken, files(id, name, mimeType, size, md5Checksum, modifiedTime)").
		SetQueryParam("pageSize", fmt.Sprintf("%d", pageSize)).
		SetSuccessResult(&result)
	if pageToken != "" {
		r.SetQueryParam("pageToken", pageToken)
	}

	resp, err := r.Get(filesEndpoint)
	if err := handleAPIError(resp, err, "list folder "+folderID); err != nil {
		return nil, err
	}

	return &result, nil
}

// findSubfolder resolves a named subfolder under parentID. A missing
// subfolder reports ErrSubfolderNotFound; List degrades to the parent
// folder in that case.
func (c *Client) findSubfolder(ctx context.Context, parentID, name string) (string, error) {
	var result fileListResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("q", fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false", parentID, name, folderMime)).
		SetQueryParam("fields", "files(id, name)").
		SetSuccessResult(&result).
		Get(filesEndpoint)

	if err := handleAPIError(resp, err, "find subfolder "+name); err != nil {
		return "", err
	}

	if len(result.Files) == 0 {
		return "", fmt.Errorf("%w: %s", ErrSubfolderNotFound, name)
	}
	return result.Files[0].ID, nil
}

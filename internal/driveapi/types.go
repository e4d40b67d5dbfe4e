package driveapi

import (
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/bricolab/fabsync/internal/sync"
)

// driveFile is a file resource from the listing API. Size comes over the
// wire as a decimal string.
type driveFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	Size         string `json:"size"`
	MD5Checksum  string `json:"md5Checksum"`
	ModifiedTime string `json:"modifiedTime"`
}

type fileListResponse struct {
	NextPageToken string      `json:"nextPageToken"`
	Files         []driveFile `json:"files"`
}

func (f *driveFile) toRemoteItem(folderPath []string) *sync.RemoteItem {
	size, _ := strconv.ParseInt(f.Size, 10, 64)
	modified, _ := time.Parse(time.RFC3339, f.ModifiedTime)

	return &sync.RemoteItem{
		ID:          f.ID,
		Name:        f.Name,
		Fingerprint: f.MD5Checksum,
		Size:        size,
		Path:        folderPath,
		ModifiedAt:  modified,
	}
}

// allowedType checks a file name against the extension allow-list.
func allowedType(name string, fileTypes []string) bool {
	if len(fileTypes) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	for _, ft := range fileTypes {
		if ext == strings.ToLower(strings.TrimSpace(ft)) {
			return true
		}
	}
	return false
}

package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxUploadMemory caps how much of a multipart body is buffered in memory;
// larger files spill to temporary storage.
const maxUploadMemory = 32 << 20

var errMissingFile = errors.New("file is required")

// blobKey builds a collision-free object key under the given prefix,
// preserving the upload's extension.
func blobKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return prefix + "/" + uuid.NewString() + ext
}

// storeUpload streams the named multipart file into the blob store and
// returns the public URL plus the object key.
func storeUpload(ctx context.Context, blobs BlobStore, r *http.Request, field, prefix string) (string, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", "", errMissingFile
	}
	defer file.Close()

	key := blobKey(prefix, header.Filename)
	url, err := blobs.Save(ctx, key, file)
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}

// spoolUpload copies the named multipart file to a temporary path so tools
// that need a filesystem path (ffprobe) can inspect it before upload. The
// caller must invoke cleanup.
func spoolUpload(r *http.Request, field string) (path, filename string, cleanup func(), err error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", "", nil, errMissingFile
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "videotube-upload-*"+strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		return "", "", nil, err
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", "", nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", "", nil, err
	}

	name := tmp.Name()
	return name, header.Filename, func() { os.Remove(name) }, nil
}

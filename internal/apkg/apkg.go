// Package apkg reads and writes packaged collection archives: a zip holding
// the collection database, numerically-named media blobs, and a "media"
// manifest mapping blob ids to filenames. The archive is unpacked into a
// private temporary directory for the lifetime of the handle and repacked on
// save.
package apkg

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vytor/ankistore/internal/anki"
	"github.com/vytor/ankistore/internal/db"
	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/logger"
)

// CollectionFilename is the database entry inside an archive.
const CollectionFilename = "collection.anki2"

const mediaManifest = "media"

// Apkg is an archive-backed collection. It embeds the full Collection facade
// and adds media management plus repacking.
type Apkg struct {
	*anki.Collection

	filename string
	tempDir  string
	db       *db.DB
	media    map[string]string // media id -> original filename
	log      *logger.Logger
}

// Open unpacks the archive at filename (a missing file begins an empty
// archive) and opens the collection inside. Close repacks and releases the
// working directory.
func Open(filename string, opts ...anki.Option) (*Apkg, error) {
	log := logger.Default().WithPrefix("apkg")

	tempDir, err := os.MkdirTemp("", "apkg-")
	if err != nil {
		return nil, err
	}

	a := &Apkg{
		filename: filename,
		tempDir:  tempDir,
		media:    make(map[string]string),
		log:      log,
	}

	if _, err := os.Stat(filename); err == nil {
		if err := a.extract(); err != nil {
			a.cleanup()
			return nil, err
		}
	} else {
		log.Debug("archive %s does not exist yet, starting empty", filename)
	}

	database, err := db.Open(filepath.Join(tempDir, CollectionFilename))
	if err != nil {
		a.cleanup()
		return nil, err
	}
	a.db = database
	a.Collection = anki.New(database, opts...)
	return a, nil
}

func (a *Apkg) extract() error {
	zr, err := zip.OpenReader(a.filename)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, f := range zr.File {
		name := f.Name
		if strings.Contains(name, "..") || strings.ContainsRune(name, os.PathSeparator) {
			return errors.NewValidationError("archive entry", fmt.Sprintf("unsafe name %q", name))
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(a.tempDir, name), data, 0o644); err != nil {
			return err
		}
	}

	manifest, err := os.ReadFile(filepath.Join(a.tempDir, mediaManifest))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(manifest, &a.media)
}

// Save repacks the working directory into the archive: the database file,
// every digit-named media blob, and the manifest. A crash between truncating
// the archive and finishing the write loses the previous contents; this
// window is acknowledged and not mitigated.
func (a *Apkg) Save() error {
	a.log.Debug("repacking archive: %s", a.filename)

	// Fold WAL contents back into the main database file before zipping it.
	if _, err := a.db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		a.log.Warn("wal checkpoint failed: %v", err)
	}

	out, err := os.Create(a.filename)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	if err := a.addFile(zw, CollectionFilename); err != nil {
		zw.Close()
		return err
	}

	entries, err := os.ReadDir(a.tempDir)
	if err != nil {
		zw.Close()
		return err
	}
	for _, entry := range entries {
		if !isMediaID(entry.Name()) {
			continue
		}
		if err := a.addFile(zw, entry.Name()); err != nil {
			zw.Close()
			return err
		}
	}

	manifest, err := json.Marshal(a.media)
	if err != nil {
		zw.Close()
		return err
	}
	w, err := zw.Create(mediaManifest)
	if err != nil {
		zw.Close()
		return err
	}
	if _, err := w.Write(manifest); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func (a *Apkg) addFile(zw *zip.Writer, name string) error {
	data, err := os.ReadFile(filepath.Join(a.tempDir, name))
	if err != nil {
		return err
	}
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Close saves the archive, closes the database and removes the working
// directory.
func (a *Apkg) Close() error {
	saveErr := a.Save()
	if err := a.db.Close(); err != nil && saveErr == nil {
		saveErr = err
	}
	a.cleanup()
	return saveErr
}

func (a *Apkg) cleanup() {
	if err := os.RemoveAll(a.tempDir); err != nil {
		a.log.Warn("failed to remove working directory %s: %v", a.tempDir, err)
	}
}

// StoreMediaFile stages a media blob under the next free integer id and
// records it in the manifest. The blob lands in the archive on Save.
func (a *Apkg) StoreMediaFile(filename string, data []byte) error {
	mediaID := 1
	for k := range a.media {
		if id, err := strconv.Atoi(k); err == nil && id >= mediaID {
			mediaID = id + 1
		}
	}

	key := strconv.Itoa(mediaID)
	if err := os.WriteFile(filepath.Join(a.tempDir, key), data, 0o644); err != nil {
		return err
	}
	a.media[key] = filename
	a.log.Debug("stored media %q as id %s (%d bytes)", filename, key, len(data))
	return nil
}

// RetrieveMediaFile returns the staged contents of the named media file.
func (a *Apkg) RetrieveMediaFile(filename string) ([]byte, error) {
	for k, v := range a.media {
		if v == filename {
			return os.ReadFile(filepath.Join(a.tempDir, k))
		}
	}
	return nil, errors.NewNotFoundError("media file", filename)
}

// DeleteMediaFile drops the named media file from the manifest, reporting
// whether it was present.
func (a *Apkg) DeleteMediaFile(filename string) (bool, error) {
	for k, v := range a.media {
		if v == filename {
			delete(a.media, k)
			if err := os.Remove(filepath.Join(a.tempDir, k)); err != nil && !os.IsNotExist(err) {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func isMediaID(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

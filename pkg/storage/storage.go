// Copyright 2019-2020 The pngme Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"github.com/gofrs/flock"
	"github.com/jrivets/log4g"
	"github.com/logrange/range/pkg/utils/bytes"
	"github.com/logrange/range/pkg/utils/fileutil"
	"github.com/pkg/errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
)

type (
	// Storage interface allows to read and write serialized data by a key.
	// For the file implementation the key is a file path.
	Storage interface {
		ReadData(key string) ([]byte, error)
		WriteData(key string, val []byte) error
	}

	// inmemStorage struct an in-mem Storage implementation
	inmemStorage struct {
		data   sync.Map
		logger log4g.Logger
	}

	// fileStorage stuct a file Storage implementation
	fileStorage struct {
		location string
		logger   log4g.Logger
	}

	StorageType string
)

const (
	TypeFile  StorageType = "file"
	TypeInMem StorageType = "inmem"
)

//===================== storage =====================

func NewStorage(cfg *Config) (Storage, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config; %v", err)
	}

	switch cfg.Type {
	case TypeFile:
		return newFileStorage(cfg.Location), nil
	case TypeInMem:
		return newInMemStorage(), nil
	}

	return nil, fmt.Errorf("unknown storage type=%v", cfg.Type)
}

func NewDefaultStorage() Storage {
	s, _ := NewStorage(NewDefaultConfig())
	return s
}

//===================== inmemStorage =====================

func newInMemStorage() Storage {
	logger := log4g.GetLogger("storage").WithId("[inmem]").(log4g.Logger)
	return &inmemStorage{logger: logger}
}

func (ms *inmemStorage) ReadData(key string) ([]byte, error) {
	v, ok := ms.data.Load(key)
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "no data for key=%s", key)
	}

	buf := bytes.BytesCopy(v.([]byte))
	ms.logger.Debug("Read key=", key, ", size=", len(buf))
	return buf, nil
}

func (ms *inmemStorage) WriteData(key string, val []byte) error {
	if val == nil {
		ms.data.Delete(key)
		return nil
	}

	ms.data.Store(key, bytes.BytesCopy(val))
	ms.logger.Debug("Wrote key=", key, ", size=", len(val))
	return nil
}

func (ms *inmemStorage) String() string {
	return "[inmem]"
}

//===================== fileStorage =====================

func newFileStorage(location string) Storage {
	logger := log4g.GetLogger("storage").WithId("[file]").(log4g.Logger)
	return &fileStorage{location: location, logger: logger}
}

func (fs *fileStorage) ReadData(key string) ([]byte, error) {
	fp := fs.filePath(key)
	data, err := ioutil.ReadFile(fp)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file=%s", fp)
	}

	fs.logger.Debug("Read key=", key, ", size=", len(data))
	return data, nil
}

// WriteData writes the value into a temporary file first and renames it
// over the destination afterwards, so a reader never observes a partially
// written file. The write is guarded by a file lock, a concurrent writer
// gets an error instead of blocking.
func (fs *fileStorage) WriteData(key string, val []byte) error {
	fp := fs.filePath(key)
	dir := filepath.Dir(fp)

	err := fileutil.EnsureDirExists(dir)
	if err != nil {
		return errors.Wrapf(err, "it seems like %s dir doesn't exist, and it is not possible to create it", dir)
	}

	lock := flock.New(fp + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return errors.Wrapf(err, "failed to acquire lock=%s", lock.Path())
	}
	if !locked {
		return fmt.Errorf("file=%s is locked by another process", fp)
	}
	defer func() {
		os.Remove(lock.Path())
		lock.Unlock()
	}()

	tmp, err := ioutil.TempFile(dir, filepath.Base(fp)+".tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file in dir=%s", dir)
	}

	_, err = tmp.Write(val)
	if err == nil {
		err = tmp.Chmod(0640)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "failed to write temp file=%s", tmp.Name())
	}

	err = os.Rename(tmp.Name(), fp)
	if err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "failed to rename temp file=%s to file=%s", tmp.Name(), fp)
	}

	fs.logger.Debug("Wrote key=", key, ", size=", len(val))
	return nil
}

// filePath resolves the key against the configured location. Absolute keys
// are used as they are.
func (fs *fileStorage) filePath(key string) string {
	if fs.location == "" || filepath.IsAbs(key) {
		return key
	}
	return filepath.Join(fs.location, key)
}

func (fs *fileStorage) String() string {
	return fmt.Sprintf("[file: location=%v]", fs.location)
}

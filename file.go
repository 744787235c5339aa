// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"os"

	"github.com/pkg/errors"
)

const fileMode = 0o644

// Save writes the wire form of the container to path, replacing any
// existing file
func (c *Container) Save(path string) error {
	return saveWire(path, c)
}

// Load replaces the container's contents with the wire document stored at
// path. On error the container is left unchanged.
func (c *Container) Load(path string) error {
	return loadWire(path, c)
}

func saveWire(path string, s Serializer) error {
	data := []byte(s.Serialize())
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return errors.Wrapf(err, "saving container to %s", path)
	}
	log.Debug("saved container", "path", path, "bytes", len(data))
	return nil
}

func loadWire(path string, d Deserializer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "loading container from %s", path)
	}
	if err := d.Deserialize(string(data)); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}
	log.Debug("loaded container", "path", path, "bytes", len(data))
	return nil
}

// LoadFile reads and parses the wire document stored at path
func LoadFile(path string) (*Container, error) {
	c := New()
	if err := c.Load(path); err != nil {
		return nil, err
	}
	return c, nil
}

// SaveFile writes the store to path, in the binary format if binary is set
// and as JSON otherwise
func (s *ValueStore) SaveFile(path string, binary bool) error {
	var (
		data []byte
		err  error
	)
	if binary {
		data, err = s.SerializeBinary()
	} else {
		var doc string
		doc, err = s.Serialize()
		data = []byte(doc)
	}
	if err != nil {
		return errors.Wrapf(err, "encoding store for %s", path)
	}

	if err := os.WriteFile(path, data, fileMode); err != nil {
		return errors.Wrapf(err, "saving store to %s", path)
	}
	log.Debug("saved store", "path", path, "binary", binary, "bytes", len(data))
	return nil
}

// LoadStoreFile reads a store written by SaveFile with the same binary setting
func LoadStoreFile(path string, binary bool) (*ValueStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading store from %s", path)
	}

	var s *ValueStore
	if binary {
		s, err = DeserializeBinary(data)
	} else {
		s, err = DeserializeStore(string(data))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	log.Debug("loaded store", "path", path, "binary", binary, "entries", s.Size())
	return s, nil
}

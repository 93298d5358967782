// Package persist keeps overworld snapshots in named msgpack save slots.
package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/KesselZ/HeroHour-sub000/internal/world"
)

const slotExt = ".hhsave"

// ErrCorruptSlot is returned when a slot exists but cannot be decoded.
var ErrCorruptSlot = errors.New("corrupt save slot")

// Slot is the on-disk envelope around a world snapshot.
type Slot struct {
	Name  string          `msgpack:"name"`
	Tick  int             `msgpack:"tick"`
	World *world.SaveData `msgpack:"world"`
}

// Store is a directory of save slots.
type Store struct {
	dir string
}

// Open creates dir if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open save store: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return "", fmt.Errorf("bad slot name %q", name)
	}
	return filepath.Join(s.dir, name+slotExt), nil
}

// Save writes snap to the named slot, replacing it atomically.
func (s *Store) Save(name string, tick int, snap *world.SaveData) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	data, err := msgpack.Marshal(&Slot{Name: name, Tick: tick, World: snap})
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// Load reads a slot. An empty slot is not an error: it returns (nil, false, nil).
func (s *Store) Load(name string) (*Slot, bool, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", name, err)
	}
	var slot Slot
	if err := msgpack.Unmarshal(data, &slot); err != nil {
		return nil, false, fmt.Errorf("load %s: %w: %v", name, ErrCorruptSlot, err)
	}
	if slot.World == nil {
		return nil, false, fmt.Errorf("load %s: %w: no world", name, ErrCorruptSlot)
	}
	return &slot, true, nil
}

// Delete removes a slot. Deleting an empty slot is a no-op.
func (s *Store) Delete(name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Slots lists the occupied slot names, sorted.
func (s *Store) Slots() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), slotExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), slotExt))
	}
	sort.Strings(names)
	return names, nil
}

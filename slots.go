package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
)

var errInvalidSlot = errors.New("invalid slot")

// ProjectInfo summarises one storage slot.
type ProjectInfo struct {
	Slot    int
	Name    string
	IsEmpty bool
}

// slotStore persists up to three projects under one key as
// {"slot1": ..., "slot2": ..., "slot3": ...} and the active slot under a
// second key. Every read goes back to storage.
type slotStore struct {
	storage Storage
	log     *slog.Logger
}

func newSlotStore(storage Storage, log *slog.Logger) *slotStore {
	return &slotStore{storage: storage, log: log}
}

func validSlot(slot int) bool { return slot >= 1 && slot <= slotCount }

func slotKey(slot int) string { return "slot" + strconv.Itoa(slot) }

// readSlots returns the raw document stored in each slot. Unparseable slot
// maps are logged and removed so the failure does not repeat.
func (s *slotStore) readSlots() map[string]json.RawMessage {
	slots := make(map[string]json.RawMessage, slotCount)
	stored, ok, err := s.storage.Get(slotsStorageKey)
	if err != nil {
		s.log.Error("load project slots", "key", slotsStorageKey, "err", err)
		return slots
	}
	if !ok || stored == "" {
		return slots
	}
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stored), &parsed); err != nil || parsed == nil {
		s.log.Error("corrupted project slots, clearing", "key", slotsStorageKey, "err", err)
		if err := s.storage.Remove(slotsStorageKey); err != nil {
			s.log.Error("clear project slots", "key", slotsStorageKey, "err", err)
		}
		return slots
	}
	for slot := 1; slot <= slotCount; slot++ {
		if raw, ok := parsed[slotKey(slot)]; ok && string(raw) != "null" {
			slots[slotKey(slot)] = raw
		}
	}
	return slots
}

func (s *slotStore) writeSlots(slots map[string]json.RawMessage) error {
	out := make(map[string]json.RawMessage, slotCount)
	for slot := 1; slot <= slotCount; slot++ {
		out[slotKey(slot)] = slots[slotKey(slot)]
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode project slots: %w", err)
	}
	return s.storage.Set(slotsStorageKey, string(data))
}

// load returns the slot's project, or ok=false when the slot is empty or
// its document has no frame list. Mistyped fields fall back to defaults.
func (s *slotStore) load(slot int) (Project, bool) {
	if !validSlot(slot) {
		return Project{}, false
	}
	raw, ok := s.readSlots()[slotKey(slot)]
	if !ok {
		return Project{}, false
	}
	p, dropped, err := decodeProject(raw)
	if err != nil {
		s.log.Warn("ignoring malformed slot", "slot", slot, "err", err)
		return Project{}, false
	}
	for _, d := range dropped {
		s.log.Warn("slot field reset to default", "slot", slot, "field", d)
	}
	return p, true
}

func (s *slotStore) save(p Project, slot int) error {
	if !validSlot(slot) {
		return fmt.Errorf("save slot %d: %w", slot, errInvalidSlot)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	slots := s.readSlots()
	slots[slotKey(slot)] = data
	return s.writeSlots(slots)
}

func (s *slotStore) clear(slot int) error {
	if !validSlot(slot) {
		return fmt.Errorf("clear slot %d: %w", slot, errInvalidSlot)
	}
	slots := s.readSlots()
	delete(slots, slotKey(slot))
	return s.writeSlots(slots)
}

func (s *slotStore) list() []ProjectInfo {
	slots := s.readSlots()
	infos := make([]ProjectInfo, 0, slotCount)
	for slot := 1; slot <= slotCount; slot++ {
		info := ProjectInfo{Slot: slot, Name: emptySlotName, IsEmpty: true}
		if raw, ok := slots[slotKey(slot)]; ok {
			if p, _, err := decodeProject(raw); err == nil {
				info.Name = p.Name
				info.IsEmpty = false
			}
		}
		infos = append(infos, info)
	}
	return infos
}

// currentSlot reads the active slot; anything but "2" or "3" means slot 1.
func (s *slotStore) currentSlot() int {
	stored, ok, err := s.storage.Get(currentSlotKey)
	if err != nil {
		s.log.Error("load current slot", "key", currentSlotKey, "err", err)
		return 1
	}
	if !ok {
		return 1
	}
	switch stored {
	case "2":
		return 2
	case "3":
		return 3
	}
	return 1
}

func (s *slotStore) setCurrentSlot(slot int) error {
	if !validSlot(slot) {
		return fmt.Errorf("set current slot %d: %w", slot, errInvalidSlot)
	}
	return s.storage.Set(currentSlotKey, strconv.Itoa(slot))
}

package canvas

import (
	"errors"
	"fmt"
	"sync"
)

var (
	errDuplicateID = errors.New("canvas: duplicate widget id")
	// ErrUnknownEntry is returned when an id has no entry in the store.
	ErrUnknownEntry = errors.New("canvas: unknown entry")
)

// Store owns the canonical combined widget list. Both grid views are
// projections of it; nothing else holds widget state.
type Store struct {
	mu         sync.RWMutex
	order      []string
	widgets    map[string]*Widget
	texts      map[string]*TextWidget
	flags      map[string]Flags
	textStates map[string]TextState
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		widgets:    map[string]*Widget{},
		texts:      map[string]*TextWidget{},
		flags:      map[string]Flags{},
		textStates: map[string]TextState{},
	}
}

// Hydrate replaces store contents from backend data. Local placeholders are
// kept (the backend does not know them), and text widgets with an open
// editor keep their local content until the next explicit save.
func (s *Store) Hydrate(widgets []Widget, texts []TextWidgetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keptTexts := map[string]*TextWidget{}
	keptStates := map[string]TextState{}
	var keptOrder []string
	for _, id := range s.order {
		if state, ok := s.textStates[id]; ok && state.Placeholder() {
			keptTexts[id] = s.texts[id]
			keptStates[id] = state
			keptOrder = append(keptOrder, id)
		}
	}

	order := make([]string, 0, len(widgets)+len(texts)+len(keptOrder))
	nextWidgets := make(map[string]*Widget, len(widgets))
	nextTexts := keptTexts
	nextStates := keptStates
	order = append(order, keptOrder...)

	seen := map[string]struct{}{}
	for id := range keptTexts {
		seen[id] = struct{}{}
	}
	for _, w := range widgets {
		if w.ID == "" {
			return errors.New("canvas: widget id is required")
		}
		if _, dup := seen[w.ID]; dup {
			return fmt.Errorf("%w: %s", errDuplicateID, w.ID)
		}
		seen[w.ID] = struct{}{}
		clone := w
		clone.Geometry = normalizeGeometry(clone.Geometry)
		nextWidgets[w.ID] = &clone
		order = append(order, w.ID)
	}
	for _, rec := range texts {
		if rec.ID == "" {
			return errors.New("canvas: text widget id is required")
		}
		if _, dup := seen[rec.ID]; dup {
			return fmt.Errorf("%w: %s", errDuplicateID, rec.ID)
		}
		seen[rec.ID] = struct{}{}
		text := &TextWidget{ID: rec.ID, Geometry: normalizeGeometry(rec.Geometry), Content: rec.Content}
		if prev, ok := s.textStates[rec.ID]; ok && prev.Phase == TextEditing {
			if local, exists := s.texts[rec.ID]; exists {
				text.Content = local.Content
			}
			nextStates[rec.ID] = prev
		}
		nextTexts[rec.ID] = text
		order = append(order, rec.ID)
	}

	s.order = order
	s.widgets = nextWidgets
	s.texts = nextTexts
	s.textStates = nextStates
	s.flags = map[string]Flags{}
	return nil
}

// InsertText adds a text widget with the given lifecycle state. Ids must be
// unique across both kinds.
func (s *Store) InsertText(text TextWidget, state TextState) error {
	if text.ID == "" {
		return errors.New("canvas: text widget id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exists(text.ID) {
		return fmt.Errorf("%w: %s", errDuplicateID, text.ID)
	}
	if text.Geometry.Placed() {
		text.Geometry = normalizeGeometry(text.Geometry)
	}
	clone := text
	s.texts[text.ID] = &clone
	s.textStates[text.ID] = state
	s.order = append(s.order, text.ID)
	return nil
}

// Entry fetches a combined-list entry by id.
func (s *Store) Entry(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entryLocked(id)
}

func (s *Store) entryLocked(id string) (Entry, bool) {
	if w, ok := s.widgets[id]; ok {
		return Entry{Kind: KindRegular, Widget: *w}, true
	}
	if t, ok := s.texts[id]; ok {
		return Entry{Kind: KindText, Text: *t}, true
	}
	return Entry{}, false
}

// Entries returns a snapshot of the combined widget list in stable order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		if entry, ok := s.entryLocked(id); ok {
			out = append(out, entry)
		}
	}
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// ApplyGeometry writes geometry for an entry, reporting whether anything
// changed. Unknown ids return ErrUnknownEntry.
func (s *Store) ApplyGeometry(id string, geom Geometry) (bool, error) {
	geom = normalizeGeometry(geom)
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.widgets[id]; ok {
		if w.Geometry == geom {
			return false, nil
		}
		w.Geometry = geom
		return true, nil
	}
	if t, ok := s.texts[id]; ok {
		if t.Geometry == geom {
			return false, nil
		}
		t.Geometry = geom
		return true, nil
	}
	return false, fmt.Errorf("%w: %s", ErrUnknownEntry, id)
}

// SetContent replaces the rich content of a text widget.
func (s *Store) SetContent(id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.texts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, id)
	}
	t.Content = content
	return nil
}

// ReplaceTextID swaps a placeholder id for the authoritative backend id,
// preserving geometry, content, flags, and position in the list.
func (s *Store) ReplaceTextID(oldID, newID string) error {
	if newID == "" {
		return errors.New("canvas: replacement id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.texts[oldID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, oldID)
	}
	if oldID == newID {
		return nil
	}
	if s.exists(newID) {
		return fmt.Errorf("%w: %s", errDuplicateID, newID)
	}
	t.ID = newID
	s.texts[newID] = t
	delete(s.texts, oldID)
	if state, ok := s.textStates[oldID]; ok {
		s.textStates[newID] = state
		delete(s.textStates, oldID)
	}
	if flags, ok := s.flags[oldID]; ok {
		s.flags[newID] = flags
		delete(s.flags, oldID)
	}
	for i, id := range s.order {
		if id == oldID {
			s.order[i] = newID
			break
		}
	}
	return nil
}

// Remove deletes an entry and its transient state.
func (s *Store) Remove(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entryLocked(id)
	if !ok {
		return Entry{}, false
	}
	delete(s.widgets, id)
	delete(s.texts, id)
	delete(s.flags, id)
	delete(s.textStates, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return entry, true
}

// Flags returns the transient UI flags for an entry.
func (s *Store) Flags(id string) Flags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[id]
}

// SetFlags stores transient UI flags for an entry.
func (s *Store) SetFlags(id string, flags Flags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists(id) {
		return
	}
	s.flags[id] = flags
}

// ClearControls drops every hover affordance. Called when the canvas flips
// to read-only so controls do not linger.
func (s *Store) ClearControls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, flags := range s.flags {
		flags.ShowControls = false
		s.flags[id] = flags
	}
}

// TextState returns the lifecycle state for a text widget. Persisted
// widgets without recorded state are Saved.
func (s *Store) TextState(id string) (TextState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.texts[id]; !ok {
		return TextState{}, false
	}
	return s.textStates[id], true
}

// SetTextState records the lifecycle state for a text widget.
func (s *Store) SetTextState(id string, state TextState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.texts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, id)
	}
	s.textStates[id] = state
	return nil
}

func (s *Store) exists(id string) bool {
	if _, ok := s.widgets[id]; ok {
		return true
	}
	_, ok := s.texts[id]
	return ok
}

// normalizeGeometry enforces the bounds invariant: x,y >= 0 and w,h >= 1.
func normalizeGeometry(g Geometry) Geometry {
	if g.X < 0 {
		g.X = 0
	}
	if g.Y < 0 {
		g.Y = 0
	}
	if g.Width < 1 {
		g.Width = 1
	}
	if g.Height < 1 {
		g.Height = 1
	}
	return g
}

package canvas

// TextPhase tags the lifecycle state of a text widget. The tagged variant
// replaces the old isNew/isEditing boolean pair, which allowed meaningless
// combinations.
type TextPhase int

const (
	// TextSaved is a persisted widget with the editor closed.
	TextSaved TextPhase = iota
	// TextNew is a local placeholder: temporary id, editor open, nothing in
	// the backend yet.
	TextNew
	// TextEditing is a persisted widget with the editor open.
	TextEditing
)

// String returns the phase label used in telemetry payloads.
func (p TextPhase) String() string {
	switch p {
	case TextNew:
		return "new"
	case TextEditing:
		return "editing"
	default:
		return "saved"
	}
}

// TextState carries the phase plus, while editing, the content as it stood
// when the editor opened. Cancel restores Original; save discards it.
type TextState struct {
	Phase    TextPhase
	Original string
}

// EditorOpen reports whether the content editor is showing for this widget.
func (s TextState) EditorOpen() bool {
	return s.Phase == TextNew || s.Phase == TextEditing
}

// Placeholder reports whether the widget only exists locally.
func (s TextState) Placeholder() bool {
	return s.Phase == TextNew
}

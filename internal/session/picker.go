package session

// Modal identifies the exclusive overlay that currently owns input. At most
// one is active at a time.
type Modal int

const (
	ModalNone Modal = iota
	// ModalSearch and ModalLogSearch are the two typing modes.
	ModalSearch
	ModalLogSearch
	ModalStatusPicker
	ModalCategoryPicker
	ModalSeverityPicker
	ModalTimePicker
	ModalFileStatePicker
	ModalActionPicker
	ModalConfirm
	ModalDetails
	ModalUnitFile
	ModalHelp
)

// Picker is a cyclic cursor over a fixed option list. Confirm semantics live
// with the owner; the picker only tracks position.
type Picker struct {
	options []string
	cursor  int
}

// NewPicker builds a picker preselecting the option equal to current, or the
// first option when no entry matches.
func NewPicker(options []string, current string) Picker {
	p := Picker{options: options}
	for i, opt := range options {
		if opt == current {
			p.cursor = i
			break
		}
	}
	return p
}

// Options returns the fixed option list.
func (p *Picker) Options() []string {
	return p.options
}

// Cursor returns the highlighted option index.
func (p *Picker) Cursor() int {
	return p.cursor
}

// Selected returns the highlighted option value.
func (p *Picker) Selected() string {
	if len(p.options) == 0 {
		return ""
	}
	return p.options[p.cursor]
}

// Next advances the cursor, wrapping past the end.
func (p *Picker) Next() {
	if len(p.options) == 0 {
		return
	}
	p.cursor = (p.cursor + 1) % len(p.options)
}

// Prev moves the cursor back, wrapping past the start.
func (p *Picker) Prev() {
	if len(p.options) == 0 {
		return
	}
	p.cursor = (p.cursor - 1 + len(p.options)) % len(p.options)
}

package model

import "github.com/polkiloo/homecare/internal/pkg/money"

// MaxLineQuantity caps the quantity of a single medicine in one medicine order.
const MaxLineQuantity = 1000

// SelectionItem is a catalog item chosen by the caregiver together with its quantity.
type SelectionItem struct {
	Medicine Medicine
	Quantity int
}

// LineTotal returns unit price multiplied by quantity, failing with money.ErrOverflow
// when the product does not fit an int64.
func (i SelectionItem) LineTotal() (int64, error) {
	return money.Multiply(i.Medicine.Price, i.Quantity)
}

// Selection is the caregiver's medicine cart while finishing an order.
// Every catalog item appears at most once and its quantity never drops below one.
// Callers check the merged quantities against MaxLineQuantity.
type Selection struct {
	items []SelectionItem
}

// AddQuantity selects qty units of the medicine. Quantities below one count as one.
func (s *Selection) AddQuantity(m Medicine, qty int) {
	if qty < 1 {
		qty = 1
	}
	if i := s.index(m.ID); i >= 0 {
		s.items[i].Quantity += qty
		return
	}
	s.items = append(s.items, SelectionItem{Medicine: m, Quantity: qty})
}

// Items returns a copy of the selected items in selection order.
func (s *Selection) Items() []SelectionItem {
	out := make([]SelectionItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns number of distinct selected medicines.
func (s *Selection) Len() int {
	return len(s.items)
}

func (s *Selection) index(medicineID string) int {
	for i, item := range s.items {
		if item.Medicine.ID == medicineID {
			return i
		}
	}
	return -1
}

// LineSelection is the patient's choice of recommended lines to pay for.
type LineSelection struct {
	lines    []MedicineOrderLine
	selected map[string]bool
}

// NewLineSelection starts with nothing selected.
func NewLineSelection(lines []MedicineOrderLine) *LineSelection {
	return &LineSelection{lines: lines, selected: make(map[string]bool, len(lines))}
}

// SelectAll selects every line when all is true and clears the selection otherwise.
func (s *LineSelection) SelectAll(all bool) {
	s.selected = make(map[string]bool, len(s.lines))
	if !all {
		return
	}
	for _, line := range s.lines {
		s.selected[line.ID] = true
	}
}

// Toggle flips membership of the line. Unknown lines are rejected.
func (s *LineSelection) Toggle(lineID string) bool {
	if !s.known(lineID) {
		return false
	}
	if s.selected[lineID] {
		delete(s.selected, lineID)
	} else {
		s.selected[lineID] = true
	}
	return true
}

// Selected returns chosen lines in header order.
func (s *LineSelection) Selected() []MedicineOrderLine {
	out := make([]MedicineOrderLine, 0, len(s.selected))
	for _, line := range s.lines {
		if s.selected[line.ID] {
			out = append(out, line)
		}
	}
	return out
}

// Len returns number of selected lines.
func (s *LineSelection) Len() int {
	return len(s.selected)
}

// Charge returns the amount due for the current selection.
func (s *LineSelection) Charge(deliveryFee int64) int64 {
	return ChargeFor(s.Selected(), deliveryFee)
}

func (s *LineSelection) known(lineID string) bool {
	for _, line := range s.lines {
		if line.ID == lineID {
			return true
		}
	}
	return false
}

// ChargeFor sums line totals and adds the delivery fee. An empty selection costs nothing.
func ChargeFor(lines []MedicineOrderLine, deliveryFee int64) int64 {
	if len(lines) == 0 {
		return 0
	}
	var sum int64
	for _, line := range lines {
		sum += line.TotalPrice
	}
	return sum + deliveryFee
}

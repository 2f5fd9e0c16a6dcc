package sheet

import (
	"math"
	"testing"
)

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		copies        int
		expectedSlots int
		expectedCell  float64
	}{
		{4, 4, 200},
		{6, 6, 180},
		{8, 8, 150},
		// unsupported values use the 8 grid
		{5, 8, 150},
		{0, 8, 150},
		{-3, 8, 150},
		{12, 8, 150},
	}

	for _, tt := range tests {
		layout := LayoutFor(tt.copies)
		if len(layout.Slots) != tt.expectedSlots {
			t.Errorf("copies=%d: expected %d slots, got %d", tt.copies, tt.expectedSlots, len(layout.Slots))
		}
		if layout.CopiesPerPage != tt.expectedSlots {
			t.Errorf("copies=%d: expected %d copies per page, got %d", tt.copies, tt.expectedSlots, layout.CopiesPerPage)
		}
		if layout.CellWidth != tt.expectedCell || layout.CellHeight != tt.expectedCell {
			t.Errorf("copies=%d: expected cell %v, got %vx%v", tt.copies, tt.expectedCell, layout.CellWidth, layout.CellHeight)
		}
	}
}

func TestLayouts_FitOnPage(t *testing.T) {
	for copies, layout := range layouts {
		for i, slot := range layout.Slots {
			if slot.X < 0 || slot.Y < 0 ||
				slot.X+layout.CellWidth > PageWidth+1e-9 || slot.Y+layout.CellHeight > PageHeight+1e-9 {
				t.Errorf("copies=%d slot %d at (%v,%v) does not fit on the page", copies, i, slot.X, slot.Y)
			}
		}
	}
}

func TestLayout_FourSlotCoordinates(t *testing.T) {
	layout := LayoutFor(4)
	expected := []Point{
		{50, 641.8898},
		{322.6378, 641.8898},
		{50, 370.9449},
		{322.6378, 370.9449},
	}
	for i, p := range expected {
		if math.Abs(layout.Slots[i].X-p.X) > 1e-4 || math.Abs(layout.Slots[i].Y-p.Y) > 1e-4 {
			t.Errorf("Expected slot %d at %v, got %v", i, p, layout.Slots[i])
		}
	}
}

func TestPlan_PageCount(t *testing.T) {
	tests := []struct {
		images   int
		copies   int
		expected int
	}{
		{1, 4, 1},
		{4, 4, 1},
		{5, 4, 2},
		{9, 4, 3},
		{3, 6, 1},
		{7, 6, 2},
		{8, 8, 1},
		{9, 8, 2},
		{9, 5, 2},
		{0, 4, 0},
	}

	for _, tt := range tests {
		_, placements := Plan(tt.images, tt.copies)
		pages := 0
		if len(placements) > 0 {
			pages = placements[len(placements)-1].Page + 1
		}
		if pages != tt.expected {
			t.Errorf("images=%d copies=%d: expected %d pages, got %d", tt.images, tt.copies, tt.expected, pages)
		}
		if got := PageCount(tt.images, tt.copies); got != tt.expected {
			t.Errorf("images=%d copies=%d: expected PageCount %d, got %d", tt.images, tt.copies, tt.expected, got)
		}
	}
}

func TestPlan_ThreeImagesSixCopies(t *testing.T) {
	_, placements := Plan(3, 6)
	if len(placements) != 6 {
		t.Fatalf("Expected 6 placements, got %d", len(placements))
	}
	expectedImages := []int{0, 1, 2, 0, 1, 2}
	for i, p := range placements {
		if p.Page != 0 {
			t.Errorf("Expected placement %d on page 0, got %d", i, p.Page)
		}
		if p.Slot != i {
			t.Errorf("Expected placement %d in slot %d, got %d", i, i, p.Slot)
		}
		if p.Image != expectedImages[i] {
			t.Errorf("Expected placement %d to show image %d, got %d", i, expectedImages[i], p.Image)
		}
	}
}

func TestPlan_NewPageAtMultiples(t *testing.T) {
	_, placements := Plan(6, 4)
	for i, p := range placements {
		if p.Page != i/4 || p.Slot != i%4 {
			t.Errorf("Expected placement %d on page %d slot %d, got page %d slot %d", i, i/4, i%4, p.Page, p.Slot)
		}
		if i < 6 && p.Image != i {
			t.Errorf("Expected input order, placement %d shows image %d", i, p.Image)
		}
	}
}

func TestPlan_UnsupportedCopiesMatchesEight(t *testing.T) {
	_, eight := Plan(11, 8)
	for _, copies := range []int{3, 5, 7, 100} {
		_, got := Plan(11, copies)
		if len(got) != len(eight) {
			t.Fatalf("copies=%d: expected %d placements, got %d", copies, len(eight), len(got))
		}
		for i := range got {
			if got[i] != eight[i] {
				t.Errorf("copies=%d: placement %d differs: %+v vs %+v", copies, i, got[i], eight[i])
			}
		}
	}
}

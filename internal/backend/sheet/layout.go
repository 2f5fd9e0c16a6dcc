package sheet

// A4 page size in PDF points
const (
	PageWidth  = 595.2756
	PageHeight = 841.8898
)

// DefaultCopiesPerPage is used when a request does not choose a layout
const DefaultCopiesPerPage = 4

// fallbackCopiesPerPage is the layout used for every unsupported copies value
const fallbackCopiesPerPage = 8

// Point is a slot origin in PDF points, measured from the bottom-left page corner
type Point struct {
	X float64
	Y float64
}

// Layout is a fixed grid of photo slots on an A4 page
type Layout struct {
	CopiesPerPage int
	Slots         []Point
	CellWidth     float64
	CellHeight    float64
}

var layouts = map[int]Layout{
	4: {
		CopiesPerPage: 4,
		Slots: []Point{
			{50, PageHeight - 200}, {PageWidth/2 + 25, PageHeight - 200},
			{50, PageHeight/2 - 50}, {PageWidth/2 + 25, PageHeight/2 - 50},
		},
		CellWidth:  200,
		CellHeight: 200,
	},
	6: {
		CopiesPerPage: 6,
		Slots: []Point{
			{50, PageHeight - 180}, {PageWidth/2 + 25, PageHeight - 180},
			{50, PageHeight/2 - 20}, {PageWidth/2 + 25, PageHeight/2 - 20},
			{50, 100}, {PageWidth/2 + 25, 100},
		},
		CellWidth:  180,
		CellHeight: 180,
	},
	8: {
		CopiesPerPage: 8,
		Slots: []Point{
			{30, PageHeight - 150}, {PageWidth/3 + 20, PageHeight - 150}, {2*PageWidth/3 + 10, PageHeight - 150},
			{30, PageHeight/2 + 20}, {PageWidth/3 + 20, PageHeight/2 + 20}, {2*PageWidth/3 + 10, PageHeight/2 + 20},
			{30, 150}, {PageWidth/3 + 20, 150},
		},
		CellWidth:  150,
		CellHeight: 150,
	},
}

// LayoutFor returns the grid for copies. Any value other than 4, 6 or 8 gets the 8 grid,
// pagination included.
func LayoutFor(copies int) Layout {
	if l, ok := layouts[copies]; ok {
		return l
	}
	return layouts[fallbackCopiesPerPage]
}

// Placement is one drawn photo
type Placement struct {
	Page  int
	Slot  int
	Image int
	X     float64
	Y     float64
}

// Plan places imageCount photos on pages of the layout for copies. Photos are placed in input
// order and repeated in the same order until the last page is full, so a single photo fills a
// whole sheet. The page count is ceil(imageCount / copies per page).
func Plan(imageCount, copies int) (Layout, []Placement) {
	layout := LayoutFor(copies)
	if imageCount <= 0 {
		return layout, nil
	}

	perPage := layout.CopiesPerPage
	pages := (imageCount + perPage - 1) / perPage
	placements := make([]Placement, 0, pages*perPage)
	for i := 0; i < pages*perPage; i++ {
		slot := i % perPage
		placements = append(placements, Placement{
			Page:  i / perPage,
			Slot:  slot,
			Image: i % imageCount,
			X:     layout.Slots[slot].X,
			Y:     layout.Slots[slot].Y,
		})
	}
	return layout, placements
}

// PageCount returns the number of pages Plan produces
func PageCount(imageCount, copies int) int {
	perPage := LayoutFor(copies).CopiesPerPage
	return (imageCount + perPage - 1) / perPage
}

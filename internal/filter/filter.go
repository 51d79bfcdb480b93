package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Amna-05/quadro/internal/projection"
	"github.com/Amna-05/quadro/pkg/models"
)

// Dimension names one independently settable filter axis.
type Dimension string

const (
	DimText     Dimension = "text"
	DimStatus   Dimension = "status"
	DimQuadrant Dimension = "quadrant"
	DimCategory Dimension = "category"
)

// Chip is one active filter rendered for removal. Resetting its dimension
// on the composer clears exactly this filter.
type Chip struct {
	Dim   Dimension
	Label string
}

// Composer combines independent filter dimensions into a single predicate
// over the task collection. Dimensions AND together; an unset dimension
// matches everything. The composer also produces the active chip list and a
// stable fingerprint for projection memoization.
type Composer struct {
	text       string
	status     *models.Status
	quadrant   *models.Quadrant
	categoryID string
	categories map[string]models.Category
}

// NewComposer creates a composer with every dimension unset.
func NewComposer() *Composer {
	return &Composer{categories: make(map[string]models.Category)}
}

// SetCategories supplies the externally-owned category metadata used for
// name matching and chip labels.
func (c *Composer) SetCategories(categories []models.Category) {
	c.categories = make(map[string]models.Category, len(categories))
	for _, cat := range categories {
		c.categories[cat.ID] = cat
	}
}

// SetText sets the free-text dimension. Whitespace-only input clears it.
func (c *Composer) SetText(text string) {
	c.text = strings.TrimSpace(text)
}

// SetStatus sets the status equality dimension.
func (c *Composer) SetStatus(s models.Status) {
	c.status = &s
}

// SetQuadrant sets the quadrant equality dimension.
func (c *Composer) SetQuadrant(q models.Quadrant) {
	c.quadrant = &q
}

// SetCategory sets the category-id equality dimension.
func (c *Composer) SetCategory(id string) {
	c.categoryID = id
}

// Text returns the current free-text dimension, for echoing in inputs.
func (c *Composer) Text() string {
	return c.text
}

// Reset clears exactly one dimension back to match-everything.
func (c *Composer) Reset(dim Dimension) {
	switch dim {
	case DimText:
		c.text = ""
	case DimStatus:
		c.status = nil
	case DimQuadrant:
		c.quadrant = nil
	case DimCategory:
		c.categoryID = ""
	}
}

// ResetAll clears every dimension at once.
func (c *Composer) ResetAll() {
	c.text = ""
	c.status = nil
	c.quadrant = nil
	c.categoryID = ""
}

// Active reports whether any dimension is set.
func (c *Composer) Active() bool {
	return c.text != "" || c.status != nil || c.quadrant != nil || c.categoryID != ""
}

// Chips returns one chip per active dimension, in a fixed display order.
func (c *Composer) Chips() []Chip {
	var chips []Chip
	if c.text != "" {
		chips = append(chips, Chip{Dim: DimText, Label: fmt.Sprintf("Search: %q", c.text)})
	}
	if c.status != nil {
		chips = append(chips, Chip{Dim: DimStatus, Label: "Status: " + c.status.Label()})
	}
	if c.quadrant != nil {
		chips = append(chips, Chip{Dim: DimQuadrant, Label: "Quadrant: " + c.quadrant.Label()})
	}
	if c.categoryID != "" {
		chips = append(chips, Chip{Dim: DimCategory, Label: "Category: " + c.categoryName(c.categoryID)})
	}
	return chips
}

func (c *Composer) categoryName(id string) string {
	if cat, ok := c.categories[id]; ok && cat.Name != "" {
		return cat.Name
	}
	return id
}

// Predicate composes the active dimensions into one AND predicate. Returns
// nil when no dimension is set, which projection treats as keep-everything.
// The returned closure captures the dimension values at call time; mutating
// the composer afterwards does not affect it.
func (c *Composer) Predicate() projection.Predicate {
	if !c.Active() {
		return nil
	}

	text := strings.ToLower(c.text)
	status := c.status
	quadrant := c.quadrant
	categoryID := c.categoryID
	names := make(map[string]string, len(c.categories))
	for id, cat := range c.categories {
		names[id] = strings.ToLower(cat.Name)
	}

	return func(task models.Task) bool {
		if text != "" && !matchesText(task, text, names) {
			return false
		}
		if status != nil && task.Status != *status {
			return false
		}
		if quadrant != nil && task.Quadrant() != *quadrant {
			return false
		}
		if categoryID != "" && task.CategoryID != categoryID {
			return false
		}
		return true
	}
}

// matchesText reports whether the lowercased needle occurs in the task's
// title, description, or category name.
func matchesText(task models.Task, needle string, categoryNames map[string]string) bool {
	if strings.Contains(strings.ToLower(task.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(task.Description), needle) {
		return true
	}
	if name, ok := categoryNames[task.CategoryID]; ok && strings.Contains(name, needle) {
		return true
	}
	return false
}

// Fingerprint serializes the active dimensions into a stable string for
// projection memo keys. Equal composers produce equal fingerprints; an
// inactive composer produces the empty string.
func (c *Composer) Fingerprint() string {
	var parts []string
	if c.text != "" {
		parts = append(parts, "text="+strings.ToLower(c.text))
	}
	if c.status != nil {
		parts = append(parts, "status="+string(*c.status))
	}
	if c.quadrant != nil {
		parts = append(parts, "quadrant="+string(*c.quadrant))
	}
	if c.categoryID != "" {
		parts = append(parts, "category="+c.categoryID)
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// Spec builds the projection spec for the composer's current state.
func (c *Composer) Spec(groupBy projection.GroupBy, sortBy projection.SortBy) projection.Spec {
	return projection.Spec{
		GroupBy:   groupBy,
		SortBy:    sortBy,
		Filter:    c.Predicate(),
		FilterKey: c.Fingerprint(),
	}
}

package model

import "fmt"

// Label identifies one of the fixed animal classes. The integer value of a
// Label is its class index in every batch and logit vector, so the order of
// the constants below is load-bearing: it matches the label ids the training
// graph was built with.
type Label int

const (
	Dog Label = iota
	Cat
	Elephant
	Cow
)

// NumLabels is the size of the fixed label set.
const NumLabels = 4

// AllLabels returns every label in class-index order. Batch construction and
// result columns both iterate in this order.
func AllLabels() [NumLabels]Label {
	return [NumLabels]Label{Dog, Cat, Elephant, Cow}
}

// String returns the label's directory/display name.
func (l Label) String() string {
	switch l {
	case Dog:
		return "dog"
	case Cat:
		return "cat"
	case Elephant:
		return "elephant"
	case Cow:
		return "cow"
	}
	return fmt.Sprintf("Label(%d)", int(l))
}

// LabelNames returns the class names in class-index order.
func LabelNames() []string {
	names := make([]string, 0, NumLabels)
	for _, l := range AllLabels() {
		names = append(names, l.String())
	}
	return names
}

// ParseLabel maps a class name back to its Label.
func ParseLabel(s string) (Label, error) {
	for _, l := range AllLabels() {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("model: unknown label %q", s)
}

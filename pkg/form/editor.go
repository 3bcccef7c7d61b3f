package form

import (
	"fmt"
	"strings"
)

// Criteria returns a copy of the selected criteria list.
func (s *State) Criteria() []Criterion {
	list, _ := s.criteria()
	return cloneCriteria(list)
}

// AddCriterion selects a criterion, optionally with predefined options.
// Selecting an already selected criterion is a no-op.
func (s *State) AddCriterion(name string, options ...Option) error {
	if blank(name) {
		return fmt.Errorf("form: criterion name is required")
	}
	list, err := s.criteria()
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if indexOfCriterion(list, name) >= 0 {
		return nil
	}
	next := append(cloneCriteria(list), Criterion{Name: name, Options: cloneOptions(options)})
	return s.storeCriteria(next)
}

// RemoveCriterion deselects a criterion. Removing an absent one is a no-op.
func (s *State) RemoveCriterion(name string) error {
	list, err := s.criteria()
	if err != nil {
		return err
	}
	idx := indexOfCriterion(list, strings.TrimSpace(name))
	if idx < 0 {
		return nil
	}
	next := cloneCriteria(list)
	next = append(next[:idx], next[idx+1:]...)
	return s.storeCriteria(next)
}

// AddOption appends an option to the criterion at criterionIndex. An empty
// name becomes DefaultOptionName and a nil percentage becomes 0.
func (s *State) AddOption(criterionIndex int, name string, percentage *float64) error {
	list, err := s.criteria()
	if err != nil {
		return err
	}
	if err := checkIndex("criterion", criterionIndex, len(list)); err != nil {
		return err
	}
	if blank(name) {
		name = DefaultOptionName
	}
	if percentage == nil {
		percentage = Percent(0)
	}
	next := cloneCriteria(list)
	next[criterionIndex].Options = append(next[criterionIndex].Options, Option{Name: name, Percentage: Percent(*percentage)})
	return s.storeCriteria(next)
}

// RemoveOption drops one option of a criterion.
func (s *State) RemoveOption(criterionIndex, optionIndex int) error {
	list, err := s.criteria()
	if err != nil {
		return err
	}
	if err := checkIndex("criterion", criterionIndex, len(list)); err != nil {
		return err
	}
	options := list[criterionIndex].Options
	if err := checkIndex("option", optionIndex, len(options)); err != nil {
		return err
	}
	next := cloneCriteria(list)
	opts := next[criterionIndex].Options
	next[criterionIndex].Options = append(opts[:optionIndex], opts[optionIndex+1:]...)
	return s.storeCriteria(next)
}

// SetOption replaces the name and percentage of one option. A nil percentage
// clears the value, which makes the distribution group invalid.
func (s *State) SetOption(criterionIndex, optionIndex int, name string, percentage *float64) error {
	list, err := s.criteria()
	if err != nil {
		return err
	}
	if err := checkIndex("criterion", criterionIndex, len(list)); err != nil {
		return err
	}
	if err := checkIndex("option", optionIndex, len(list[criterionIndex].Options)); err != nil {
		return err
	}
	next := cloneCriteria(list)
	opt := Option{Name: name}
	if percentage != nil {
		opt.Percentage = Percent(*percentage)
	}
	next[criterionIndex].Options[optionIndex] = opt
	return s.storeCriteria(next)
}

func (s *State) criteria() ([]Criterion, error) {
	if s.listGroup == "" {
		return nil, &UnknownFieldError{Group: "", Field: "criteria"}
	}
	list, _ := s.groups[s.listGroup].values[s.listField].([]Criterion)
	return list, nil
}

func (s *State) storeCriteria(list []Criterion) error {
	_, err := s.SetField(s.listGroup, s.listField, list)
	return err
}

func checkIndex(kind string, idx, n int) error {
	if idx < 0 || idx >= n {
		return &IndexOutOfRangeError{Kind: kind, Index: idx, Len: n}
	}
	return nil
}

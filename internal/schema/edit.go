package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrFieldNotFound   = errors.New("field not found")
	ErrFieldLimit      = fmt.Errorf("form already has %d fields", MaxFields)
	ErrLastField       = errors.New("form must keep at least one field")
	ErrIndexOutOfRange = errors.New("field index out of range")
)

// AddField normalises f with the same rules as Clean and appends it. The id
// is suffixed if it collides with an existing one. The returned copy is the
// field as stored.
func (s *FormSchema) AddField(f Field) (Field, error) {
	if len(s.Fields) >= MaxFields {
		return Field{}, ErrFieldLimit
	}
	nf, err := normalizeField(f, len(s.Fields))
	if err != nil {
		return Field{}, err
	}
	nf.ID = uniqueID(nf.ID, s.idTaken(-1))
	s.Fields = append(s.Fields, nf)
	return nf.clone(), nil
}

// RemoveField deletes the field with id.
func (s *FormSchema) RemoveField(id string) error {
	for i := range s.Fields {
		if s.Fields[i].ID != id {
			continue
		}
		if len(s.Fields) == 1 {
			return ErrLastField
		}
		s.Fields = append(s.Fields[:i], s.Fields[i+1:]...)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
}

// MoveField moves the field at from so it ends up at to.
func (s *FormSchema) MoveField(from, to int) error {
	n := len(s.Fields)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d fields", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}
	f := s.Fields[from]
	if from < to {
		copy(s.Fields[from:to], s.Fields[from+1:to+1])
	} else {
		copy(s.Fields[to+1:from+1], s.Fields[to:from])
	}
	s.Fields[to] = f
	return nil
}

// UpdateField applies fn to a copy of the field with id, re-normalises the
// result and stores it. A changed id is kept unique.
func (s *FormSchema) UpdateField(id string, fn func(*Field)) error {
	for i := range s.Fields {
		if s.Fields[i].ID != id {
			continue
		}
		edited := s.Fields[i].clone()
		fn(&edited)
		nf, err := normalizeField(edited, i)
		if err != nil {
			return err
		}
		nf.ID = uniqueID(nf.ID, s.idTaken(i))
		s.Fields[i] = nf
		return nil
	}
	return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
}

func (s *FormSchema) idTaken(skip int) func(string) bool {
	return func(id string) bool {
		for i := range s.Fields {
			if i != skip && s.Fields[i].ID == id {
				return true
			}
		}
		return false
	}
}

func normalizeField(f Field, index int) (Field, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return Field{}, fmt.Errorf("encode field: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Field{}, fmt.Errorf("decode field: %w", err)
	}
	return cleanField(m, index), nil
}

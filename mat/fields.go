package mat

import (
	"fmt"
	"iter"
)

// fieldList is an insertion-ordered string-keyed map.
type fieldList struct {
	names  []string
	values map[string]Value
}

func (f *fieldList) set(name string, v Value) {
	if f.values == nil {
		f.values = make(map[string]Value)
	}
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = v
}

func (f *fieldList) get(name string) (Value, bool) {
	v, ok := f.values[name]
	return v, ok
}

func (f *fieldList) has(name string) bool {
	_, ok := f.values[name]
	return ok
}

func (f *fieldList) keys() []string {
	return append([]string(nil), f.names...)
}

func (f *fieldList) all() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, name := range f.names {
			if !yield(name, f.values[name]) {
				return
			}
		}
	}
}

// Vars is the set of named values held by one file, in file order.
// Names are unique; a name made of digits is an ordinary name.
type Vars struct {
	fields fieldList
}

// NewVars returns an empty variable set.
func NewVars() *Vars {
	return &Vars{}
}

// Add appends a variable. Adding a name twice fails with ErrDuplicateIdentifier.
func (v *Vars) Add(name string, value Value) error {
	if v.fields.has(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateIdentifier, name)
	}
	v.fields.set(name, value)
	return nil
}

// Get returns the variable stored under name.
func (v *Vars) Get(name string) (Value, bool) {
	return v.fields.get(name)
}

// Names returns the variable names in file order.
func (v *Vars) Names() []string {
	return v.fields.keys()
}

// Len returns the number of variables.
func (v *Vars) Len() int {
	return len(v.fields.names)
}

// All iterates over the variables in file order.
func (v *Vars) All() iter.Seq2[string, Value] {
	return v.fields.all()
}

// Fields iterates over the fields of the record in order.
func (r *Record) Fields() iter.Seq2[string, Value] {
	return r.fields.all()
}

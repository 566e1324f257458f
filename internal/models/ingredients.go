package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Requirement is one ingredient of a structured order together with the
// amount the model asked for, kept verbatim ("0.5kg", "4", ...).
type Requirement struct {
	Name   string
	Amount string
}

// Ingredients is the ordered set of required ingredients. It encodes as a JSON
// object and keeps the key order of the document it was decoded from.
type Ingredients []Requirement

// Names returns the ingredient names in order.
func (in Ingredients) Names() []string {
	names := make([]string, 0, len(in))
	for _, r := range in {
		names = append(names, r.Name)
	}
	return names
}

// Get returns the amount recorded for name.
func (in Ingredients) Get(name string) (string, bool) {
	for _, r := range in {
		if r.Name == name {
			return r.Amount, true
		}
	}
	return "", false
}

// Set adds or replaces the amount for name.
func (in *Ingredients) Set(name, amount string) {
	for i := range *in {
		if (*in)[i].Name == name {
			(*in)[i].Amount = amount
			return
		}
	}
	*in = append(*in, Requirement{Name: name, Amount: amount})
}

// MarshalJSON implements json.Marshaler
func (in Ingredients) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range in {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Amount)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Values may be strings or numbers.
func (in *Ingredients) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*in = Ingredients{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ingredients must be an object of ingredient name to amount")
	}

	out := Ingredients{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name := strings.TrimSpace(keyTok.(string))

		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		var amount string
		switch v := raw.(type) {
		case string:
			amount = strings.TrimSpace(v)
		case json.Number:
			amount = v.String()
		default:
			return fmt.Errorf("ingredient %q: amount must be a string or a number", name)
		}
		out.Set(name, amount)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*in = out
	return nil
}

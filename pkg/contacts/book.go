// Package contacts turns an address book into a word source. Contact names
// validate and complete like dictionary words, and the order of the parts of
// each name ("Ada" then "Lovelace") drives next-word predictions.
package contacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Contact is one address-book entry.
type Contact struct {
	Name     string `yaml:"name"`
	Nickname string `yaml:"nickname,omitempty"`
}

// Provider yields the current address book.
type Provider interface {
	Contacts(ctx context.Context) ([]Contact, error)
}

// List is a fixed, in-memory address book.
type List []Contact

// Contacts implements Provider.
func (l List) Contacts(context.Context) ([]Contact, error) {
	return append([]Contact(nil), l...), nil
}

// book is the on-disk layout of a contacts file.
type book struct {
	Contacts []Contact `yaml:"contacts"`
}

// File reads contacts from a YAML file:
//
//	contacts:
//	  - name: Ada Lovelace
//	    nickname: Countess
//
// A missing file is an empty address book.
type File struct {
	Path string
}

// Contacts implements Provider.
func (f File) Contacts(ctx context.Context) ([]Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read contacts file: %w", err)
	}

	var b book
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse contacts file %s: %w", f.Path, err)
	}
	return b.Contacts, nil
}

// SaveFile writes contacts in the layout File reads.
func SaveFile(path string, contacts []Contact) error {
	data, err := yaml.Marshal(book{Contacts: contacts})
	if err != nil {
		return fmt.Errorf("encode contacts: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write contacts file: %w", err)
	}
	return nil
}

// nameParts splits a display name into the words typed for it.
func nameParts(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
}

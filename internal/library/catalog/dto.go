package catalog

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ===== Requests =====

// FormValue carries a numeric field as submitted. HTML forms post strings and
// JSON clients may post either a number or a string; parsing is strict either way.
type FormValue string

func (v *FormValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = FormValue(n.String())
	return nil
}

func (v FormValue) trimmed() string { return strings.TrimSpace(string(v)) }

type BookRequest struct {
	Title            string    `form:"title" json:"title"`
	Quantity         FormValue `form:"quantity" json:"quantity"`
	AuthorID         FormValue `form:"author_id" json:"author_id"`
	PublisherID      FormValue `form:"publisher_id" json:"publisher_id"`
	NewAuthorName    string    `form:"new_author_name" json:"new_author_name"`
	NewPublisherName string    `form:"new_publisher_name" json:"new_publisher_name"`
}

type NameRequest struct {
	Name string `form:"name" json:"name"`
}

type VendorRequest struct {
	Name    string `form:"name" json:"name"`
	Contact string `form:"contact" json:"contact"`
}

// ===== Responses =====

type BookResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	AuthorID    *int64  `json:"author_id,omitempty"`
	Author      *string `json:"author,omitempty"`
	PublisherID *int64  `json:"publisher_id,omitempty"`
	Publisher   *string `json:"publisher,omitempty"`
	Quantity    int     `json:"quantity"`
}

type NamedResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type VendorResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// BookFormResponse feeds the add/edit book forms.
type BookFormResponse struct {
	Book       *BookResponse   `json:"book,omitempty"`
	Authors    []NamedResponse `json:"authors"`
	Publishers []NamedResponse `json:"publishers"`
}

type BookListResponse struct {
	Items      []BookResponse `json:"items"`
	Total      int            `json:"total"`
	NextOffset *int           `json:"next_offset,omitempty"`
}

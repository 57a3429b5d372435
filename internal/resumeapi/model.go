package resumeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a remote resume id. The API emits integers but string ids are accepted.
type ID string

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("resume id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits canonical numeric ids as numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// Resume is a record returned by the remote resume API.
type Resume struct {
	ID         ID             `json:"id"`
	Name       string         `json:"name"`
	Skills     string         `json:"skills"`
	Experience string         `json:"experience"`
	Projects   string         `json:"projects"`
	Bio        string         `json:"bio"`
	PhotoURL   string         `json:"photo_url"`
	Rating     float64        `json:"rating"`
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
	Extra      map[string]any `json:"-"`
}

var knownResumeKeys = map[string]struct{}{
	"id": {}, "name": {}, "skills": {}, "experience": {}, "projects": {},
	"bio": {}, "photo_url": {}, "rating": {}, "created_at": {}, "updated_at": {},
}

// UnmarshalJSON decodes known fields and keeps the rest in Extra.
func (r *Resume) UnmarshalJSON(data []byte) error {
	type plain Resume
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k, v := range all {
		if _, known := knownResumeKeys[k]; known {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[k] = v
	}
	*r = Resume(p)
	return nil
}

// Template is an entry of the remote template catalogue. Its shape is owned
// by the API, so it is kept as a generic object.
type Template map[string]any

// Photo is an image attached to a create or update request.
type Photo struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Payload is the normalized body submitted for create and update.
type Payload struct {
	Name       string `json:"name"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	Projects   string `json:"projects"`
	Bio        string `json:"bio"`
	Photo      *Photo `json:"-"`
}

// FormField is one text part of a multipart submission.
type FormField struct {
	Name  string
	Value string
}

// Fields returns the text parts in submission order.
func (p Payload) Fields() []FormField {
	return []FormField{
		{Name: "name", Value: p.Name},
		{Name: "skills", Value: p.Skills},
		{Name: "experience", Value: p.Experience},
		{Name: "projects", Value: p.Projects},
		{Name: "bio", Value: p.Bio},
	}
}

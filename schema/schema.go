// Package schema defines the message payloads exchanged with language models.
package schema

import "encoding/json"

// Schema is message schema interface
type Schema interface {
	// Attachement() returns schema attchement
	Attachement() *Attachement
}

type SchemaPointer interface {
	Schema
	SetAttachement(*Attachement)
}

// Stringify returns the text sent to the model for s
func Stringify(s Schema) string {
	switch v := s.(type) {
	case String:
		return string(v)
	case *String:
		return string(*v)
	case interface{ String() string }:
		return v.String()
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

func ToBytes(s Schema) []byte {
	return []byte(Stringify(s))
}

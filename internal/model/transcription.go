package model

import (
	"strconv"
)

// Attribute is a single typed value in a stored item. Exactly one of N or S
// is set: N for numbers (decimal string), S for strings.
type Attribute struct {
	N *string `json:"N,omitempty"`
	S *string `json:"S,omitempty"`
}

// NumberAttr builds a numeric attribute.
func NumberAttr(n string) Attribute {
	return Attribute{N: &n}
}

// StringAttr builds a string attribute.
func StringAttr(s string) Attribute {
	return Attribute{S: &s}
}

// Item is the raw stored representation of a transcription record, keyed by
// attribute name.
type Item map[string]Attribute

const (
	AttrID   = "id"
	AttrData = "data"
)

// Transcription is a stored transcription record
type Transcription struct {
	ID   int64
	Data string
}

// Key returns the store key for id.
func Key(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Item converts the record into its stored representation.
func (t Transcription) Item() Item {
	return Item{
		AttrID:   NumberAttr(Key(t.ID)),
		AttrData: StringAttr(t.Data),
	}
}

// Sentence is one timed sentence of a transcript
type Sentence struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Document is the payload serialized into a record's data attribute
type Document struct {
	Transcript string     `json:"transcript"`
	Sentences  []Sentence `json:"sentences"`
}

// CreateTranscriptionRequest is the POST /transcriptions body
type CreateTranscriptionRequest struct {
	ID   int64  `json:"id" binding:"required,gt=0"`
	Data string `json:"data" binding:"required,url"`
}

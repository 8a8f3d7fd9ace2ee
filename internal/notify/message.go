// Package notify delivers formatted messages to named channels.
package notify

import (
	"fmt"
	"strings"
	"time"
)

// Color is an RGB accent color for rich messages.
type Color int

const (
	ColorBlue  Color = 0x3498DB
	ColorGreen Color = 0x2ECC71
	ColorRed   Color = 0xE74C3C
	ColorGold  Color = 0xF1C40F
)

// Kind classifies a message for mirror filtering.
type Kind string

const (
	KindInfo   Kind = "info"
	KindAlert  Kind = "alert"
	KindDigest Kind = "digest"
)

// Field is a titled block inside a message.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// MaxFields is the most fields a channel message can carry.
const MaxFields = 25

// Message is a platform-neutral rich message.
type Message struct {
	Kind        Kind      `json:"kind,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Color       Color     `json:"color,omitempty"`
	Fields      []Field   `json:"fields,omitempty"`
	Footer      string    `json:"footer,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
}

// AddField appends a field and returns the message for chaining.
func (m *Message) AddField(name, value string, inline bool) *Message {
	m.Fields = append(m.Fields, Field{Name: name, Value: value, Inline: inline})
	return m
}

// Text renders the message as plain text, for mirrors and terminals.
func (m Message) Text() string {
	var b strings.Builder
	if m.Title != "" {
		b.WriteString(m.Title)
		b.WriteString("\n")
	}
	if m.Description != "" {
		b.WriteString(m.Description)
		b.WriteString("\n")
	}
	for _, f := range m.Fields {
		b.WriteString(fmt.Sprintf("\n%s\n%s\n", f.Name, f.Value))
	}
	if m.Footer != "" {
		b.WriteString("\n")
		b.WriteString(m.Footer)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

package parser

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Entry is one Q:/A:/C: block of a markdown note.
type Entry struct {
	Question string
	Answer   string
	Context  string
}

// FullAnswer is the answer with the context line, if any, kept after it in
// brackets.
func (e Entry) FullAnswer() string {
	if e.Context == "" {
		return e.Answer
	}
	return e.Answer + " [" + e.Context + "]"
}


type field int

const (
	none field = iota
	question
	answer
	context
)

var prefixes = []struct {
	prefix string
	field  field
}{
	{"Q:", question},
	{"A:", answer},
	{"C:", context},
}

const separator = "---"

// ParseFile reads a file from the given path and extracts all entries.
func ParseFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// entryBuilder accumulates the lines of the field being read.
type entryBuilder struct {
	entries []Entry
	cur     Entry
	field   field
	lines   []string
}

func (b *entryBuilder) flushField() {
	if len(b.lines) == 0 {
		return
	}
	// Blank lines between entries belong to no field.
	text := strings.TrimRight(strings.Join(b.lines, "\n"), " \t\n")
	switch b.field {
	case question:
		b.cur.Question = text
	case answer:
		b.cur.Answer = text
	case context:
		b.cur.Context = text
	}
	b.lines = nil
}

func (b *entryBuilder) finish() {
	b.flushField()
	if b.cur.Question != "" {
		b.entries = append(b.entries, b.cur)
	}
	b.cur = Entry{}
	b.field = none
}

func (b *entryBuilder) start(f field, rest string) {
	b.flushField()
	// A new question always starts a new entry.
	if f == question && b.field != none {
		b.finish()
	}
	b.field = f
	b.lines = append(b.lines, strings.TrimPrefix(rest, " "))
}

// Parse reads from an io.Reader and extracts all entries. Blocks without a
// question are dropped; blocks without an answer are kept for the caller to
// reject.
func Parse(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	b := &entryBuilder{}

scan:
	for scanner.Scan() {
		line := scanner.Text()
		if line == separator {
			b.finish()
			continue
		}
		for _, p := range prefixes {
			if strings.HasPrefix(line, p.prefix) {
				b.start(p.field, line[len(p.prefix):])
				continue scan
			}
		}
		if b.field != none {
			b.lines = append(b.lines, line)
		}
	}
	b.finish()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.entries, nil
}

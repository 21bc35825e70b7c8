/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package tools

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter asks the operator a question and returns the answer.
type Prompter interface {
	Prompt(question string) (string, error)
}

// LinePrompter reads one line per question from In, writing the question
// to Out first.
type LinePrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewLinePrompter returns a prompter bound to the given streams.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// NewTerminalPrompter returns a prompter bound to stdin and stderr.
func NewTerminalPrompter() *LinePrompter {
	return NewLinePrompter(os.Stdin, os.Stderr)
}

// Prompt prints the question and returns the trimmed answer. A closed
// input with no pending text yields an empty answer and io.EOF.
func (p *LinePrompter) Prompt(question string) (string, error) {
	fmt.Fprint(p.out, question)
	text, err := p.reader.ReadString('\n')
	text = strings.TrimSpace(text)
	if err != nil && (err != io.EOF || text == "") {
		return text, err
	}
	return text, nil
}

func ConfirmOperation(s string) bool {
	answer, _ := NewTerminalPrompter().Prompt(fmt.Sprintf("%s [y/N]: ", s))
	return strings.ToLower(answer) == "y"
}

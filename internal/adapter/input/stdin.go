package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/jmylchreest/lmk/internal/model"
	"github.com/jmylchreest/lmk/internal/server"
)

// maxInputSize caps how much standard input is read.
const maxInputSize = 10 * 1024 * 1024

// StdinAdapter reads requests from standard input.
type StdinAdapter struct {
	reader io.Reader
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter() *StdinAdapter {
	return &StdinAdapter{reader: os.Stdin}
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader) *StdinAdapter {
	return &StdinAdapter{reader: r}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// Requests reads standard input in one of three shapes:
//
//  1. a JSON array of request objects
//  2. a single JSON request object, or one object per line
//  3. plain text, where the first line is the title and the rest the body
//
// JSON entries are parsed as leniently as the HTTP endpoint parses them.
func (a *StdinAdapter) Requests(ctx context.Context, defaults model.Request) ([]model.Request, error) {
	data, err := readAll(ctx, a.reader)
	if err != nil {
		return nil, &AdapterError{Source: a.Name(), Message: "failed to read stdin", Err: err}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	switch data[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, &AdapterError{Source: a.Name(), Message: "failed to parse JSON input", Err: err}
		}
		requests := make([]model.Request, 0, len(entries))
		for _, entry := range entries {
			requests = append(requests, server.ParseRequest(entry, defaults))
		}
		return requests, nil

	case '{':
		if json.Valid(data) {
			return []model.Request{server.ParseRequest(data, defaults)}, nil
		}
		var requests []model.Request
		for line := range bytes.Lines(data) {
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			requests = append(requests, server.ParseRequest(line, defaults))
		}
		return requests, nil

	default:
		return []model.Request{parseText(string(data), defaults)}, nil
	}
}

func parseText(text string, defaults model.Request) model.Request {
	req := defaults
	title, body, _ := strings.Cut(text, "\n")
	req.Title = strings.TrimSpace(title)
	req.Body = strings.TrimSpace(body)
	return req
}

// readAll reads r line by line so a cancelled context stops the read
// between lines.
func readAll(ctx context.Context, r io.Reader) ([]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxInputSize)

	var data []byte
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data = append(data, scanner.Bytes()...)
		data = append(data, '\n')
		if len(data) > maxInputSize {
			return nil, bufio.ErrTooLong
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

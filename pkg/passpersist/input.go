package passpersist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

type inputLine struct {
	text    string
	tooLong bool
}

// lineReader reads lines from the agent in its own goroutine so the serve
// loop can stop on context cancellation while a read is blocked.
type lineReader struct {
	lines chan inputLine
	done  chan struct{}
	err   error // set before lines is closed
}

func newLineReader(r io.Reader) *lineReader {
	in := &lineReader{
		lines: make(chan inputLine),
		done:  make(chan struct{}),
	}

	go in.run(r)

	return in
}

func (in *lineReader) run(r io.Reader) {
	defer close(in.lines)

	br := bufio.NewReaderSize(r, 4096)

	for {
		line, err := readLine(br)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				in.err = fmt.Errorf("%w: %w", errReadInput, err)
			}

			return
		}

		select {
		case in.lines <- line:
		case <-in.done:
			return
		}
	}
}

// readLine returns the next line without its terminator. Anything past
// maxLineLength is discarded up to the next newline and the line is
// flagged tooLong. A final line without a newline is still returned.
func readLine(br *bufio.Reader) (inputLine, error) {
	var (
		buf     []byte
		tooLong bool
	)

	for {
		chunk, err := br.ReadSlice('\n')

		if !tooLong {
			if len(buf)+len(chunk) > maxLineLength+1 {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if len(buf) == 0 && !tooLong {
				return inputLine{}, io.EOF
			}
		case err != nil:
			return inputLine{}, err
		}

		if tooLong {
			return inputLine{tooLong: true}, nil
		}

		return inputLine{text: strings.TrimSpace(string(buf))}, nil
	}
}

// next blocks until a line is available. It returns io.EOF once the agent
// closes the pipe and errLineTooLong for a line that was cut off.
func (in *lineReader) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-in.lines:
		if !ok {
			if in.err != nil {
				return "", in.err
			}

			return "", io.EOF
		}

		if line.tooLong {
			return "", errLineTooLong
		}

		return line.text, nil
	}
}

func (in *lineReader) stop() {
	close(in.done)
}

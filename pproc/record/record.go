package record

import (
	"bufio"
	"bytes"
	"errors"
)

// ErrInvalidSplitter is returned by a splitter created without a tag name.
var ErrInvalidSplitter = errors.New("invalid splitter")

// TagSplitter returns a bufio.SplitFunc that yields complete XML elements of
// the given name, e.g. "record" for an OAI-PMH response. Anything between
// elements is dropped, as is a truncated element at the end of the input.
// The size of a single element is bounded by the scanner buffer.
func TagSplitter(tagName string) bufio.SplitFunc {
	if tagName == "" {
		return func(data []byte, atEOF bool) (int, []byte, error) {
			return 0, nil, ErrInvalidSplitter
		}
	}
	openTag := []byte("<" + tagName)
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		start, end := findFirstCompleteTag(data, tagName)
		switch {
		case start == -1 && atEOF:
			return len(data), nil, nil
		case start == -1:
			// An opening tag may straddle the buffer boundary.
			if keep := len(openTag); len(data) > keep {
				return len(data) - keep, nil, nil
			}
			return 0, nil, nil
		case end == -1 && atEOF:
			return len(data), nil, nil
		case end == -1:
			return start, nil, nil
		default:
			return end, data[start:end], nil
		}
	}
}

func isValidTagTerminator(ch byte) bool {
	switch ch {
	case '>', ' ', '/', '\n', '\t', '\r':
		return true
	}
	return false
}

// isOpenTag reports whether an opening tag starts at offset i; "<recordset"
// does not open a "record".
func isOpenTag(input []byte, i, n int) bool {
	return i+n >= len(input) || isValidTagTerminator(input[i+n])
}

// findFirstCompleteTag returns the offsets of the first complete element with
// the given name. If an element starts but does not end within input, end
// is -1. If no element starts, both are -1.
func findFirstCompleteTag(input []byte, tagName string) (start, end int) {
	var (
		openTag  = []byte("<" + tagName)
		closeTag = []byte("</" + tagName + ">")
		i        = 0
	)
	for {
		k := bytes.Index(input[i:], openTag)
		if k == -1 {
			return -1, -1
		}
		start = i + k
		if isOpenTag(input, start, len(openTag)) {
			break
		}
		i = start + 1
	}
	gt := bytes.IndexByte(input[start:], '>')
	if gt == -1 {
		return start, -1
	}
	openEnd := start + gt
	if input[openEnd-1] == '/' {
		return start, openEnd + 1
	}
	var (
		depth = 1
		j     = openEnd + 1
	)
	for depth > 0 {
		nextClose := bytes.Index(input[j:], closeTag)
		if nextClose == -1 {
			return start, -1
		}
		nextClose += j
		nextOpen := bytes.Index(input[j:nextClose], openTag)
		if nextOpen != -1 {
			nextOpen += j
			if isOpenTag(input, nextOpen, len(openTag)) {
				depth++
			}
			j = nextOpen + 1
			continue
		}
		depth--
		j = nextClose + len(closeTag)
	}
	return start, j
}

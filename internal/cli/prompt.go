package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// stdioPrompter asks questions on the command's streams. Selection accepts a
// 1-based number; empty input takes the first option.
type stdioPrompter struct {
	in  io.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *stdioPrompter {
	return &stdioPrompter{in: in, out: out}
}

func (p *stdioPrompter) Select(label string, options []string) (int, error) {
	fmt.Fprintf(p.out, "%s:\n", label)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprintf(p.out, "Choice [1]: ")

	line, err := p.readLine()
	if err != nil {
		return 0, err
	}
	if line == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(options) {
		return 0, fmt.Errorf("choice %q is not between 1 and %d", line, len(options))
	}
	return n - 1, nil
}

func (p *stdioPrompter) Input(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return "", fmt.Errorf("%s must not be empty", label)
	}
	return line, nil
}

func (p *stdioPrompter) readLine() (string, error) {
	reader := bufio.NewReader(p.in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

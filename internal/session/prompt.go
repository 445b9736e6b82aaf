package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

type promptValidator func(string) (bool, string)

type promptConfig struct {
	tries     int
	validator promptValidator
}

type promptOption func(*promptConfig)

func withValidator(v promptValidator) promptOption {
	return func(cfg *promptConfig) {
		cfg.validator = v
	}
}

func withMaxTries(i int) promptOption {
	return func(cfg *promptConfig) {
		cfg.tries = i
	}
}

// lineConn reads lines from and writes text to a text session.
type lineConn struct {
	r *bufio.Reader
	w io.Writer
}

func newLineConn(rw io.ReadWriter) *lineConn {
	return &lineConn{r: bufio.NewReader(rw), w: rw}
}

// readLine returns the next line without its line ending. A final
// unterminated line is returned before io.EOF.
func (c *lineConn) readLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *lineConn) write(s string) error {
	_, err := io.WriteString(c.w, s)
	return err
}

func (c *lineConn) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(c.w, format, args...)
	return err
}

func (c *lineConn) prompt(prompt string, opts ...promptOption) (string, error) {
	config := &promptConfig{}
	for _, opt := range opts {
		opt(config)
	}

	tries := 0
	for {
		if err := c.write(prompt); err != nil {
			return "", err
		}

		input, err := c.readLine()
		if err != nil {
			return "", err
		}

		if config.validator != nil {
			ok, msg := config.validator(input)
			if !ok {
				if err := c.write(msg); err != nil {
					return "", err
				}

				tries++
				if config.tries > 0 && config.tries == tries {
					_ = c.write("Too many tries.\n")
					return "", ErrTooManyTries
				}
				continue
			}
		}

		return input, nil
	}
}

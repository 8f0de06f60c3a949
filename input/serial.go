package input

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/term"

	"callboard/ticket"
)

// Commands is the set of serial bytes that submit a ticket: one letter per
// class. It is the only filter between the line and the dispatcher.
var Commands = classLetters()

func classLetters() mapset.Set[byte] {
	letters := mapset.NewSet[byte]()
	for _, class := range ticket.Classes {
		letters.Add(class.Letter())
	}
	return letters
}

// interrupt is what Ctrl-C sends once a terminal is in raw mode.
const interrupt = 0x03

// SerialReader turns the single-byte command stream into ticket requests.
type SerialReader struct {
	r           *bufio.Reader
	buttons     *EdgeSource
	onInterrupt func()
	logger      *slog.Logger
}

func NewSerialReader(r io.Reader, logger *slog.Logger) *SerialReader {
	return &SerialReader{r: bufio.NewReader(r), logger: logger}
}

// ForwardButtons passes the button bytes ('1' and '2') found on the line to
// src, so one terminal can both issue and call tickets.
func (s *SerialReader) ForwardButtons(src *EdgeSource) {
	s.buttons = src
}

// OnInterrupt sets a hook for Ctrl-C read from a raw terminal.
func (s *SerialReader) OnInterrupt(fn func()) {
	s.onInterrupt = fn
}

// Run forwards one class per command byte to out until the stream ends or
// ctx is done. Button bytes go to the forwarded EdgeSource, if any. Other
// bytes are skipped without reply. A clean end of stream returns nil.
func (s *SerialReader) Run(ctx context.Context, out chan<- ticket.Class) error {
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("Serial input closed")
				return nil
			}
			return fmt.Errorf("serial read: %w", err)
		}

		if b == interrupt && s.onInterrupt != nil {
			s.onInterrupt()
			return nil
		}

		if button, ok := buttonBytes[b]; ok && s.buttons != nil {
			if !s.buttons.Emit(button) {
				s.logger.Debug("Button edge dropped", "button", button)
			}
			continue
		}

		if !Commands.Contains(b) {
			s.logger.Debug("Ignoring serial byte", "byte", fmt.Sprintf("%q", b))
			continue
		}

		select {
		case out <- ticket.ClassForLetter(b):
		case <-ctx.Done():
			return nil
		}
	}
}

// Port is an open serial source. Raw is set when a terminal was switched
// to raw mode, which also turns off Ctrl-C signalling and output newline
// translation.
type Port struct {
	io.Reader
	Raw   bool
	stdin bool
	close func() error
}

func (p *Port) Close() error {
	return p.close()
}

// Output returns w wrapped so newlines still return the carriage when the
// port put the process's own terminal into raw mode. Otherwise w is
// returned as is.
func (p *Port) Output(w io.Writer) io.Writer {
	if !p.Raw || !p.stdin {
		return w
	}
	return &crlfWriter{w: w}
}

// crlfWriter turns "\n" into "\r\n".
type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// OpenSerial opens the command source. "-" reads stdin. A terminal is
// switched to raw mode so each keypress arrives as one byte; Close restores it.
func OpenSerial(path string) (*Port, error) {
	f := os.Stdin
	owned := false
	if path != "-" && path != "" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open serial device %s: %w", path, err)
		}
		owned = true
	}

	closeFile := func() error {
		if owned {
			return f.Close()
		}
		return nil
	}

	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return &Port{Reader: f, close: closeFile}, nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		_ = closeFile()
		return nil, fmt.Errorf("set raw mode on %s: %w", f.Name(), err)
	}

	return &Port{
		Reader: f,
		Raw:    true,
		stdin:  !owned,
		close: func() error {
			restoreErr := term.Restore(fd, state)
			if err := closeFile(); err != nil {
				return err
			}
			return restoreErr
		},
	}, nil
}

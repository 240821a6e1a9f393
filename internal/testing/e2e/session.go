package e2e

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

// Config describes a program to run under a pseudo terminal.
type Config struct {
	Command string
	Args    []string
	Dir     string
	Env     []string
	Rows    uint16
	Cols    uint16
	Timeout time.Duration
}

// Session drives an interactive program through a PTY and records everything it draws.
type Session struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	cancel context.CancelFunc
	rows   int
	cols   int

	mu     sync.Mutex
	output bytes.Buffer
	done   chan struct{}
	err    error
}

// Start launches cfg.Command attached to a new PTY.
func Start(cfg Config) (*Session, error) {
	if cfg.Rows == 0 {
		cfg.Rows = 30
	}
	if cfg.Cols == 0 {
		cfg.Cols = 100
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = cfg.Dir
	cmd.Env = append(os.Environ(), cfg.Env...)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: cfg.Rows, Cols: cfg.Cols})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start %s under pty: %w", cfg.Command, err)
	}

	s := &Session{
		cmd:    cmd,
		ptmx:   ptmx,
		cancel: cancel,
		rows:   int(cfg.Rows),
		cols:   int(cfg.Cols),
		done:   make(chan struct{}),
	}
	go s.capture()
	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	}()
	return s, nil
}

func (s *Session) capture() {
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.output.Write(buf[:n])
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Send types keys into the program.
func (s *Session) Send(keys string) error {
	_, err := io.WriteString(s.ptmx, keys)
	return err
}

// Output returns everything written so far, escape sequences included.
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output.String()
}

// Screen replays the output onto a virtual terminal of the session's size.
func (s *Session) Screen() *Screen {
	return Replay(s.Output(), s.rows, s.cols)
}

// WaitForScreen polls until text is visible on the current screen.
func (s *Session) WaitForScreen(text string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.Screen().Contains(text) {
			return nil
		}
		select {
		case <-s.done:
			return fmt.Errorf("program exited before %q appeared:\n%s", text, StripANSI(s.Output()))
		case <-time.After(50 * time.Millisecond):
		}
	}
	return fmt.Errorf("timeout waiting for %q, screen:\n%s", text, s.Screen())
}

// Wait blocks until the program exits or timeout passes.
func (s *Session) Wait(timeout time.Duration) error {
	select {
	case <-s.done:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.err
	case <-time.After(timeout):
		return errors.New("program did not exit")
	}
}

// Close kills the program if it still runs and releases the PTY.
func (s *Session) Close() error {
	select {
	case <-s.done:
	default:
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		<-s.done
	}
	s.cancel()
	err := s.ptmx.Close()
	if err != nil && !strings.Contains(err.Error(), "file already closed") {
		return err
	}
	return nil
}

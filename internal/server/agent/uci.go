package agent

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Engine is the name of the agent backed by an external UCI engine
const Engine = "engine"

const (
	handshakeTimeout = 5 * time.Second
	defaultMoveTime  = 200 * time.Millisecond
)

var errEngineClosed = errors.New("engine closed unexpectedly")

// UCIAgent drives an external UCI engine process such as stockfish. One
// search runs at a time.
type UCIAgent struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	lines    chan string
	moveTime time.Duration

	mu     sync.Mutex
	closed bool
}

// NewUCI starts the engine at path and completes the uci/isready handshake.
// moveTime bounds each search; zero uses a short default.
func NewUCI(path string, moveTime time.Duration, args ...string) (*UCIAgent, error) {
	cmd := exec.Command(path, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}

	if moveTime <= 0 {
		moveTime = defaultMoveTime
	}
	u := &UCIAgent{
		cmd:      cmd,
		stdin:    stdin,
		lines:    make(chan string, 64),
		moveTime: moveTime,
	}
	go u.readLoop(stdout)

	u.send("uci")
	if _, err := u.waitFor("uciok", handshakeTimeout); err != nil {
		u.Close()
		return nil, err
	}
	u.send("isready")
	if _, err := u.waitFor("readyok", handshakeTimeout); err != nil {
		u.Close()
		return nil, err
	}
	return u, nil
}

// readLoop is the only reader of the engine's stdout
func (u *UCIAgent) readLoop(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		u.lines <- sc.Text()
	}
	close(u.lines)
}

func (u *UCIAgent) send(cmd string) {
	fmt.Fprintln(u.stdin, cmd)
}

// waitFor returns the first line starting with prefix, discarding the rest
func (u *UCIAgent) waitFor(prefix string, timeout time.Duration) (string, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case line, ok := <-u.lines:
			if !ok {
				return "", errEngineClosed
			}
			if strings.HasPrefix(line, prefix) {
				return line, nil
			}
		case <-deadline.C:
			return "", fmt.Errorf("timeout waiting for %s", prefix)
		}
	}
}

func (u *UCIAgent) Name() string { return Engine }

func (u *UCIAgent) SelectMove(fen string) (string, bool, error) {
	if _, moves, err := legalMoves(fen); err != nil || len(moves) == 0 {
		return "", false, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return "", false, errEngineClosed
	}

	u.send("position fen " + fen)
	u.send(fmt.Sprintf("go movetime %d", u.moveTime.Milliseconds()))

	line, err := u.waitFor("bestmove", 2*u.moveTime+time.Second)
	if err != nil {
		// Resync so a late bestmove is not taken as the answer to the next search
		u.send("stop")
		if _, serr := u.waitFor("bestmove", time.Second); serr != nil {
			u.closed = true
			u.cmd.Process.Kill()
		}
		return "", false, err
	}
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[1] == "(none)" || fields[1] == "0000" {
		return "", false, nil
	}
	return strings.ToLower(fields[1]), true, nil
}

// Close asks the engine to quit and kills it if it lingers
func (u *UCIAgent) Close() error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return nil
	}
	u.closed = true
	u.send("quit")
	u.stdin.Close()
	u.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- u.cmd.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(time.Second):
		return u.cmd.Process.Kill()
	}
}

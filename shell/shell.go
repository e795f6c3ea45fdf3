// Package shell is a line-oriented front-end to the diagram store. It runs
// on top of readline for interactive use; Exec runs single command lines
// and is what scripts and tests drive.
package shell

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"nodeboard/diagram"
	"nodeboard/store"
)

// ErrQuit is returned by Exec when the user asks to leave.
var ErrQuit = errors.New("quit requested")

// shortID is how many leading id characters listings show.
const shortID = 8

// Shell executes commands against a Store and prints to out.
type Shell struct {
	store *store.Store
	out   io.Writer
	log   *zap.Logger
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *Shell) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a shell over st writing to out.
func New(st *store.Store, out io.Writer, opts ...Option) *Shell {
	s := &Shell{store: st, out: out, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prompt names the active diagram.
func (s *Shell) Prompt() string {
	if d, ok := s.store.Active(); ok {
		return fmt.Sprintf("nodeboard [%s]> ", d.Name)
	}
	return "nodeboard> "
}

// Run reads commands from rl until quit or end of input. Command errors
// are printed and the loop continues.
func (s *Shell) Run(rl *readline.Instance) error {
	for {
		rl.SetPrompt(s.Prompt())
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(s.out, "Use 'quit' to exit.")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := s.Exec(line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			fmt.Fprintln(s.out, "Error:", err)
		}
	}
}

// Exec runs one command line.
func (s *Shell) Exec(line string) error {
	args := ParseArgs(strings.TrimSpace(line))
	if len(args) == 0 {
		return nil
	}

	s.log.Debug("shell command", zap.String("command", args[0]), zap.Int("args", len(args)-1))
	if err := s.execute(args[0], args[1:]); err != nil {
		return err
	}
	if mutating[args[0]] {
		s.reportPersistence()
	}
	return nil
}

func (s *Shell) reportPersistence() {
	if err := s.store.PersistError(); err != nil {
		fmt.Fprintf(s.out, "warning: changes kept in memory only: %v\n", err)
	}
}

// ParseArgs splits input on spaces, keeping double-quoted runs together.
func ParseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes, quoted := false, false

	flush := func() {
		if current.Len() > 0 || quoted {
			args = append(args, current.String())
		}
		current.Reset()
		quoted = false
	}

	for _, char := range input {
		switch {
		case char == '"':
			inQuotes = !inQuotes
			quoted = true
		case char == ' ' && !inQuotes:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()
	return args
}

// resolve maps a full id or an unambiguous prefix of one to the full id.
func resolve(kind, prefix string, ids []string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("empty %s id", kind)
	}
	var matches []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no %s matches %q", kind, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, prefix, len(matches))
	}
}

func (s *Shell) diagramID(prefix string) (string, error) {
	var ids []string
	for _, d := range s.store.Diagrams() {
		ids = append(ids, d.ID)
	}
	return resolve("diagram", prefix, ids)
}

func (s *Shell) nodeID(prefix string) (string, error) {
	var ids []string
	for _, n := range s.store.Nodes() {
		ids = append(ids, n.ID)
	}
	return resolve("node", prefix, ids)
}

func (s *Shell) connectionID(prefix string) (string, error) {
	var ids []string
	for _, c := range s.store.Connections() {
		ids = append(ids, c.ID)
	}
	return resolve("connection", prefix, ids)
}

// current is the diagram being edited, or an empty unnamed board when
// every diagram has been deleted.
func (s *Shell) current() *diagram.Diagram {
	if d, ok := s.store.Active(); ok {
		return &d
	}
	return &diagram.Diagram{Nodes: s.store.Nodes(), Connections: s.store.Connections()}
}

func short(id string) string {
	if len(id) > shortID {
		return id[:shortID]
	}
	return id
}

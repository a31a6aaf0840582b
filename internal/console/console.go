// Package console is a line-oriented front end over the device registry:
// the pmic and regulator commands plus script execution. The selected
// devices live in a Session value.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"pmic-go/errcode"
	"pmic-go/internal/dm"
)

// Session holds the device cursors of one console.
type Session struct {
	reg  *dm.Registry
	out  io.Writer
	pmic dm.Handle
	cur  dm.Handle
}

func NewSession(r *dm.Registry, out io.Writer) *Session {
	return &Session{reg: r, out: out, pmic: dm.NoHandle, cur: dm.NoHandle}
}

type command func(s *Session, args []string) error

var groups = map[string]map[string]command{
	"pmic": {
		"list":  pmicList,
		"dev":   pmicDev,
		"dump":  pmicDump,
		"read":  pmicRead,
		"write": pmicWrite,
	},
	"regulator": {
		"list":    regList,
		"dev":     regDev,
		"info":    regInfo,
		"status":  regStatus,
		"value":   regValue,
		"current": regCurrent,
		"mode":    regMode,
		"enable":  regEnable,
		"disable": regDisable,
	},
}

func usage(msg string) error { return errcode.New(errcode.InvalidParams, "console", msg) }

// Exec runs one command line. Blank lines and '#' comments do nothing.
func (s *Session) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	argv, err := shlex.Split(line)
	if err != nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "console", Msg: "tokenize", Err: err}
	}
	if len(argv) == 0 {
		return nil
	}
	sub, ok := groups[argv[0]]
	if !ok {
		return usage("unknown command " + argv[0])
	}
	if len(argv) < 2 {
		return usage(argv[0] + " needs a subcommand")
	}
	cmd, ok := sub[argv[1]]
	if !ok {
		return usage("unknown " + argv[0] + " subcommand " + argv[1])
	}
	return cmd(s, argv[2:])
}

// Run executes r line by line and stops at the first failing command.
func (s *Session) Run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		if err := s.Exec(sc.Text()); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return sc.Err()
}

// resolve accepts a device name or a handle number.
func (s *Session) resolve(arg string) (dm.Handle, error) {
	if h, err := s.reg.Lookup(arg); err == nil {
		return h, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return dm.NoHandle, errcode.New(errcode.NotFound, "console", "no device "+arg)
	}
	if _, err := s.reg.Info(dm.Handle(n)); err != nil {
		return dm.NoHandle, err
	}
	return dm.Handle(n), nil
}

func (s *Session) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func maxArgs(args []string, n int, cmd string) error {
	if len(args) > n {
		return usage("too many arguments to " + cmd)
	}
	return nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "console", Msg: "number " + s, Err: err}
	}
	return int(v), nil
}

// Serve is the interactive loop: it prints prompt, runs each line and
// reports failures without stopping. It returns at end of input.
func (s *Session) Serve(r io.Reader, prompt string) error {
	sc := bufio.NewScanner(r)
	s.printf("%s", prompt)
	for sc.Scan() {
		if err := s.Exec(sc.Text()); err != nil {
			s.printf("error: %v\n", err)
		}
		s.printf("%s", prompt)
	}
	return sc.Err()
}

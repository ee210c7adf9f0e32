package sh

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/xmodem.go/pkg/link"
	"github.com/robotalks/xmodem.go/pkg/term"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool

	Shell   *ishell.Shell
	Session *term.Session
}

const (
	shellKey       = "$shell"
	closedPrompt   = "[closed] > "
	openPromptFmt  = "[%s] > "
	noDeviceErrMsg = "no device specified"
)

var (
	evalOnly bool

	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
		&SendCmd,
		&StatusCmd,
	}
)

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// New creates a new shell.
func New(session *term.Session) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		Shell:       ishell.New(),
		Session:     session,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Open opens the link to device, or the configured device if empty.
func (s *Shell) Open(device string) error {
	if device != "" && device != s.Session.Config.Device {
		s.Close()
		s.Session.Config.Device = device
	}
	if s.Session.Config.Device == "" {
		return fmt.Errorf(noDeviceErrMsg)
	}
	if err := s.Session.Open(); err != nil {
		return err
	}
	s.setPrompt(fmt.Sprintf(openPromptFmt, s.Session.Config.Device))
	return nil
}

// Close closes the link.
func (s *Shell) Close() error {
	s.setPrompt(closedPrompt)
	return s.Session.Close()
}

func (s *Shell) setPrompt(prompt string) {
	if s.Shell != nil {
		s.Shell.SetPrompt(prompt)
	}
}

// Send sends a file over the link.
func (s *Shell) Send(path string) error {
	if err := s.Open(""); err != nil {
		return err
	}
	_, err := s.Session.SendFile(context.Background(), path)
	return err
}

// Run runs the shell. Arguments are evaluated as a single command.
func (s *Shell) Run(args ...string) {
	defer s.Session.Close()
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// OpenCmd opens the link.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[DEVICE]",
		Func: func(c *ishell.Context) {
			var device string
			if len(c.Args) > 0 {
				device = c.Args[0]
			}
			if err := ShellFrom(c).Open(device); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the link.
	CloseCmd = ishell.Cmd{
		Name:    "close",
		Aliases: []string{"c"},
		Help:    "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Close(); err != nil {
				c.Err(err)
			}
		},
	}

	// SendCmd sends files.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "FILE...",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("FILE required"))
				return
			}
			s := ShellFrom(c)
			for _, path := range c.Args {
				if err := s.Send(path); err != nil {
					c.Err(fmt.Errorf("send %s failed: %v", path, err))
					return
				}
			}
		},
	}

	// StatusCmd prints the link settings.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			conf, opts := s.Session.Config, s.Session.Options
			state := "closed"
			if s.Session.IsOpen() {
				state = "open"
			}
			kind, _ := conf.Kind()
			c.Printf("device:   %s (%s, %s)\n", conf.Device, kind, state)
			if kind == link.KindSerial {
				c.Printf("serial:   %d baud, %d bits, parity %s, %s stop bits\n",
					conf.BaudRate, conf.DataBits, conf.Parity, conf.StopBits)
			}
			c.Printf("timeout:  %v (poll %v)\n", opts.Timeout, opts.PollInterval)
			c.Printf("attempts: %d\n", opts.MaxAttempts)
		},
	}
)

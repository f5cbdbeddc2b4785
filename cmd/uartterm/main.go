package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/private-landing/uartterm/internal/history"
	"github.com/private-landing/uartterm/internal/session"
	"github.com/private-landing/uartterm/internal/transport"
	"github.com/private-landing/uartterm/internal/ui"
)

// framesPerSecond paces redraws to one frame per poll interval.
const framesPerSecond = int(time.Second / transport.PollInterval)

// reconnectInterval is how often a vanished port is retried.
const reconnectInterval = 500 * time.Millisecond

type options struct {
	link       transport.Config
	session    session.Config
	historyLen int
	layout     ui.Layout
	timestamps bool
	reconnect  bool
	logFile    string
	logLevel   slog.Level
	noColor    bool
	list       bool
}

// parseArgs validates the command line. Nothing here touches the terminal
// or the port.
func parseArgs(args []string, getenv func(string) string) (options, error) {
	fs := pflag.NewFlagSet("uartterm", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	def := transport.DefaultFraming()
	baud := fs.IntP("baud", "b", def.BaudRate, "baud rate")
	dataBits := fs.IntP("data_bits", "d", def.DataBits, "data bits per frame (5, 6, 7 or 8)")
	stopBits := fs.IntP("stop_bits", "s", def.StopBits, "stop bits (1 or 2)")
	parity := fs.StringP("parity", "p", string(def.Parity), "parity (none, odd or even)")
	historyLen := fs.Int("history_len", history.DefaultCapacity, "number of messages kept")
	inputLen := fs.Int("input_len", session.DefaultMaxInput, "longest input line in characters")
	charset := fs.String("charset", string(session.UTF8), "link charset (utf-8, latin1 or ascii)")
	layout := fs.String("layout", "bottom", "input line position (bottom or top)")
	timestamps := fs.Bool("timestamps", false, "prefix messages with the time")
	reconnect := fs.Bool("reconnect", false, "wait for the device when it disappears")
	logFile := fs.String("log_file", "", "write logs to this file")
	logLevel := fs.String("log_level", "info", "log level (debug, info, warn or error)")
	noColor := fs.Bool("no_color", false, "disable colors")
	list := fs.Bool("list", false, "list serial ports and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts := options{
		historyLen: *historyLen,
		timestamps: *timestamps,
		reconnect:  *reconnect,
		logFile:    *logFile,
		noColor:    *noColor || getenv("NO_COLOR") != "",
		list:       *list,
	}
	if opts.logFile == "" {
		opts.logFile = getenv("UARTTERM_LOG_FILE")
	}
	if opts.list {
		return opts, nil
	}

	switch fs.NArg() {
	case 0:
		opts.link.Port = getenv("UARTTERM_PORT")
		if opts.link.Port == "" {
			return options{}, errors.New("port is required (argument or UARTTERM_PORT)")
		}
	case 1:
		opts.link.Port = fs.Arg(0)
	default:
		return options{}, fmt.Errorf("expected one port, got %d arguments", fs.NArg())
	}

	p, err := transport.ParseParity(*parity)
	if err != nil {
		return options{}, err
	}
	opts.link.Framing = transport.Framing{
		BaudRate: *baud,
		DataBits: *dataBits,
		StopBits: *stopBits,
		Parity:   p,
	}
	opts.link.ReadTimeout = transport.PollInterval
	if err := opts.link.Validate(); err != nil {
		return options{}, err
	}

	if opts.historyLen < 1 {
		return options{}, fmt.Errorf("history_len must be positive, got %d", opts.historyLen)
	}
	if *inputLen < 1 {
		return options{}, fmt.Errorf("input_len must be positive, got %d", *inputLen)
	}
	cs, err := session.ParseCharset(*charset)
	if err != nil {
		return options{}, err
	}
	opts.session = session.Config{MaxInput: *inputLen, Charset: cs, LineEnding: session.LineEnding}

	if opts.layout, err = ui.ParseLayout(*layout); err != nil {
		return options{}, err
	}
	if opts.logLevel, err = parseLevel(*logLevel); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(ctx context.Context, opts options) error {
	if opts.list {
		return listPorts(os.Stdout)
	}
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errors.New("uartterm needs an interactive terminal")
	}

	log, closeLog, err := openLogger(opts.logFile, opts.logLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	link, err := transport.Open(ctx, opts.link)
	if err != nil {
		return err
	}
	log.Info("link opened", "port", link.Name(), "framing", opts.link.Framing.String())

	sess := session.New(link, history.New(opts.historyLen), opts.session, session.WithLogger(log))
	sess.Notice(noticeConnected)

	p := tea.NewProgram(
		newModel(ctx, sess, link, opts, log),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithFPS(framesPerSecond),
	)
	final, err := p.Run()
	if fm, ok := final.(model); ok && fm.link != nil {
		fm.link.Close()
	} else {
		link.Close()
	}
	if err != nil {
		if interrupted(ctx, err) {
			log.Info("interrupted")
			return nil
		}
		return fmt.Errorf("terminal: %w", err)
	}
	if fm, ok := final.(model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

// interrupted reports whether the program ended because of a signal rather
// than a failure. bubbletea's own SIGINT handler and the signal context race,
// so either error may arrive.
func interrupted(ctx context.Context, err error) bool {
	if errors.Is(err, tea.ErrInterrupted) {
		return true
	}
	return errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func listPorts(w io.Writer) error {
	ports, err := transport.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, ui.DimStyle.Render("No serial ports found."))
		return nil
	}

	fmt.Fprint(w, ui.RenderPorts(portRows(ports)))
	return nil
}

func portRows(ports []transport.PortInfo) []ui.PortRow {
	rows := make([]ui.PortRow, len(ports))
	for i, p := range ports {
		rows[i] = ui.PortRow{Name: p.Name, Serial: p.SerialNumber, Product: p.Product}
		if p.USB {
			rows[i].USBID = strings.ToLower(p.VID + ":" + p.PID)
		}
	}
	return rows
}

func printUsage(w io.Writer) {
	heading := ui.TitleStyle.Render
	label := ui.PromptStyle.Render
	dim := ui.DimStyle.Render

	fmt.Fprintln(w, heading("uartterm")+dim(" - talk to a device over a serial link"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, heading("Usage:"))
	fmt.Fprintln(w, "  uartterm [flags] <port>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  <port> is a device such as /dev/ttyUSB0 or COM3, or a ws:// URL of a serial bridge.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, heading("Flags:"))
	def := transport.DefaultFraming()
	fmt.Fprintln(w, "  "+label("-b, --baud")+"         "+dim("Baud rate (default "+strconv.Itoa(def.BaudRate)+")"))
	fmt.Fprintln(w, "  "+label("-d, --data_bits")+"    "+dim("Data bits per frame: 5, 6, 7, 8 (default 8)"))
	fmt.Fprintln(w, "  "+label("-s, --stop_bits")+"    "+dim("Stop bits: 1, 2 (default 1)"))
	fmt.Fprintln(w, "  "+label("-p, --parity")+"       "+dim("Parity: none, odd, even (default none)"))
	fmt.Fprintln(w, "  "+label("--history_len")+"      "+dim("Messages kept on screen (default "+strconv.Itoa(history.DefaultCapacity)+")"))
	fmt.Fprintln(w, "  "+label("--input_len")+"        "+dim("Longest input line (default "+strconv.Itoa(session.DefaultMaxInput)+")"))
	fmt.Fprintln(w, "  "+label("--charset")+"          "+dim("utf-8, latin1, ascii (default utf-8)"))
	fmt.Fprintln(w, "  "+label("--layout")+"           "+dim("Input line at the bottom or top (default bottom)"))
	fmt.Fprintln(w, "  "+label("--timestamps")+"       "+dim("Prefix messages with the time"))
	fmt.Fprintln(w, "  "+label("--reconnect")+"        "+dim("Wait for the device when it is unplugged"))
	fmt.Fprintln(w, "  "+label("--log_file")+"         "+dim("Write logs to a file"))
	fmt.Fprintln(w, "  "+label("--log_level")+"        "+dim("debug, info, warn, error (default info)"))
	fmt.Fprintln(w, "  "+label("--no_color")+"         "+dim("Disable colors"))
	fmt.Fprintln(w, "  "+label("--list")+"             "+dim("List serial ports and exit"))
	fmt.Fprintln(w, "  "+label("-h, --help")+"         "+dim("Show this help message"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, heading("Environment:"))
	fmt.Fprintln(w, "  "+label("UARTTERM_PORT")+"      "+dim("Port used when none is given"))
	fmt.Fprintln(w, "  "+label("UARTTERM_LOG_FILE")+"  "+dim("Log file used when --log_file is not set"))
	fmt.Fprintln(w, "  "+label("NO_COLOR")+"           "+dim("Disable colors"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, heading("Keys:"))
	for _, b := range defaultKeyMap().bindings() {
		h := b.Help()
		fmt.Fprintf(w, "  %s %s\n", label(fmt.Sprintf("%-18s", h.Key)), dim(h.Desc))
	}
}

func fail(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	opts, err := parseArgs(os.Args[1:], os.Getenv)
	if errors.Is(err, pflag.ErrHelp) {
		printUsage(os.Stdout)
		return 0
	}
	if err != nil {
		fail(err)
		fmt.Fprintln(os.Stderr, "Run 'uartterm --help' for usage information")
		return 2
	}

	if opts.noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
		color.NoColor = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fail(err)
		return 1
	}
	return 0
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/thelolagemann/sm83/internal/cpu"
	"github.com/thelolagemann/sm83/internal/memory"
	"github.com/thelolagemann/sm83/internal/types"
	"github.com/thelolagemann/sm83/pkg/log"
	"github.com/thelolagemann/sm83/pkg/monitor"
	"github.com/thelolagemann/sm83/pkg/profile"
	"github.com/thelolagemann/sm83/pkg/utils"
)

// publishEvery is the number of ticks between monitor snapshots.
const publishEvery = 1024

type config struct {
	program   string
	offset    int
	size      int
	limit     uint64
	state     string
	loadState string
	trace     bool
	profile   string
	monitor   string
	compress  int
	logLevel  string
	listing   int
}

func main() {
	var cfg config
	flag.StringVar(&cfg.program, "program", "", "The program image to load (raw, .gz, .zip or .7z)")
	flag.IntVar(&cfg.offset, "offset", 0, "The address to load the program at")
	flag.IntVar(&cfg.size, "size", memory.DefaultSize, "The size of memory in bytes")
	flag.Uint64Var(&cfg.limit, "limit", 0, "Stop after this many ticks. 0 runs until HALT")
	flag.StringVar(&cfg.state, "state", "", "Save the final state to this file")
	flag.StringVar(&cfg.loadState, "load-state", "", "Resume from a state file instead of loading a program")
	flag.BoolVar(&cfg.trace, "trace", false, "Log every executed instruction (needs -log-level debug)")
	flag.StringVar(&cfg.profile, "profile", "", "Write an execution profile chart (PNG) to this file")
	flag.StringVar(&cfg.monitor, "monitor", "", "Serve snapshots to websocket clients on this address, e.g. :8090")
	flag.IntVar(&cfg.compress, "compress", -1, "Brotli quality (0-11) for monitor snapshots. -1 disables")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "The log level: debug, info, warn or error")
	flag.IntVar(&cfg.listing, "listing", 8, "Instructions to disassemble from the load offset after the run")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.New().Fatal(err.Error())
	}
}

func run(ctx context.Context, cfg config, out io.Writer) error {
	level, err := log.ParseLevel(cfg.logLevel)
	if err != nil {
		return err
	}
	logger := log.NewWithWriter(out, level)

	if cfg.size <= 0 || cfg.size > memory.MaxSize {
		return fmt.Errorf("memory size %d out of range 1..%d", cfg.size, memory.MaxSize)
	}
	mem := memory.New(cfg.size)

	opts := []cpu.Opt{cpu.WithLogger(logger)}
	if cfg.trace {
		opts = append(opts, cpu.WithTrace())
	}
	var prof *cpu.Profile
	if cfg.profile != "" {
		prof = cpu.NewProfile()
		opts = append(opts, cpu.WithProfile(prof))
	}
	c := cpu.New(mem, opts...)

	switch {
	case cfg.loadState != "":
		s, err := types.StateFromFile(cfg.loadState)
		if err != nil {
			return fmt.Errorf("loading state: %w", err)
		}
		c.Load(s)
		mem.LoadState(s)
		if err := s.Err(); err != nil {
			return fmt.Errorf("loading state %s: %w", cfg.loadState, err)
		}
		logger.Infof("resumed from %s at PC 0x%04X", cfg.loadState, c.PC())
	case cfg.program != "":
		data, err := utils.LoadFile(cfg.program)
		if err != nil {
			return fmt.Errorf("loading program: %w", err)
		}
		n := mem.Load(data, cfg.offset)
		if n < len(data) {
			logger.Infof("program truncated: loaded %d of %d bytes", n, len(data))
		}
	default:
		return errors.New("no program given, use -program or -load-state")
	}

	var hub *monitor.Hub
	if cfg.monitor != "" {
		hub = startMonitor(ctx, cfg, logger)
	}

	start := time.Now()
	ticks := execute(ctx, c, mem, hub, cfg.limit)
	logger.Infof("ran %d ticks in %s", ticks, time.Since(start))

	report(out, c, mem, cfg)

	if cfg.state != "" {
		s := types.NewState()
		c.Save(s)
		mem.SaveState(s)
		if err := s.SaveToFile(cfg.state); err != nil {
			return fmt.Errorf("saving state: %w", err)
		}
	}

	if prof != nil {
		if err := writeProfile(prof, cfg.profile); err != nil {
			return err
		}
	}

	if hub != nil {
		logger.Infof("run finished, still serving %s (interrupt to exit)", cfg.monitor)
		<-ctx.Done()
	}
	return nil
}

// execute steps c until it halts, runs off the end of memory, reaches
// limit (when non-zero) or ctx is cancelled, publishing snapshots to
// hub along the way. It returns the ticks consumed.
func execute(ctx context.Context, c *cpu.CPU, mem *memory.Memory, hub *monitor.Hub, limit uint64) uint64 {
	var n uint64
	c.Resume()
	for c.Step() {
		n++
		if limit > 0 && n >= limit {
			break
		}
		if n%publishEvery == 0 {
			if hub != nil {
				hub.Publish(c.Snapshot(mem.Checksum()))
			}
			if ctx.Err() != nil {
				break
			}
		}
	}
	if hub != nil {
		hub.Publish(c.Snapshot(mem.Checksum()))
	}
	return n
}

func startMonitor(ctx context.Context, cfg config, logger log.Logger) *monitor.Hub {
	opts := []monitor.Opt{monitor.WithLogger(logger)}
	if cfg.compress >= 0 {
		opts = append(opts, monitor.WithCompression(cfg.compress))
	}
	hub := monitor.New(opts...)
	go hub.Run(ctx)

	srv := &http.Server{Addr: cfg.monitor, Handler: hub}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("monitor: %v", err)
		}
	}()

	logger.Infof("monitor listening on %s", cfg.monitor)
	return hub
}

// report prints the register file, memory checksum and a listing from
// the load offset.
func report(w io.Writer, c *cpu.CPU, mem *memory.Memory, cfg config) {
	flags := []byte("----")
	for i, set := range []bool{c.Zero(), c.Subtraction(), c.HalfCarry(), c.Carry()} {
		if set {
			flags[i] = "ZNHC"[i]
		}
	}

	fmt.Fprintf(w, "A:%02X F:%s BC:%04X DE:%04X HL:%04X SP:%04X PC:%04X\n",
		c.A(), flags, c.BC(), c.DE(), c.HL(), c.SP(), c.PC())
	fmt.Fprintf(w, "halted:%t ticks:%d checksum:%016x\n", c.Halted(), c.Ticks(), mem.Checksum())

	if cfg.listing > 0 && cfg.offset >= 0 && cfg.offset < mem.Len() {
		fmt.Fprintln(w, strings.Join(c.DisassembleRange(uint16(cfg.offset), cfg.listing), "\n"))
	}
}

func writeProfile(p *cpu.Profile, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}
	if err := profile.Render(p, f, profile.Options{Top: profile.DefaultTop}); err != nil {
		f.Close()
		return fmt.Errorf("rendering profile: %w", err)
	}
	return f.Close()
}

// Command apngasm assembles image files into an animated PNG.
package main

import (
	"context"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	apng "github.com/raph-of-burgondy/APNG-Builder"
	"github.com/raph-of-burgondy/APNG-Builder/internal/config"
	"github.com/raph-of-burgondy/APNG-Builder/internal/iterm2"
)

var be = binary.BigEndian

const usage = `Usage: apngasm [flags] frame1 frame2 ...
       apngasm -inspect file.png ...

`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "apngasm:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("apngasm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	var (
		configFlag  = fs.String("c", "", "YAML config file")
		outputFlag  = fs.String("o", "", "Output file (default stdout)")
		fpsFlag     = fs.Uint("fps", 10, "Frames per second")
		loopsFlag   = fs.Uint("loops", 0, "Number of plays, 0 loops forever")
		widthFlag   = fs.Uint("width", 0, "Canvas width (default first frame)")
		heightFlag  = fs.Uint("height", 0, "Canvas height (default first frame)")
		levelFlag   = fs.String("compression", "default", "Compression: default, none, speed, best")
		jobsFlag    = fs.Int("j", 0, "Frames encoded at once, 0 for all")
		rawFlag     = fs.Bool("raw", false, "Frames are PNGs to pass through without re-encoding")
		checkFlag   = fs.Bool("check", false, "Reject raw frames that are not 8-bit RGBA at the canvas size")
		inlineFlag  = fs.Bool("i", false, "Show the result inline (iTerm2)")
		inspectFlag = fs.Bool("inspect", false, "List the chunks of existing PNG/APNG files")
		verboseFlag = fs.Bool("v", false, "Verbose")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *fpsFlag > math.MaxUint16 {
		return fmt.Errorf("fps must be at most %d", math.MaxUint16)
	}
	for name, v := range map[string]uint{"loops": *loopsFlag, "width": *widthFlag, "height": *heightFlag} {
		if uint64(v) > math.MaxUint32 {
			return fmt.Errorf("%s must be at most %d", name, uint32(math.MaxUint32))
		}
	}

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if *inspectFlag {
		for _, path := range fs.Args() {
			if err := inspect(stdout, path); err != nil {
				return err
			}
		}
		return nil
	}

	cfg := &config.Config{}
	if *configFlag != "" {
		var err error
		if cfg, err = config.Load(*configFlag); err != nil {
			return err
		}
	}
	// Flags given on the command line win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.Output = *outputFlag
		case "fps":
			cfg.FPS = uint16(*fpsFlag)
		case "loops":
			cfg.Loops = uint32(*loopsFlag)
		case "width":
			cfg.Width = uint32(*widthFlag)
		case "height":
			cfg.Height = uint32(*heightFlag)
		case "compression":
			cfg.Compression = *levelFlag
		case "j":
			cfg.Concurrency = *jobsFlag
		case "raw":
			cfg.Raw = *rawFlag
		case "check":
			cfg.CheckHeaders = *checkFlag
		}
	})
	if fs.NArg() > 0 {
		cfg.Frames = fs.Args()
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	toStdout := cfg.Output == "" || cfg.Output == "-"
	if toStdout && !*inlineFlag && iterm2.IsTerminal(stdout) {
		return errors.New("refusing to write binary to a terminal, use -o or -i")
	}

	frames, err := loadFrames(cfg)
	if err != nil {
		return err
	}

	done := 0
	s, err := apng.Build(ctx, cfg.Animation(), frames,
		apng.WithLogger(log),
		apng.WithConcurrency(cfg.Concurrency),
		apng.WithCheckHeaders(cfg.CheckHeaders),
		apng.WithProgress(func() {
			done++
			log.Debug("apngasm: frame done", "done", done, "total", len(frames))
		}),
	)
	if err != nil {
		return err
	}

	if *inlineFlag {
		if !iterm2.IsCompatible() {
			log.Warn("apngasm: terminal does not look like iTerm2")
		}
		name := "animation.png"
		if !toStdout {
			name = filepath.Base(cfg.Output)
		}
		if err := iterm2.File(stdout, name, s.Data); err != nil {
			return err
		}
		fmt.Fprintln(stdout)
	}
	switch {
	case !toStdout:
		if err := os.WriteFile(cfg.Output, s.Data, 0644); err != nil {
			return err
		}
		log.Info("apngasm: wrote animation", "path", cfg.Output, "frames", len(frames), "bytes", len(s.Data))
	case !*inlineFlag:
		if _, err := s.WriteTo(stdout); err != nil {
			return err
		}
	}
	return nil
}

// loadFrames prepares one apng.Frame per configured path and settles the
// canvas size, taking it from the first frame when the config leaves it open.
func loadFrames(cfg *config.Config) ([]apng.Frame, error) {
	var frames []apng.Frame
	if cfg.Raw {
		for _, path := range cfg.Frames {
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			frames = append(frames, apng.RawFrame(b))
		}
		if cfg.Width == 0 {
			h, err := apng.ReadHeader(frames[0].(apng.RawFrame))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", cfg.Frames[0], err)
			}
			cfg.Width, cfg.Height = h.Width, h.Height
		}
		return frames, nil
	}

	if cfg.Width == 0 {
		c, err := decodeConfig(cfg.Frames[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Frames[0], err)
		}
		cfg.Width, cfg.Height = uint32(c.Width), uint32(c.Height)
	}
	canvas := image.Rect(0, 0, int(cfg.Width), int(cfg.Height))
	for _, path := range cfg.Frames {
		frames = append(frames, fileFrame{path: path, canvas: canvas, level: cfg.CompressionLevel()})
	}
	return frames, nil
}

func decodeConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()
	c, _, err := image.DecodeConfig(f)
	return c, err
}

// fileFrame decodes an image file when its frame is encoded, scaling it to
// the canvas if the sizes differ.
type fileFrame struct {
	path   string
	canvas image.Rectangle
	level  apng.CompressionLevel
}

func (f fileFrame) Encode(ctx context.Context) (apng.RawFrame, error) {
	r, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	m, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	if m.Bounds().Size() != f.canvas.Size() {
		dst := image.NewNRGBA(f.canvas)
		draw.CatmullRom.Scale(dst, dst.Bounds(), m, m.Bounds(), draw.Src, nil)
		m = dst
	}
	return apng.ImageFrame{Image: m, Level: f.level}.Encode(ctx)
}

// inspect lists the chunks of a PNG or APNG file.
func inspect(w io.Writer, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	h, err := apng.ReadHeader(b)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintf(w, "%s: %dx%d depth %d color type %d\n", path, h.Width, h.Height, h.BitDepth, h.ColorType)

	for off := len(apng.PngHeader); off < len(b); {
		c, n, err := apng.ReadChunk(b[off:])
		if err != nil {
			return fmt.Errorf("%s: offset %d: %w", path, off, err)
		}
		fmt.Fprintf(w, "%8d %s %d", off, c.Type, len(c.Data))
		switch d := c.Data; {
		case c.Type == apng.TypeacTL && len(d) == 8:
			fmt.Fprintf(w, " frames=%d plays=%d", be.Uint32(d[0:4]), be.Uint32(d[4:8]))
		case c.Type == apng.TypefcTL && len(d) == 26:
			fmt.Fprintf(w, " seq=%d %dx%d delay=%d/%d",
				be.Uint32(d[0:4]), be.Uint32(d[4:8]), be.Uint32(d[8:12]), be.Uint16(d[20:22]), be.Uint16(d[22:24]))
		case c.Type == apng.TypefdAT && len(d) >= 4:
			fmt.Fprintf(w, " seq=%d", be.Uint32(d[0:4]))
		}
		fmt.Fprintln(w)
		off += n
	}
	return nil
}

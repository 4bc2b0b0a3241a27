package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"gioui.org/app"
	"github.com/esimov/boxscale"
	"github.com/esimov/boxscale/preview"
	"github.com/esimov/boxscale/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const HelpBanner = `
┌┐ ┌─┐─┐ ┬┌─┐┌─┐┌─┐┬  ┌─┐
├┴┐│ │┌┴┬┘└─┐│  ├─┤│  ├┤
└─┘└─┘┴ └─└─┘└─┘┴ ┴┴─┘└─┘

Area averaging image resampler.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// defaultConfig is the configuration file looked up in the working directory.
const defaultConfig = "boxscale.toml"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source")
	destination = flag.String("out", pipeName, "Destination")
	configFile  = flag.String("config", defaultConfig, "TOML configuration file")
	_           = flag.Int("width", 0, "New width")
	_           = flag.Int("height", 0, "New height")
	_           = flag.Bool("perc", false, "Reduce image by percentage")
	_           = flag.Bool("square", false, "Reduce image to square dimensions")
	_           = flag.Bool("ratio", false, "Preserve the aspect ratio when only the width or the height is provided")
	_           = flag.Bool("round", false, "Round the averaged samples to the nearest value instead of truncating them")
	_           = flag.Bool("strict", false, "Fail when a destination pixel covers no source pixel")
	_           = flag.Int("workers", 1, "Number of row bands resampled concurrently per image")
	_           = flag.Int("quality", 100, "JPEG quality")
	_           = flag.String("bg", "", "Background color used to flatten transparent images (e.g. #ffffff)")
	_           = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
	showPreview = flag.Bool("preview", false, "Show the resampled image in a preview window")
	verbose     = flag.Bool("v", false, "Verbose logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})
	cfg, err := loadConfig(flag.CommandLine, *configFile, explicit)
	if err != nil {
		exit(err)
	}

	level := logLevel(cfg.GetString(keyLogLevel))
	if *verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	rounding, err := boxscale.ParseRounding(cfg.GetString(keyRounding))
	if err != nil {
		exit(err)
	}

	proc := &boxscale.Processor{
		Resampler: boxscale.Resampler{
			Rounding: rounding,
			Strict:   cfg.GetBool(keyStrict),
			Workers:  cfg.GetInt(keyWorkers),
		},
		NewWidth:   cfg.GetInt(keyWidth),
		NewHeight:  cfg.GetInt(keyHeight),
		Percentage: cfg.GetBool(keyPercentage),
		Square:     cfg.GetBool(keySquare),
		KeepRatio:  cfg.GetBool(keyKeepRatio),
		Background: cfg.GetString(keyBackground),
		Quality:    cfg.GetInt(keyQuality),
		Preview:    *showPreview,
	}

	// Only a single resized image can be shown in the preview window.
	if proc.Preview && isDir(*source) {
		log.Warn().Str("source", *source).Msg("preview is disabled when resizing a directory")
		proc.Preview = false
	}

	if proc.NewWidth <= 0 && proc.NewHeight <= 0 {
		flag.Usage()
		exit(fmt.Errorf("please provide a width, height or percentage for image rescaling"))
	}

	log.Debug().
		Str("config", cfg.ConfigFileUsed()).
		Int("width", proc.NewWidth).
		Int("height", proc.NewHeight).
		Stringer("rounding", proc.Resampler.Rounding).
		Msg("configuration loaded")

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ BOXSCALE", utils.StatusMessage),
		utils.DecorateText("is resizing the image...", utils.DefaultMessage))
	proc.Spinner = utils.NewSpinner(spinnerText, time.Millisecond*100, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Capture CTRL-C signal and restore the cursor visibility back.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		cancel()
		proc.Spinner.RestoreCursor()
		os.Exit(1)
	}()

	var last *boxscale.Raster
	op := &boxscale.Ops{
		Src:      *source,
		Dst:      *destination,
		PipeName: pipeName,
		Workers:  cfg.GetInt(keyConcurrency),
		Report: func(res boxscale.Result) {
			printStatus(res)
			last = res.Img
		},
	}

	run := func() error {
		now := time.Now()
		if err := op.Execute(ctx, proc); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "\nExecution time: %s\n",
			utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
		return nil
	}

	// The Gio event loop has to own the main goroutine, the resize runs aside.
	if proc.Preview {
		go func() {
			if err := run(); err != nil {
				exit(err)
			}
			if last != nil {
				if err := preview.Show(last.NRGBA(), "boxscale preview"); err != nil {
					exit(err)
				}
			}
			os.Exit(0)
		}()
		app.Main()
	}

	if err := run(); err != nil {
		exit(err)
	}
}

// printStatus displays the relevant information about the resampling process.
func printStatus(res boxscale.Result) {
	if res.Err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n",
			utils.DecorateText("\nError resizing the image:", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("%s\n\tReason: %v", res.Src, res.Err), utils.DefaultMessage),
		)
		return
	}
	if res.Dst != pipeName {
		fmt.Fprintf(os.Stderr, "\nThe resized image (%s) has been saved as: %s %s\n",
			utils.FormatSize(res.Img.Width, res.Img.Height),
			utils.DecorateText(filepath.Base(res.Dst), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}

// isDir reports whether the path names an existing directory.
func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// exit restores the terminal state, prints the error and quits.
func exit(err error) {
	fmt.Fprint(os.Stderr, "\033[?25h")
	log.Error().Err(err).Msg("boxscale failed")
	os.Exit(1)
}

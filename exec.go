package boxscale

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/esimov/boxscale/utils"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently processed files.
const maxWorkers = 20

// Ops describes the source and destination of a resize run.
type Ops struct {
	Src, Dst, PipeName string
	// Workers is the number of files resized concurrently when Src is a directory.
	Workers int
	// Report, when set, is called once per processed file.
	Report func(Result)
}

// Result holds the relevant information about a processed image.
type Result struct {
	Src string
	Dst string
	Img *Raster
	Err error
}

// Execute runs the resize process over the source, which can be an URL, a pipe name,
// a single image file or a directory. Images found in a directory are resized
// concurrently; the failure of one image does not stop the others and all
// failures are returned joined together.
func (op *Ops) Execute(ctx context.Context, p *Processor) error {
	src := op.Src

	// Check if the source path is a local image or an URL.
	if utils.IsValidUrl(src) {
		f, err := utils.DownloadImage(ctx, src)
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		defer func() {
			f.Close()
			os.Remove(f.Name())
		}()
		src = f.Name()
	}

	if src == op.PipeName {
		return op.report(op.processFile(p, src, op.Dst))
	}

	fs, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to load the source image: %w", err)
	}

	if p.Spinner != nil {
		p.Spinner.Start()
		defer p.Spinner.Stop()
	}

	if !fs.IsDir() {
		ext := filepath.Ext(op.Dst)
		if op.Dst != op.PipeName && !isValidExtension(ext, DestExtensions) {
			return fmt.Errorf("%w: %v file type not supported", ErrUnsupportedFormat, ext)
		}
		res := op.processFile(p, src, op.Dst)
		res.Src = op.Src
		return op.report(res)
	}

	return op.executeDir(ctx, p, src)
}

// executeDir resizes every supported image found under the src directory tree.
func (op *Ops) executeDir(ctx context.Context, p *Processor, src string) error {
	if op.Dst == op.PipeName {
		return errors.New("a directory cannot be resized into a pipe")
	}
	if err := os.MkdirAll(op.Dst, 0755); err != nil {
		return fmt.Errorf("unable to create the destination directory: %w", err)
	}

	workers := op.Workers
	if workers <= 0 {
		workers = 1
	}
	workers = utils.Min(workers, maxWorkers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	paths, errc := walkDir(ctx, src, op.Dst, SourceExtensions)
	results := make(chan Result)

	log.Debug().Str("dir", src).Int("workers", workers).Msg("resizing directory")

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(ctx, p, src, paths, results)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(results)
		wg.Wait()
	}()

	var errs []error
	for res := range results {
		if err := op.report(res); err != nil {
			errs = append(errs, err)
		}
	}

	if err := <-errc; err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// consumer reads the path names from the paths channel and calls the resizing
// processor against the source image, then sends the results on a new channel.
func (op *Ops) consumer(
	ctx context.Context,
	p *Processor,
	root string,
	paths <-chan string,
	results chan<- Result,
) {
	for src := range paths {
		rel, err := filepath.Rel(root, src)
		if err != nil {
			rel = filepath.Base(src)
		}
		dst := filepath.Join(op.Dst, rel)
		// Sources without an encoder are written as PNG.
		if ext := filepath.Ext(dst); !isValidExtension(ext, DestExtensions) {
			dst = strings.TrimSuffix(dst, ext) + ".png"
		}

		var res Result
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			res = Result{Src: src, Dst: dst, Err: err}
		} else {
			res = op.processFile(p, src, dst)
		}

		select {
		case <-ctx.Done():
			return
		case results <- res:
		}
	}
}

// processFile resizes a single image. The destination file is removed on failure.
func (op *Ops) processFile(p *Processor, in, out string) Result {
	res := Result{Src: in, Dst: out}

	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		res.Err = err
		return res
	}

	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			if err := f.Close(); err != nil {
				log.Warn().Err(err).Str("path", in).Msg("could not close the opened file")
			}
		}
	}()

	res.Img, res.Err = p.process(src, dst)

	if f, ok := dst.(*os.File); ok && f != os.Stdout {
		if err := f.Close(); err != nil && res.Err == nil {
			res.Err = err
		}
		if res.Err != nil {
			// remove the generated image file in case of an error
			os.Remove(f.Name())
		}
	}
	log.Debug().Str("src", in).Str("dst", out).Err(res.Err).Msg("image processed")

	return res
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		if err := checkImageFile(in); err != nil {
			return nil, nil, err
		}
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

// report hands the result to the Report callback and returns its error.
func (op *Ops) report(res Result) error {
	if op.Report != nil {
		op.Report(res)
	}
	if res.Err != nil {
		return fmt.Errorf("%s: %w", res.Src, res.Err)
	}
	return nil
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported file to a new channel.
// The skip directory, usually the destination of the run, is not descended into.
// It finishes when the context is cancelled.
func walkDir(
	ctx context.Context,
	src, skip string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	skipAbs, err := filepath.Abs(skip)
	if err != nil {
		skipAbs = filepath.Clean(skip)
	}

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// Resized images written below the source must not be picked up again.
				if path != src && samePath(path, skipAbs) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !isValidExtension(filepath.Ext(d.Name()), srcExts) {
				return nil
			}

			select {
			case <-ctx.Done():
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// samePath reports whether path resolves to the absolute path abs.
func samePath(path, abs string) bool {
	p, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return p == abs
}

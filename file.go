package tld

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"go.atomizer.io/stream"
	"go.structs.dev/gen"
)

// ReadFiles reads the files at the paths provided on the channel and
// returns a channel of io.ReadCloser where it deposits the open file.
func ReadFiles(
	ctx context.Context,
	logger Logger,
	files <-chan string,
) <-chan io.ReadCloser {
	s := stream.Scaler[string, io.ReadCloser]{
		Wait: time.Nanosecond,
		Life: time.Millisecond,
		Fn: func(
			ctx context.Context,
			path string,
		) (io.ReadCloser, bool) {
			data, err := os.Open(path)
			if err != nil {
				logger.Errorw(
					"failed to open list file",
					"path", path,
					"error", err,
				)
				return nil, false
			}

			return data, true
		},
	}

	out, err := s.Exec(ctx, files)
	if err != nil {
		panic(err)
	}

	return out
}

// ReadDirectory recursively reads through the directory structure
// providing a channel of file paths, optionally filtered by extension.
func ReadDirectory(
	ctx context.Context,
	logger Logger,
	dir string,
	exts ...string,
) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		files, err := os.ReadDir(dir)
		if err != nil {
			logger.Errorw(
				"failed to read directory",
				"dir", dir,
				"error", err,
			)
			return
		}

		wg := sync.WaitGroup{}
		for _, file := range files {
			if !file.IsDir() {
				i, err := file.Info()
				if err != nil {
					continue
				}

				if len(exts) > 0 {
					if !gen.Has(exts, filepath.Ext(i.Name())) {
						continue
					}
				}

				select {
				case <-ctx.Done():
					return
				case out <- path.Join(dir, i.Name()):
					logger.Debugw("list file", "name", i.Name())
				}

				continue
			}

			i, err := file.Info()
			if err != nil {
				return
			}

			wg.Add(1)
			go func(d os.FileInfo) {
				defer wg.Done()

				stream.Pipe(
					ctx,
					ReadDirectory(
						ctx,
						logger,
						path.Join(
							dir,
							d.Name(),
						),
						exts...,
					),
					out,
				)
			}(i)
		}

		wg.Wait()
	}()

	return out
}

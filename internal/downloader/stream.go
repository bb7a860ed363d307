package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/progress"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/utils"
)

// StreamToFile copies r into dest in chunkSize pieces, reporting a sample
// after each chunk and aborting as soon as the cumulative size exceeds the
// ceiling (a ceiling of 0 means unlimited). The partial file is removed on
// every error path. total may be 0 when the source did not declare a length.
func StreamToFile(
	ctx context.Context,
	r io.Reader,
	dest string,
	ceiling, chunkSize, total int64,
	reporter *progress.Reporter,
) (int64, error) {
	out, err := os.Create(dest)
	if err != nil {
		return 0, utils.WrapError(err, "failed to create local file", map[string]any{"path": dest})
	}

	var done int64
	startedAt := time.Now()
	buf := make([]byte, chunkSize)

	fail := func(failure error) (int64, error) {
		out.Close()
		os.Remove(dest)
		return done, failure
	}

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fail(classifyCtxErr(ctxErr))
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return fail(utils.WrapError(writeErr, "failed to write local file", map[string]any{"path": dest}))
			}
			done += int64(n)

			if ceiling > 0 && done > ceiling {
				return fail(utils.WrapError(utils.ErrSizeExceeded,
					fmt.Sprintf("size limit of %s exceeded mid-stream", utils.FormatSize(ceiling)), nil))
			}

			if reporter != nil {
				reporter.Report(progress.Sample{
					BytesDone:  done,
					BytesTotal: total,
					Rate:       rate(done, startedAt),
				})
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fail(classifyCtxErr(ctxErr))
			}
			return fail(utils.WrapError(utils.ErrNetworkError, readErr.Error(), nil))
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(dest)
		return done, utils.WrapError(err, "failed to close local file", map[string]any{"path": dest})
	}

	if done == 0 {
		os.Remove(dest)
		return 0, utils.WrapError(utils.ErrEmptyFile, "downloaded file is empty", nil)
	}

	return done, nil
}

func classifyCtxErr(ctxErr error) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return utils.WrapError(utils.ErrTimeout, "download deadline elapsed", nil)
	}
	return utils.WrapError(utils.ErrCancelled, "download cancelled", nil)
}

func rate(done int64, startedAt time.Time) float64 {
	elapsed := time.Since(startedAt).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(done) / elapsed
}

// UniquePath resolves filename collisions by suffixing a counter before the
// extension: name.ext, name_1.ext, name_2.ext, ...
func UniquePath(dir, name string) string {
	candidate := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
	}
}

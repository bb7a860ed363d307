// Package uploader streams a local file to the GoFile upload endpoint and
// normalizes the provider's response.
package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/config"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/logutils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/progress"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/utils"
)

const userAgent = "telegram-gofile-bot/1.0"

// Result is a successful upload normalized from the provider response.
type Result struct {
	RemoteID     string
	DownloadPage string
	DirectLink   string
}

type gofileResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Code         string `json:"code"`
		DownloadPage string `json:"downloadPage"`
		DirectLink   string `json:"directLink"`
		ParentFolder string `json:"parentFolder"`
	} `json:"data"`
}

type Client struct {
	uploadURL  string
	httpClient *http.Client
	timeout    time.Duration
}

func New(cfg *config.Config) *Client {
	return &Client{
		uploadURL:  cfg.GoFileUploadURL,
		httpClient: &http.Client{},
		timeout:    cfg.UploadSettings.UploadTimeout,
	}
}

// Upload sends the file as a multipart POST, streaming the body from disk
// rather than buffering it. token, when non-empty, is attached as a bearer
// credential so the file lands in the user's linked account. One attempt,
// no retries.
func (c *Client) Upload(
	ctx context.Context,
	localPath, displayName, token string,
	reporter *progress.Reporter,
) (*Result, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, utils.WrapError(utils.ErrUploadFailed, "local file not found", map[string]any{
			"path": localPath,
		})
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, utils.WrapError(utils.ErrUploadFailed, err.Error(), nil)
	}
	if info.Size() == 0 {
		return nil, utils.WrapError(utils.ErrEmptyFile, "refusing to upload an empty file", nil)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, contentType := c.multipartBody(file, info.Size(), displayName, reporter)
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, body)
	if err != nil {
		return nil, utils.WrapError(utils.ErrUploadFailed, err.Error(), nil)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logutils.Log.WithFields(map[string]any{
		"name": displayName,
		"size": info.Size(),
	}).Info("Uploading to GoFile")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportErr(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, utils.WrapError(utils.ErrUploadFailed, fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	var parsed gofileResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, utils.WrapError(utils.ErrUploadFailed, "unparseable provider response", nil)
	}

	if parsed.Status != "ok" {
		message := parsed.Message
		if message == "" {
			message = parsed.Status
		}
		if message == "" {
			message = "unknown provider error"
		}
		return nil, utils.WrapError(utils.ErrUploadFailed, message, nil)
	}

	return &Result{
		RemoteID:     parsed.Data.Code,
		DownloadPage: parsed.Data.DownloadPage,
		DirectLink:   parsed.Data.DirectLink,
	}, nil
}

// multipartBody builds a streamed multipart request body: the file is piped
// through a progress-counting reader instead of being read into memory.
func (c *Client) multipartBody(
	file *os.File,
	size int64,
	displayName string,
	reporter *progress.Reporter,
) (io.ReadCloser, string) {
	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)

	go func() {
		part, err := writer.CreateFormFile("file", displayName)
		if err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		counted := &progressReader{
			reader:    file,
			total:     size,
			reporter:  reporter,
			startedAt: time.Now(),
		}
		if _, err := io.Copy(part, counted); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		pipeWriter.CloseWithError(writer.Close())
	}()

	return pipeReader, writer.FormDataContentType()
}

type progressReader struct {
	reader    io.Reader
	total     int64
	done      int64
	reporter  *progress.Reporter
	startedAt time.Time
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		p.done += int64(n)
		if p.reporter != nil {
			var currentRate float64
			if elapsed := time.Since(p.startedAt).Seconds(); elapsed > 0 {
				currentRate = float64(p.done) / elapsed
			}
			p.reporter.Report(progress.Sample{
				BytesDone:  p.done,
				BytesTotal: p.total,
				Rate:       currentRate,
			})
		}
	}
	return n, err
}

func classifyTransportErr(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return utils.WrapError(utils.ErrTimeout, "upload deadline elapsed", nil)
	case errors.Is(ctx.Err(), context.Canceled):
		return utils.WrapError(utils.ErrCancelled, "upload cancelled", nil)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return utils.WrapError(utils.ErrTimeout, err.Error(), nil)
	}
	return utils.WrapError(utils.ErrUploadFailed, err.Error(), nil)
}

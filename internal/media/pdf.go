package media

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	execute "github.com/alexellis/go-execute/v2"
	"github.com/spf13/afero"
)

const (
	// PDFExt — расширение сжатого документа.
	PDFExt = ".pdf"
	// PDFContentType — MIME-тип сжатого документа.
	PDFContentType = "application/pdf"
)

var (
	// ErrCompress возвращается, если утилита сжатия завершилась с ошибкой.
	ErrCompress = errors.New("media: pdf compression failed")
	// ErrTimeout — утилита сжатия не уложилась в отведённое время.
	ErrTimeout = errors.New("media: pdf compression timed out")
)

// ExecRunner запускает внешнюю команду. Подменяется в тестах.
type ExecRunner func(ctx context.Context, task execute.ExecTask) (execute.ExecResult, error)

// RunExecTask запускает задачу через go-execute.
func RunExecTask(ctx context.Context, task execute.ExecTask) (execute.ExecResult, error) {
	return task.Execute(ctx)
}

// PDFCompressor сжимает PDF через Ghostscript. Утилита работает с путями,
// поэтому вход и выход пишутся во временный каталог, который удаляется
// при любом исходе.
type PDFCompressor struct {
	fs         afero.Fs
	scratchDir string
	binary     string
	timeout    time.Duration
	run        ExecRunner
}

// NewPDFCompressor создаёт PDFCompressor. binary задаёт путь к gs,
// scratchDir задаёт корень для временных каталогов.
func NewPDFCompressor(fs afero.Fs, scratchDir, binary string, timeout time.Duration, run ExecRunner) *PDFCompressor {
	if run == nil {
		run = RunExecTask
	}
	if binary == "" {
		binary = "gs"
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &PDFCompressor{
		fs:         fs,
		scratchDir: scratchDir,
		binary:     binary,
		timeout:    timeout,
		run:        run,
	}
}

// GhostscriptArgs возвращает аргументы gs для сжатия in в out.
func GhostscriptArgs(in, out string) []string {
	return []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/screen",
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=" + out,
		in,
	}
}

// Transform сжимает документ и возвращает новый буфер.
func (c *PDFCompressor) Transform(ctx context.Context, data []byte) ([]byte, error) {
	const op = "media.PDFCompressor.Transform"

	if c.scratchDir != "" {
		if err := c.fs.MkdirAll(c.scratchDir, 0o700); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	dir, err := afero.TempDir(c.fs, c.scratchDir, "pdf-")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = c.fs.RemoveAll(dir) }()

	in := filepath.Join(dir, "input.pdf")
	out := filepath.Join(dir, "output.pdf")
	if err := afero.WriteFile(c.fs, in, data, 0o600); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.run(runCtx, execute.ExecTask{
		Command:     c.binary,
		Args:        GhostscriptArgs(in, out),
		StreamStdio: false,
	})
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%s: %w after %s", op, ErrTimeout, c.timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrCompress, err)
	}
	if res.ExitCode != 0 || res.Cancelled {
		return nil, fmt.Errorf("%s: %w: exit code %d: %s", op, ErrCompress, res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	compressed, err := afero.ReadFile(c.fs, out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrCompress, err)
	}
	return compressed, nil
}

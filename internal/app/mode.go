package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hyperifyio/goscrape/internal/extract"
)

// ModeSource picks the extraction label for a URL.
type ModeSource interface {
	Mode(ctx context.Context, url string) (string, error)
}

// FixedMode returns the same label for every URL.
type FixedMode string

func (m FixedMode) Mode(context.Context, string) (string, error) { return string(m), nil }

// PromptModeSource asks an operator on Out and reads one line from In.
type PromptModeSource struct {
	In  io.Reader
	Out io.Writer

	scanner *bufio.Scanner
}

func (p *PromptModeSource) Mode(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.scanner == nil {
		p.scanner = bufio.NewScanner(p.In)
	}
	if p.Out != nil {
		fmt.Fprintf(p.Out, "Enter the type of data to extract from the page (%s): ", strings.Join(extract.Labels, ", "))
	}
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

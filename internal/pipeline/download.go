package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"gyre/internal/services"
)

// downloadStream transfers one media stream to dest. Bytes land in a
// temp-suffixed file that is renamed onto dest only after the body is fully
// consumed. Cancellation is checked between chunks so a shutdown never stalls
// on a slow transfer.
func downloadStream(ctx context.Context, client *http.Client, streamURL, dest string, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = 1024
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "download", "get stream", streamURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransient, "download", "get stream",
			fmt.Sprintf("%s: status %d", streamURL, resp.StatusCode), nil)
	}

	temp := dest + tempSuffix
	file, err := os.Create(temp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if err := copyChunks(ctx, file, resp, chunkSize); err != nil {
		file.Close()
		os.Remove(temp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(temp)
		return fmt.Errorf("close temp file: %w", err)
	}

	// The rename is the commit point: a file only reaches its final name
	// with its full contents.
	if err := os.Rename(temp, dest); err != nil {
		os.Remove(temp)
		return fmt.Errorf("finalize stream file: %w", err)
	}
	return nil
}

func copyChunks(ctx context.Context, file *os.File, resp *http.Response, chunkSize int) error {
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := file.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write chunk: %w", werr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return services.Wrap(services.ErrTransient, "download", "read stream", "", err)
		}
	}
}

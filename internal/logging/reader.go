package logging

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// DefaultTailLines is the default number of lines to read when tailing.
const DefaultTailLines = 100

// Reader reads execution log files back.
type Reader struct {
	pathMgr *PathManager
}

// NewReader creates a Reader backed by the given PathManager.
func NewReader(pathMgr *PathManager) *Reader {
	return &Reader{pathMgr: pathMgr}
}

// ReadAll reads every line of the named execution log.
func (r *Reader) ReadAll(name string) ([]string, error) {
	return readAllLines(r.pathMgr.LogPath(name))
}

// ReadLastN reads the last n lines of the named execution log. If n <= 0,
// DefaultTailLines is used.
func (r *Reader) ReadLastN(name string, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultTailLines
	}
	return readLastNLines(r.pathMgr.LogPath(name), n)
}

// Follow streams new log lines to the provided writer as they are appended,
// like `tail -f`. It blocks until the context is cancelled. pollInterval
// determines how frequently to check for new content.
func (r *Reader) Follow(ctx context.Context, name string, out io.Writer, pollInterval time.Duration) error {
	file, err := os.Open(r.pathMgr.LogPath(name))
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek to end: %w", err)
	}

	reader := bufio.NewReader(file)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for {
				line, err := reader.ReadBytes('\n')
				// Write any data received, even alongside EOF.
				if len(line) > 0 {
					if _, werr := out.Write(line); werr != nil {
						return fmt.Errorf("write output: %w", werr)
					}
				}
				if err != nil {
					if err == io.EOF {
						break
					}
					return fmt.Errorf("read line: %w", err)
				}
			}
		}
	}
}

// FollowWithHistory writes the last n lines and then follows new output,
// like `tail -n N -f`.
func (r *Reader) FollowWithHistory(ctx context.Context, name string, out io.Writer, n int, pollInterval time.Duration) error {
	lines, err := r.ReadLastN(name, n)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
	}

	return r.Follow(ctx, name, out, pollInterval)
}

func readAllLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log file: %w", err)
	}
	return lines, nil
}

// readLastNLines keeps a ring of the last n lines so large files are not
// held in memory.
func readLastNLines(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	ring := make([]string, n)
	idx := 0
	count := 0

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % n
		count++
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log file: %w", err)
	}

	if count == 0 {
		return nil, nil
	}
	if count < n {
		return ring[:count], nil
	}

	result := make([]string, n)
	for i := range n {
		result[i] = ring[(idx+i)%n]
	}
	return result, nil
}

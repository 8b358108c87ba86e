package sources

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"gyre/internal/coubapi"
)

// Source yields the item identifiers of one input: a direct link, a link list
// file or a paginated timeline. Enumeration happens before scheduling, so a
// Source never downloads media.
type Source interface {
	// Kind names the source family for logs and error messages.
	Kind() string
	// Describe returns the user-facing identity of this source.
	Describe() string
	// IDs enumerates the identifiers, newest first as served by the API.
	// A positive limit caps the result.
	IDs(ctx context.Context, client *coubapi.Client, limit int) ([]string, error)
}

// Item is a single directly-referenced coub.
type Item struct {
	ID string
}

func (i Item) Kind() string     { return "coub" }
func (i Item) Describe() string { return i.ID }

// IDs returns the bare identifier. Whether the item actually exists is the
// pipeline's business; enumerating it costs no request.
func (i Item) IDs(ctx context.Context, client *coubapi.Client, limit int) ([]string, error) {
	if limit == 0 || limit >= 1 {
		return []string{i.ID}, nil
	}
	return nil, nil
}

// LinkList reads identifiers from a text file of canonical view URLs, one per
// line. Lines that are not view links are ignored, which lets the unavailable
// sidecar of a previous run double as an input list.
type LinkList struct {
	Path string
}

func (l LinkList) Kind() string     { return "list" }
func (l LinkList) Describe() string { return l.Path }

func (l LinkList) IDs(ctx context.Context, client *coubapi.Client, limit int) ([]string, error) {
	file, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open link list: %w", err)
	}
	defer file.Close()

	var ids []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		id, ok := strings.CutPrefix(line, viewPrefix)
		if !ok || id == "" {
			continue
		}
		ids = append(ids, id)
		if limit > 0 && len(ids) == limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read link list: %w", err)
	}
	return ids, nil
}

const viewPrefix = "https://coub.com/view/"

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	recsync "github.com/poiesic/recollect/sync"
)

// feedLine is one message in the JSON-lines feed file.
type feedLine struct {
	Id         string    `json:"id"`
	AuthorId   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Bot        bool      `json:"bot"`
	Channel    string    `json:"channel"`
	Contents   string    `json:"contents"`
	Kind       string    `json:"kind"`
	Timestamp  time.Time `json:"timestamp"`
}

// fileSource serves sync pages from a JSON-lines feed file, re-reading the
// file on each fetch so appended lines show up on the next cycle. It doubles
// as the name resolver, using the author names embedded in the feed.
type fileSource struct {
	path string

	mu    sync.Mutex
	names map[string]string
}

func newFileSource(path string) (*fileSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return &fileSource{path: path, names: make(map[string]string)}, nil
}

// messageToken orders messages by timestamp; fixed width keeps string
// comparison consistent with time order.
func messageToken(ts time.Time) string {
	return fmt.Sprintf("%020d", ts.UnixNano())
}

func (s *fileSource) readAll() ([]feedLine, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []feedLine
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var line feedLine
		if err := json.Unmarshal([]byte(text), &line); err != nil {
			return nil, fmt.Errorf("malformed feed line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(lines, func(a, b feedLine) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return lines, nil
}

func (s *fileSource) FetchPage(_ context.Context, channel, afterToken string, limit int) (*recsync.Page, error) {
	lines, err := s.readAll()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	var matched []feedLine
	for _, line := range lines {
		if line.Channel != channel {
			continue
		}
		if line.AuthorName != "" {
			s.names[line.AuthorId] = line.AuthorName
		}
		if afterToken != "" && messageToken(line.Timestamp) <= afterToken {
			continue
		}
		matched = append(matched, line)
	}
	s.mu.Unlock()

	// First run: most recent page only, not the full backlog
	if afterToken == "" && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	page := &recsync.Page{}
	for _, line := range matched {
		kind := recsync.KindDefault
		if line.Kind == "system" {
			kind = recsync.KindSystem
		}
		page.Messages = append(page.Messages, recsync.SourceMessage{
			Id:          line.Id,
			AuthorId:    line.AuthorId,
			AuthorIsBot: line.Bot,
			ChannelName: line.Channel,
			Contents:    line.Contents,
			Kind:        kind,
			Timestamp:   line.Timestamp,
			Token:       messageToken(line.Timestamp),
		})
	}
	if len(matched) > 0 {
		page.LastToken = messageToken(matched[len(matched)-1].Timestamp)
	}
	return page, nil
}

func (s *fileSource) ResolveName(_ context.Context, authorId string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name, ok := s.names[authorId]; ok {
		return name, nil
	}
	return "", fmt.Errorf("unknown author %q", authorId)
}

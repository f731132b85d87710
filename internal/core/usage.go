package core

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// UsageTokens is the token breakdown of a single API turn.
type UsageTokens struct {
	InputTokens          int64 `json:"inputTokens"`
	CacheReadInputTokens int64 `json:"cacheReadInputTokens"`
	OutputTokens         int64 `json:"outputTokens"`
}

// UsageRecord is one billable turn from a session transcript under
// ~/.claude/projects.
type UsageRecord struct {
	UUID      string      `json:"uuid"`
	Timestamp string      `json:"timestamp"`
	Model     string      `json:"model"`
	Usage     UsageTokens `json:"usage"`
}

// ScanUsage reads every session transcript under ~/.claude/projects and
// returns the turns that carried token usage. Transcripts are JSONL; lines
// that are malformed or carry no usage are skipped rather than failing the
// scan, since sessions get appended to while we read.
func (s *Scanner) ScanUsage(ctx context.Context) ([]UsageRecord, error) {
	root := s.paths.ProjectsDir()
	var records []UsageRecord
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}
		fileRecords, err := readUsageFile(path)
		if err != nil {
			// Skip files we cannot open, same as unparseable lines.
			return nil
		}
		records = append(records, fileRecords...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Timestamp < records[j].Timestamp })
	return records, nil
}

func readUsageFile(path string) ([]UsageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []UsageRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		parsed := gjson.Parse(line)
		if !parsed.IsObject() {
			continue
		}
		rec := UsageRecord{
			UUID:      parsed.Get("uuid").String(),
			Timestamp: parsed.Get("timestamp").String(),
			Model:     parsed.Get("model").String(),
		}
		// Assistant turns nest model and usage under message.
		if rec.Model == "" {
			rec.Model = parsed.Get("message.model").String()
		}
		usage := parsed.Get("usage")
		if !usage.Exists() {
			usage = parsed.Get("message.usage")
		}
		rec.Usage = UsageTokens{
			InputTokens:          usage.Get("input_tokens").Int(),
			CacheReadInputTokens: usage.Get("cache_read_input_tokens").Int(),
			OutputTokens:         usage.Get("output_tokens").Int(),
		}
		if rec.UUID == "" || rec.Timestamp == "" {
			continue
		}
		if rec.Usage.InputTokens+rec.Usage.OutputTokens <= 0 {
			continue
		}
		records = append(records, rec)
	}
	return records, sc.Err()
}

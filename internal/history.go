package internal

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

const historyTimeLayout = "20060102-150405"

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// TranscriptEntry describes a transcript saved in the history directory
type TranscriptEntry struct {
	Name    string
	Path    string
	Size    int64
	SavedAt time.Time
}

// SaveTranscript stores a transcript in transcriptsDir and returns its path
func SaveTranscript(source AudioSource, transcript, transcriptsDir string, now time.Time) (string, error) {
	if err := EnsureDirs(transcriptsDir); err != nil {
		return "", fmt.Errorf("creating transcripts directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s-%s.txt", now.Format(historyTimeLayout), source.Kind, sourceSlug(source))
	transcriptPath := filepath.Join(transcriptsDir, name)
	if err := os.WriteFile(transcriptPath, []byte(transcript), 0644); err != nil {
		return "", fmt.Errorf("saving transcript: %w", err)
	}
	return transcriptPath, nil
}

// ListTranscripts returns saved transcripts, newest first
func ListTranscripts(transcriptsDir string) ([]TranscriptEntry, error) {
	dirEntries, err := os.ReadDir(transcriptsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading transcripts directory: %w", err)
	}

	var entries []TranscriptEntry
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".txt" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		savedAt := info.ModTime()
		if len(de.Name()) >= len(historyTimeLayout) {
			if t, err := time.ParseInLocation(historyTimeLayout, de.Name()[:len(historyTimeLayout)], time.Local); err == nil {
				savedAt = t
			}
		}
		entries = append(entries, TranscriptEntry{
			Name:    strings.TrimSuffix(de.Name(), ".txt"),
			Path:    filepath.Join(transcriptsDir, de.Name()),
			Size:    info.Size(),
			SavedAt: savedAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SavedAt.After(entries[j].SavedAt)
	})
	return entries, nil
}

// ReadTranscript loads a saved transcript by name, with or without the .txt suffix
func ReadTranscript(name, transcriptsDir string) (string, error) {
	name = strings.TrimSuffix(filepath.Base(name), ".txt")
	transcriptPath := filepath.Join(transcriptsDir, name+".txt")
	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no saved transcript named %s", name)
		}
		return "", fmt.Errorf("reading transcript: %w", err)
	}
	return string(data), nil
}

// ClearTranscripts removes every saved transcript and reports how many were removed
func ClearTranscripts(transcriptsDir string) (int, error) {
	entries, err := ListTranscripts(transcriptsDir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if err := os.Remove(entry.Path); err != nil {
			return removed, fmt.Errorf("removing %s: %w", entry.Name, err)
		}
		removed++
	}
	return removed, nil
}

// HistoryMarkdown formats saved transcripts as a markdown table
func HistoryMarkdown(entries []TranscriptEntry) string {
	if len(entries) == 0 {
		return "No saved transcripts. Set `keep_history = true` in config.toml to keep them.\n"
	}

	var sb strings.Builder
	sb.WriteString("# Saved transcripts\n\n")
	sb.WriteString("| Name | Saved | Size |\n")
	sb.WriteString("|------|-------|------|\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "| %s | %s | %d B |\n", e.Name, e.SavedAt.Format("2006-01-02 15:04"), e.Size)
	}
	return sb.String()
}

// sourceSlug derives a short filename-safe label from the audio source
func sourceSlug(source AudioSource) string {
	var raw string
	if source.IsLink() {
		raw = source.Input
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		if u, err := url.Parse(raw); err == nil {
			raw = strings.TrimPrefix(u.Host, "www.") + " " + u.Path + " " + u.Query().Get("v")
		}
	} else {
		base := filepath.Base(source.Input)
		raw = strings.TrimSuffix(base, filepath.Ext(base))
	}

	slug := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(raw), "-"), "-")
	if len(slug) > 40 {
		slug = strings.TrimRight(slug[:40], "-")
	}
	if slug == "" {
		slug = "transcript"
	}
	return slug
}

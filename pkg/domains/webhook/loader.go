package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wacrm/pkg/dtos"
)

// SortPayloadFiles orders payload file names for ingestion: files whose
// names suggest they carry only status events go last, so most status
// events find their message already stored. Within each group the order
// is lexicographic.
func SortPayloadFiles(names []string) []string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := isStatusFile(sorted[i]), isStatusFile(sorted[j])
		if si != sj {
			return !si
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}

func isStatusFile(name string) bool {
	return strings.Contains(strings.ToLower(filepath.Base(name)), "status")
}

// ProcessDirectory ingests every JSON payload file in dir. A payload
// that fails to parse or process is logged and skipped; the scan checks
// ctx between payloads, so an abort never leaves a payload half-read
// but uncommitted payloads are simply not started.
func (s *service) ProcessDirectory(ctx context.Context, dir string) ([]*dtos.BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read payload directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}

	var results []*dtos.BatchResult
	for _, name := range SortPayloadFiles(names) {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[error] cannot read payload file %s: %v", path, err)
			continue
		}

		var payload dtos.WebhookPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			log.Printf("[error] cannot parse payload file %s: %v", path, err)
			continue
		}
		if payload.ID == "" {
			payload.ID = strings.TrimSuffix(name, filepath.Ext(name))
		}

		result, err := s.ProcessPayload(ctx, &payload)
		if err != nil {
			// Fatal for this payload only.
			log.Printf("[error] payload file %s rejected: %v", path, err)
			continue
		}
		results = append(results, result)
	}

	log.Printf("[info] directory import completed: %d payloads processed from %s", len(results), dir)
	return results, nil
}

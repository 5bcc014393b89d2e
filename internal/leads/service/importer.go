package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"leadzap_backend/internal/events"
	"leadzap_backend/internal/leads/domain"
	"leadzap_backend/internal/leads/repository"
	"leadzap_backend/internal/leads/transport"
	"leadzap_backend/platform/apperr"
	"leadzap_backend/platform/phone"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	importConcurrency = 5
	maxImportRows     = 5000
)

type csvRow struct {
	line   int
	name   string
	phone  string
	email  string
	source string
	tags   []string
}

// ImportCSV bulk-creates leads from a CSV stream. Expected header:
// name,phone[,email][,origem][,tags] where tags are ';'-separated.
// Rows whose phone already exists for the tenant are skipped, malformed
// rows are reported per line.
func (s *Service) ImportCSV(ctx context.Context, tenantID uuid.UUID, r io.Reader) (transport.ImportResultResponse, error) {
	rows, parseErrors, err := parseLeadCSV(r)
	if err != nil {
		return transport.ImportResultResponse{}, err
	}

	var (
		mu      sync.Mutex
		created int
		skipped int
		failed  = parseErrors
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importConcurrency)

	for _, row := range rows {
		row := row
		g.Go(func() error {
			source := domain.Source(row.source)
			if !domain.ValidSource(source) {
				source = domain.SourceUploadCSV
			}
			params := repository.CreateLeadParams{
				TenantID: tenantID,
				Name:     row.name,
				Phone:    phone.NormalizeE164(row.phone),
				Source:   source,
				Tags:     row.tags,
			}
			if row.email != "" {
				params.Email = &row.email
			}

			_, wasCreated, err := s.repo.CreateIfAbsent(gctx, params)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				failed = append(failed, transport.ImportError{Line: row.line, Reason: err.Error()})
			case wasCreated:
				created++
			default:
				skipped++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return transport.ImportResultResponse{}, err
	}

	sort.Slice(failed, func(i, j int) bool { return failed[i].Line < failed[j].Line })

	s.eventBus.Publish(ctx, events.LeadsImported{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  tenantID,
		Created:   created,
		Skipped:   skipped,
		Failed:    len(failed),
	})

	return transport.ImportResultResponse{
		Created: created,
		Skipped: skipped,
		Failed:  len(failed),
		Errors:  failed,
	}, nil
}

func parseLeadCSV(r io.Reader) ([]csvRow, []transport.ImportError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, apperr.BadRequest("empty or unreadable CSV file")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	nameIdx, hasName := cols["name"]
	phoneIdx, hasPhone := cols["phone"]
	if !hasName || !hasPhone {
		return nil, nil, apperr.BadRequest("CSV must have name and phone columns")
	}
	emailIdx, hasEmail := cols["email"]
	sourceIdx, hasSource := cols["source"]
	if !hasSource {
		sourceIdx, hasSource = cols["origem"]
	}
	tagsIdx, hasTags := cols["tags"]

	var (
		rows     []csvRow
		failures []transport.ImportError
	)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			failures = append(failures, transport.ImportError{Line: line, Reason: "malformed row"})
			continue
		}
		if len(rows) >= maxImportRows {
			return nil, nil, apperr.BadRequest(fmt.Sprintf("CSV exceeds the limit of %d rows", maxImportRows))
		}

		row := csvRow{
			line:  line,
			name:  strings.TrimSpace(record[nameIdx]),
			phone: strings.TrimSpace(record[phoneIdx]),
		}
		if hasEmail && emailIdx < len(record) {
			row.email = strings.TrimSpace(record[emailIdx])
		}
		if hasSource && sourceIdx < len(record) {
			row.source = strings.TrimSpace(record[sourceIdx])
		}
		if hasTags && tagsIdx < len(record) {
			for _, tag := range strings.Split(record[tagsIdx], ";") {
				if tag = strings.TrimSpace(tag); tag != "" {
					row.tags = append(row.tags, tag)
				}
			}
		}

		switch {
		case row.name == "":
			failures = append(failures, transport.ImportError{Line: line, Reason: "missing name"})
		case row.phone == "":
			failures = append(failures, transport.ImportError{Line: line, Reason: "missing phone"})
		default:
			rows = append(rows, row)
		}
	}

	return rows, failures, nil
}

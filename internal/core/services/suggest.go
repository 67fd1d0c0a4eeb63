package services

import (
	"context"
	"sort"
	"strings"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/logger"
)

// DefaultSuggestLimit and MaxSuggestLimit bound typeahead responses.
const (
	DefaultSuggestLimit = 10
	MaxSuggestLimit     = 20
)

// Suggest returns typeahead completions drawn from the active
// snapshot: case numbers, judges and canonical legal terms.
func (s *SearchService) Suggest(ctx context.Context, prefix string, suggestType string, limit int) ([]domain.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if len(prefix) < domain.MinSuggestQueryLength {
		return []domain.Suggestion{}, nil
	}
	if suggestType == "" {
		suggestType = domain.SuggestAuto
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	if limit > MaxSuggestLimit {
		limit = MaxSuggestLimit
	}

	snap := s.holder.Current()
	if snap.Empty() {
		return nil, domain.ErrIndexUnavailable
	}

	wants := func(t string) bool {
		return suggestType == domain.SuggestAuto || suggestType == t
	}

	seen := make(map[string]struct{})
	var out []domain.Suggestion
	add := func(value, typ, key, info string) {
		dedup := typ + "|" + value
		if _, dup := seen[dedup]; dup {
			return
		}
		seen[dedup] = struct{}{}
		out = append(out, domain.Suggestion{
			Value:          value,
			Type:           typ,
			CanonicalKey:   key,
			AdditionalInfo: info,
		})
	}

	for _, caseID := range snap.Order {
		meta := snap.Cases[caseID]
		if wants(domain.SuggestCase) && strings.Contains(strings.ToLower(meta.CaseNumber), prefix) {
			add(meta.CaseNumber, domain.SuggestCase, "", meta.Title)
		}
		if wants(domain.SuggestJudge) && meta.Judge != "" &&
			strings.Contains(strings.ToLower(meta.Judge), prefix) {
			add(meta.Judge, domain.SuggestJudge, "", meta.Court)
		}
		for _, term := range meta.LegalTerms {
			if !strings.HasPrefix(term, prefix) {
				continue
			}
			if strings.Count(term, ":") == 1 {
				if wants(domain.SuggestSection) {
					add(term, domain.SuggestSection, term, "")
				}
			} else if wants(domain.SuggestCitation) {
				add(term, domain.SuggestCitation, term, "")
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > limit {
		out = out[:limit]
	}
	logger.Debug("Suggest %q (%s): %d completions", prefix, suggestType, len(out))
	return out, nil
}

// Status reports the health and coverage of the active index.
func (s *SearchService) Status(ctx context.Context) (*domain.IndexStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := s.holder.Current()
	if snap == nil {
		return &domain.IndexStatus{}, nil
	}
	st := snap.Status()
	return &st, nil
}

package service

import (
	"context"
	"errors"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/search"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SearchService compiles search strings and runs them against the ticket
// store.
type SearchService struct {
	builder  *search.TicketQueryBuilder
	tickets  repository.TicketRepository
	metrics  *observability.Metrics
	pageSize int
}

// NewSearchService constructs the service.
func NewSearchService(builder *search.TicketQueryBuilder, tickets repository.TicketRepository, metrics *observability.Metrics, pageSize int) *SearchService {
	if pageSize <= 0 {
		pageSize = 25
	}
	return &SearchService{
		builder:  builder,
		tickets:  tickets,
		metrics:  metrics,
		pageSize: pageSize,
	}
}

// SearchResult carries one page of matching tickets.
type SearchResult struct {
	Tickets []domain.Ticket
	Total   int64
	Page    int
}

// SearchTickets parses, compiles and executes the query. A syntax error in
// the input is a validation failure; an unsupported qualifier reaching the
// builder is a defect upstream and surfaces as an internal error.
func (s *SearchService) SearchTickets(ctx context.Context, rawQuery string, page int) (*SearchResult, error) {
	query, err := search.Parse(rawQuery)
	if err != nil {
		var syntaxErr *search.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, apperrors.NewValidationError(syntaxErr.Error(), map[string]any{"query": rawQuery})
		}
		return nil, apperrors.MapError(err)
	}

	where, params, err := s.builder.Build(ctx, query, 0)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.metrics.RecordSearch()

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * s.pageSize

	tickets, err := s.tickets.SearchWithQuery(ctx, where, params, s.pageSize, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	total, err := s.tickets.CountWithQuery(ctx, where, params)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &SearchResult{Tickets: tickets, Total: total, Page: page}, nil
}

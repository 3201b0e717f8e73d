package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// UserDirectory resolves actor qualifier values against known users.
// Empty result sets are expected and handled with a sentinel, never an
// error.
type UserDirectory interface {
	FindLike(ctx context.Context, text string) ([]domain.User, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// OrganizationDirectory resolves org qualifier values.
type OrganizationDirectory interface {
	FindLike(ctx context.Context, text string) ([]domain.Organization, error)
}

// sentinelID deliberately matches no row, so a typo'd name degrades to an
// empty result instead of an error.
const sentinelID int64 = -1

// ErrEmptyExpression indicates a defective condition that compiled to
// nothing. It is a bug in the parser stage, not bad user input.
var ErrEmptyExpression = errors.New("a condition is defective as it generates an empty expression")

// UnsupportedQualifierError reports a qualifier/value pair the builder has
// no rule for.
type UnsupportedQualifierError struct {
	Qualifier string
	Value     string
}

func (e *UnsupportedQualifierError) Error() string {
	return fmt.Sprintf("unexpected %q qualifier with value %q", e.Qualifier, e.Value)
}

// TicketQueryBuilder compiles a parsed Query into a where clause plus
// bound parameters. All counters live in a per-call state value, so one
// builder can serve concurrent requests.
type TicketQueryBuilder struct {
	users UserDirectory
	orgs  OrganizationDirectory
}

// NewTicketQueryBuilder constructs the builder.
func NewTicketQueryBuilder(users UserDirectory, orgs OrganizationDirectory) *TicketQueryBuilder {
	return &TicketQueryBuilder{users: users, orgs: orgs}
}

// Build returns the where clause and its parameters. Parameter names are
// of the form q<sequence>p<index>; distinct sequences never collide when
// several compiled fragments are combined in one outer query.
func (b *TicketQueryBuilder) Build(ctx context.Context, query *Query, querySequence int) (string, map[string]any, error) {
	state := &buildState{
		sequence:   querySequence,
		parameters: map[string]any{},
	}
	where, err := b.buildWhere(ctx, state, query)
	if err != nil {
		return "", nil, err
	}
	return where, state.parameters, nil
}

type buildState struct {
	sequence   int
	parameters map[string]any
}

func (s *buildState) register(value any) string {
	key := fmt.Sprintf("q%dp%d", s.sequence, len(s.parameters))
	s.parameters[key] = value
	return key
}

func (b *TicketQueryBuilder) buildWhere(ctx context.Context, state *buildState, query *Query) (string, error) {
	where := ""

	for _, condition := range query.Conditions {
		var expr string
		var err error

		switch condition.Kind {
		case ConditionText:
			expr = b.buildTextExpr(state, condition)
		case ConditionQualifier:
			expr, err = b.buildQualifierExpr(ctx, state, condition)
		case ConditionQuery:
			expr, err = b.buildQueryExpr(ctx, state, condition)
		}
		if err != nil {
			return "", err
		}
		if expr == "" {
			return "", ErrEmptyExpression
		}

		if where == "" {
			where = expr
		} else if condition.And() {
			where += " AND " + expr
		} else {
			where += " OR " + expr
		}
	}

	return where, nil
}

func (b *TicketQueryBuilder) buildTextExpr(state *buildState, condition Condition) string {
	if len(condition.Values) > 1 {
		exprs := make([]string, 0, len(condition.Values))
		for _, value := range condition.Values {
			if id, ok := extractID(value); ok {
				exprs = append(exprs, state.expr("id", []any{id}, false))
			} else {
				exprs = append(exprs, state.exprLike("title", value, false))
			}
		}
		where := strings.Join(exprs, " OR ")
		if condition.Not {
			return "NOT (" + where + ")"
		}
		return "(" + where + ")"
	}

	value := condition.Values[0]
	if id, ok := extractID(value); ok {
		return state.expr("id", []any{id}, condition.Not)
	}
	return state.exprLike("title", value, condition.Not)
}

func (b *TicketQueryBuilder) buildQualifierExpr(ctx context.Context, state *buildState, condition Condition) (string, error) {
	qualifier := condition.Qualifier
	values := condition.Values

	switch qualifier {
	case "status":
		return state.expr("status", expandStatuses(values), condition.Not), nil
	case "assignee", "requester":
		ids, err := b.resolveActors(ctx, values)
		if err != nil {
			return "", err
		}
		return state.expr(qualifier, ids, condition.Not), nil
	case "involves":
		ids, err := b.resolveActors(ctx, values)
		if err != nil {
			return "", err
		}
		assigneeWhere := state.expr("assignee", ids, false)
		requesterWhere := state.expr("requester", ids, false)
		where := assigneeWhere + " OR " + requesterWhere
		if condition.Not {
			return "NOT (" + where + ")", nil
		}
		return "(" + where + ")", nil
	case "org":
		ids, err := b.resolveOrganizations(ctx, values)
		if err != nil {
			return "", err
		}
		return state.expr("organization", ids, condition.Not), nil
	case "uid", "type", "urgency", "impact", "priority":
		return state.expr(qualifier, asAnySlice(values), condition.Not), nil
	case "no":
		if field, ok := presenceField(values); ok {
			return state.exprNull(field, condition.Not), nil
		}
	case "has":
		// has is the logical complement of no.
		if field, ok := presenceField(values); ok {
			return state.exprNull(field, !condition.Not), nil
		}
	}

	return "", &UnsupportedQualifierError{
		Qualifier: qualifier,
		Value:     strings.Join(values, ","),
	}
}

func (b *TicketQueryBuilder) buildQueryExpr(ctx context.Context, state *buildState, condition Condition) (string, error) {
	where, err := b.buildWhere(ctx, state, condition.Sub)
	if err != nil {
		return "", err
	}
	if condition.Not {
		return "NOT (" + where + ")", nil
	}
	return "(" + where + ")", nil
}

// expr builds an equality or membership predicate. A single value compiles
// to =/!= and a longer list to IN/NOT IN; the list itself is bound as one
// parameter.
func (s *buildState) expr(field string, values []any, not bool) string {
	if len(values) == 1 {
		key := s.register(values[0])
		if not {
			return fmt.Sprintf("t.%s != :%s", field, key)
		}
		return fmt.Sprintf("t.%s = :%s", field, key)
	}
	key := s.register(values)
	if not {
		return fmt.Sprintf("t.%s NOT IN (:%s)", field, key)
	}
	return fmt.Sprintf("t.%s IN (:%s)", field, key)
}

func (s *buildState) exprLike(field, value string, not bool) string {
	key := s.register("%" + strings.ToLower(value) + "%")
	if not {
		return fmt.Sprintf("LOWER(t.%s) NOT LIKE :%s", field, key)
	}
	return fmt.Sprintf("LOWER(t.%s) LIKE :%s", field, key)
}

func (s *buildState) exprNull(field string, not bool) string {
	if not {
		return fmt.Sprintf("t.%s IS NOT NULL", field)
	}
	return fmt.Sprintf("t.%s IS NULL", field)
}

// expandStatuses substitutes the open/finished shorthands with the
// statuses they stand for.
func expandStatuses(values []string) []any {
	expanded := []any{}
	for _, value := range values {
		switch value {
		case "open":
			for _, status := range domain.OpenStatuses() {
				expanded = append(expanded, string(status))
			}
		case "finished":
			for _, status := range domain.FinishedStatuses() {
				expanded = append(expanded, string(status))
			}
		default:
			expanded = append(expanded, value)
		}
	}
	return expanded
}

// resolveActors maps each value to user ids: a #id literal, @me for the
// authenticated user, or a fuzzy directory lookup. A value that resolves
// to nothing contributes the sentinel instead of failing.
func (b *TicketQueryBuilder) resolveActors(ctx context.Context, values []string) ([]any, error) {
	resolved := []any{}

	for _, value := range values {
		var ids []int64

		if id, ok := extractID(value); ok {
			ids = []int64{id}
		} else if value == "@me" {
			user, err := b.users.CurrentUser(ctx)
			if err != nil {
				return nil, err
			}
			ids = []int64{user.ID}
		} else {
			users, err := b.users.FindLike(ctx, value)
			if err != nil {
				return nil, err
			}
			for _, user := range users {
				ids = append(ids, user.ID)
			}
		}

		if len(ids) == 0 {
			resolved = append(resolved, sentinelID)
			continue
		}
		for _, id := range ids {
			resolved = append(resolved, id)
		}
	}

	return resolved, nil
}

func (b *TicketQueryBuilder) resolveOrganizations(ctx context.Context, values []string) ([]any, error) {
	resolved := []any{}

	for _, value := range values {
		var ids []int64

		if id, ok := extractID(value); ok {
			ids = []int64{id}
		} else {
			orgs, err := b.orgs.FindLike(ctx, value)
			if err != nil {
				return nil, err
			}
			for _, org := range orgs {
				ids = append(ids, org.ID)
			}
		}

		if len(ids) == 0 {
			resolved = append(resolved, sentinelID)
			continue
		}
		for _, id := range ids {
			resolved = append(resolved, id)
		}
	}

	return resolved, nil
}

// extractID recognizes #<digits> literals.
func extractID(value string) (int64, bool) {
	if !strings.HasPrefix(value, "#") || len(value) == 1 {
		return 0, false
	}
	for _, r := range value[1:] {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(value[1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func presenceField(values []string) (string, bool) {
	if len(values) != 1 {
		return "", false
	}
	if values[0] == "assignee" || values[0] == "solution" {
		return values[0], true
	}
	return "", false
}

func asAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}
	return out
}

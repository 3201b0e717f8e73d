package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type fakeUserDirectory struct {
	users   map[string][]domain.User
	current *domain.User
}

func (f *fakeUserDirectory) FindLike(_ context.Context, text string) ([]domain.User, error) {
	return f.users[text], nil
}

func (f *fakeUserDirectory) CurrentUser(context.Context) (*domain.User, error) {
	if f.current == nil {
		return nil, errors.New("no authenticated user")
	}
	return f.current, nil
}

type fakeOrgDirectory struct {
	orgs map[string][]domain.Organization
}

func (f *fakeOrgDirectory) FindLike(_ context.Context, text string) ([]domain.Organization, error) {
	return f.orgs[text], nil
}

func newTestBuilder() (*TicketQueryBuilder, *fakeUserDirectory, *fakeOrgDirectory) {
	users := &fakeUserDirectory{
		users:   map[string][]domain.User{},
		current: &domain.User{ID: 7},
	}
	orgs := &fakeOrgDirectory{orgs: map[string][]domain.Organization{}}
	return NewTicketQueryBuilder(users, orgs), users, orgs
}

func mustBuild(t *testing.T, builder *TicketQueryBuilder, input string, sequence int) (string, map[string]any) {
	t.Helper()
	query, err := Parse(input)
	require.NoError(t, err)
	where, params, err := builder.Build(context.Background(), query, sequence)
	require.NoError(t, err)
	return where, params
}

func TestBuildFreeText(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, params := mustBuild(t, builder, "Emails", 0)
	assert.Equal(t, "LOWER(t.title) LIKE :q0p0", where)
	assert.Equal(t, map[string]any{"q0p0": "%emails%"}, params)
}

func TestBuildIDLiteral(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, params := mustBuild(t, builder, "#42", 0)
	assert.Equal(t, "t.id = :q0p0", where)
	assert.Equal(t, map[string]any{"q0p0": int64(42)}, params)
}

func TestBuildNegatedText(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, params := mustBuild(t, builder, "-spam", 0)
	assert.Equal(t, "LOWER(t.title) NOT LIKE :q0p0", where)
	assert.Equal(t, map[string]any{"q0p0": "%spam%"}, params)
}

func TestBuildTextValueList(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, params := mustBuild(t, builder, "printer,#12", 0)
	assert.Equal(t, "(LOWER(t.title) LIKE :q0p0 OR t.id = :q0p1)", where)
	assert.Equal(t, map[string]any{"q0p0": "%printer%", "q0p1": int64(12)}, params)
}

func TestBuildNegatedTextValueList(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, _ := mustBuild(t, builder, "-printer,scanner", 0)
	assert.Equal(t, "NOT (LOWER(t.title) LIKE :q0p0 OR LOWER(t.title) LIKE :q0p1)", where)
}

func TestBuildStatusOpenExpands(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, params := mustBuild(t, builder, "status:open", 0)
	assert.Equal(t, "t.status IN (:q0p0)", where)
	assert.Equal(t, []any{"new", "in_progress", "planned", "pending"}, params["q0p0"])
}

func TestBuildStatusFinishedExpands(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, params := mustBuild(t, builder, "-status:finished", 0)
	assert.Equal(t, "t.status NOT IN (:q0p0)", where)
	assert.Equal(t, []any{"resolved", "closed"}, params["q0p0"])
}

func TestBuildSingleStatusCollapsesToEquality(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, params := mustBuild(t, builder, "status:closed", 0)
	assert.Equal(t, "t.status = :q0p0", where)
	assert.Equal(t, "closed", params["q0p0"])
}

func TestBuildAssigneeMe(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, params := mustBuild(t, builder, "assignee:@me", 0)
	assert.Equal(t, "t.assignee = :q0p0", where)
	assert.Equal(t, int64(7), params["q0p0"])
}

func TestBuildAssigneeMeWithoutUser(t *testing.T) {
	builder, users, _ := newTestBuilder()
	users.current = nil

	query, err := Parse("assignee:@me")
	require.NoError(t, err)
	_, _, err = builder.Build(context.Background(), query, 0)
	require.Error(t, err)
}

func TestBuildRequesterByName(t *testing.T) {
	builder, users, _ := newTestBuilder()
	users.users["alice"] = []domain.User{{ID: 3}, {ID: 4}}

	where, params := mustBuild(t, builder, "requester:alice", 0)
	assert.Equal(t, "t.requester IN (:q0p0)", where)
	assert.Equal(t, []any{int64(3), int64(4)}, params["q0p0"])
}

func TestBuildUnknownActorUsesSentinel(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, params := mustBuild(t, builder, "assignee:nobody", 0)
	assert.Equal(t, "t.assignee = :q0p0", where)
	assert.Equal(t, sentinelID, params["q0p0"])
}

func TestBuildInvolves(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, params := mustBuild(t, builder, "involves:@me", 0)
	assert.Equal(t, "(t.assignee = :q0p0 OR t.requester = :q0p1)", where)
	assert.Equal(t, int64(7), params["q0p0"])
	assert.Equal(t, int64(7), params["q0p1"])
}

func TestBuildNegatedInvolves(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, _ := mustBuild(t, builder, "-involves:@me", 0)
	assert.Equal(t, "NOT (t.assignee = :q0p0 OR t.requester = :q0p1)", where)
}

func TestBuildOrganization(t *testing.T) {
	builder, _, orgs := newTestBuilder()
	orgs.orgs["probesys"] = []domain.Organization{{ID: 9}}

	where, params := mustBuild(t, builder, "org:probesys", 0)
	assert.Equal(t, "t.organization = :q0p0", where)
	assert.Equal(t, int64(9), params["q0p0"])
}

func TestBuildOrganizationIDLiteral(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, params := mustBuild(t, builder, "org:#3", 0)
	assert.Equal(t, "t.organization = :q0p0", where)
	assert.Equal(t, int64(3), params["q0p0"])
}

func TestBuildAttributeQualifiers(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, params := mustBuild(t, builder, "type:incident urgency:high,medium", 0)
	assert.Equal(t, "t.type = :q0p0 AND t.urgency IN (:q0p1)", where)
	assert.Equal(t, "incident", params["q0p0"])
	assert.Equal(t, []any{"high", "medium"}, params["q0p1"])
}

func TestBuildPresenceQualifiers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "no:assignee", want: "t.assignee IS NULL"},
		{input: "no:solution", want: "t.solution IS NULL"},
		{input: "has:assignee", want: "t.assignee IS NOT NULL"},
		{input: "has:solution", want: "t.solution IS NOT NULL"},
		{input: "-no:assignee", want: "t.assignee IS NOT NULL"},
		{input: "-has:solution", want: "t.solution IS NULL"},
	}

	builder, _, _ := newTestBuilder()
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			where, params := mustBuild(t, builder, tc.input, 0)
			assert.Equal(t, tc.want, where)
			assert.Empty(t, params)
		})
	}
}

func TestBuildUnsupportedQualifier(t *testing.T) {
	builder, _, _ := newTestBuilder()

	query, err := Parse("planet:mars")
	require.NoError(t, err)
	_, _, err = builder.Build(context.Background(), query, 0)

	var unsupported *UnsupportedQualifierError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "planet", unsupported.Qualifier)
	assert.Equal(t, "mars", unsupported.Value)
}

func TestBuildUnsupportedPresenceValue(t *testing.T) {
	builder, _, _ := newTestBuilder()

	query, err := Parse("no:requester")
	require.NoError(t, err)
	_, _, err = builder.Build(context.Background(), query, 0)

	var unsupported *UnsupportedQualifierError
	require.ErrorAs(t, err, &unsupported)
}

func TestBuildCombinators(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, _ := mustBuild(t, builder, "status:open OR urgency:high priority:low", 0)
	assert.Equal(t, "t.status IN (:q0p0) OR t.urgency = :q0p1 AND t.priority = :q0p2", where)
}

func TestBuildNestedGroup(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, _ := mustBuild(t, builder, "status:open (urgency:high OR impact:high)", 0)
	assert.Equal(t, "t.status IN (:q0p0) AND (t.urgency = :q0p1 OR t.impact = :q0p2)", where)
}

func TestBuildNegatedGroup(t *testing.T) {
	builder, _, _ := newTestBuilder()

	where, _ := mustBuild(t, builder, "-(status:closed OR status:resolved)", 0)
	assert.Equal(t, "NOT (t.status = :q0p0 OR t.status = :q0p1)", where)
}

func TestBuildSequencePrefixesParameterNames(t *testing.T) {
	builder, _, _ := newTestBuilder()

	_, first := mustBuild(t, builder, "status:open", 2)
	_, second := mustBuild(t, builder, "status:open", 5)

	assert.Contains(t, first, "q2p0")
	assert.Contains(t, second, "q5p0")
	for key := range first {
		_, clash := second[key]
		assert.False(t, clash, "parameter %s collides across sequences", key)
	}
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		value string
		id    int64
		ok    bool
	}{
		{value: "#42", id: 42, ok: true},
		{value: "#0", id: 0, ok: true},
		{value: "#", ok: false},
		{value: "#-5", ok: false},
		{value: "#+5", ok: false},
		{value: "#4a", ok: false},
		{value: "42", ok: false},
	}

	for _, tc := range tests {
		id, ok := extractID(tc.value)
		assert.Equal(t, tc.ok, ok, "value %q", tc.value)
		if tc.ok {
			assert.Equal(t, tc.id, id, "value %q", tc.value)
		}
	}
}

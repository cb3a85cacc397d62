package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	appErrors "github.com/dpweb/dpweb/pkg/errors"
	"github.com/dpweb/dpweb/pkg/response"
)

type recorded struct {
	method        string
	path          string
	query         string
	authorization string
	body          string
}

func newServer(t *testing.T, reply any) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		*rec = recorded{
			method:        r.Method,
			path:          r.URL.Path,
			query:         r.URL.RawQuery,
			authorization: r.Header.Get("Authorization"),
			body:          string(raw),
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestDoListProjects(t *testing.T) {
	projects := []v1.ProjectInfo{{ID: 1, Ty: v1.ProjectLegacy, Title: "one", AuthorID: 4}}
	srv, rec := newServer(t, response.Success(projects))

	c := New(srv.URL, WithBearer(4, "secret"))
	got, err := Do(context.Background(), c, v1.ListProjects, v1.ProjectListQuery{Limit: 10, Skip: 2}, v1.Empty{})
	require.NoError(t, err)

	assert.Equal(t, projects, got)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/v1/projects/", rec.path)
	assert.Equal(t, "limit=10&skip=2", rec.query)
	assert.Equal(t, "Bearer 4:secret", rec.authorization)
	assert.Empty(t, rec.body)
}

func TestDoCreateProjectSendsBody(t *testing.T) {
	srv, rec := newServer(t, response.Success(v1.ProjectInfo{ID: 9, Title: "new", AuthorID: 4}))

	c := New(srv.URL + "/")
	got, err := Do(context.Background(), c, v1.CreateProject, v1.Empty{}, v1.CreateProjectBody{Title: "new"})
	require.NoError(t, err)

	assert.EqualValues(t, 9, got.ID)
	assert.Equal(t, http.MethodPut, rec.method)
	assert.JSONEq(t, `{"title":"new"}`, rec.body)
	assert.Empty(t, rec.authorization)
}

func TestDoDeleteProjectUsesPathParams(t *testing.T) {
	srv, rec := newServer(t, response.Success(v1.Empty{}))

	c := New(srv.URL)
	_, err := Do(context.Background(), c, v1.DeleteProject, v1.ProjectPath{ID: 14}, v1.Empty{}, 14)
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/v1/projects/14", rec.path)
	assert.Empty(t, rec.query)

	_, err = Do(context.Background(), c, v1.DeleteProject, v1.ProjectPath{ID: 14}, v1.Empty{})
	assert.Error(t, err)
}

func TestDoReturnsEnvelopeError(t *testing.T) {
	srv, rec := newServer(t, response.Fail[v1.IssueUserTokenResponse](appErrors.NotFound))

	c := New(srv.URL, WithMicroservice(TelegramService, "shared"))
	_, err := Do(context.Background(), c, v1.TelegramIssueToken, v1.NewIssueUserTokenQuery(77), v1.Empty{})

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.NotFound, appErr.Kind)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "telegram_id=77", rec.query)

	values, err := EncodeQuery(v1.NewIssueUserTokenQuery(0))
	require.NoError(t, err)
	assert.Equal(t, "telegram_id=0", values.Encode())

	values, err = EncodeQuery(v1.IssueUserTokenQuery{})
	require.NoError(t, err)
	assert.Empty(t, values)
	assert.Equal(t, "Internal-TelegramMicroservice shared", rec.authorization)
}

func TestDoRejectsNonEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := Do(context.Background(), New(srv.URL), v1.GetSelf, v1.Empty{}, v1.Empty{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestEncodeQuery(t *testing.T) {
	values, err := EncodeQuery(v1.Empty{})
	require.NoError(t, err)
	assert.Empty(t, values)

	values, err = EncodeQuery(v1.ProjectPath{ID: 3})
	require.NoError(t, err)
	assert.Empty(t, values)

	type optional struct {
		Name *string `form:"name"`
		Page int     `form:"page"`
	}
	values, err = EncodeQuery(optional{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, "page=2", values.Encode())

	name := "x"
	values, err = EncodeQuery(optional{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "name=x&page=0", values.Encode())
}

func TestWithCopiesClient(t *testing.T) {
	base := New("http://example.invalid")
	authed := base.With(WithBearer(1, "s"))
	assert.Empty(t, base.authorization)
	assert.Equal(t, "Bearer 1:s", authed.authorization)
}

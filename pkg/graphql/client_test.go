package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/graphql")
}

func TestClient_Query_DecodesData(t *testing.T) {
	t.Parallel()

	var got Request
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":{"categories":["a","b"]}}`))
	})

	var out struct {
		Categories []string `json:"categories"`
	}
	err := c.Query(context.Background(), GetCategories, map[string]any{"limit": 2}, &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, out.Categories)
	assert.Equal(t, GetCategories, got.Query)
	assert.Equal(t, float64(2), got.Variables["limit"])
}

func TestClient_Query_GraphQLErrors(t *testing.T) {
	t.Parallel()

	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"product 42 not found"},{"message":"second"}]}`))
	})

	err := c.Query(context.Background(), GetProduct, map[string]any{"id": 42}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequest)
	assert.Equal(t, "product 42 not found", err.Error())
	assert.Equal(t, "product 42 not found", MessageOf(err))
}

func TestClient_Query_HTTPStatus(t *testing.T) {
	t.Parallel()

	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := c.Query(context.Background(), GetProducts, nil, nil)
	require.Error(t, err)

	var gqlErr *Error
	require.True(t, errors.As(err, &gqlErr))
	assert.Equal(t, http.StatusBadGateway, gqlErr.StatusCode)
	assert.Equal(t, "http status 502", MessageOf(err))
}

func TestClient_Query_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewClient(url).Query(context.Background(), GetProducts, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequest)
	assert.NotEmpty(t, MessageOf(err))
}

func TestMessageOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "server message wins", err: &Error{Errors: []ErrorEntry{{Message: "boom"}}, Err: errors.New("ignored")}, want: "boom"},
		{name: "empty server message falls back to cause", err: &Error{Errors: []ErrorEntry{{}}, Err: errors.New("network error")}, want: "network error"},
		{name: "plain error", err: errors.New("network error"), want: "network error"},
		{name: "nothing usable", err: &Error{}, want: DefaultErrorMessage},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MessageOf(tt.err))
		})
	}
}

func TestOperationName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, OpGetProducts, OperationName(GetProducts))
	assert.Equal(t, OpGetProduct, OperationName(GetProduct))
	assert.Equal(t, OpGetProductsByCategory, OperationName(GetProductsByCategory))
	assert.Equal(t, OpGetCategories, OperationName(GetCategories))
	assert.Equal(t, "", OperationName("{ products { id } }"))
}

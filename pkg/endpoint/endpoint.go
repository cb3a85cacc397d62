// Package endpoint describes API operations as typed, stateless descriptors.
//
// A Descriptor fixes the HTTP method, the path template relative to its group
// and the three payload shapes of an operation: query parameters Q, request
// body B and success result R. Servers bind handlers through Register, which
// only accepts handlers producing response.Response[R]; clients build calls
// from the same value.
package endpoint

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dpweb/dpweb/pkg/response"
)

// Empty is the unit shape for operations without a query, body or result.
type Empty = response.Empty

// Group is a resource group sharing a path prefix, for example "/projects".
type Group struct {
	Name   string
	Prefix string
}

// Route is the untyped view of a descriptor, used for catalogs and logging.
type Route interface {
	Group() Group
	Name() string
	Method() string
	PartialPath() string
	Path() string
}

// Descriptor declares one API operation.
type Descriptor[Q, B, R any] struct {
	group   Group
	name    string
	method  string
	partial string
}

// New declares an operation. partial must start with "/" and may contain
// ":param" segments.
func New[Q, B, R any](group Group, name, method, partial string) Descriptor[Q, B, R] {
	if !strings.HasPrefix(partial, "/") {
		panic(fmt.Sprintf("endpoint %s: path %q must start with /", name, partial))
	}
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodPatch:
	default:
		panic(fmt.Sprintf("endpoint %s: unsupported method %q", name, method))
	}
	return Descriptor[Q, B, R]{group: group, name: name, method: method, partial: partial}
}

func (d Descriptor[Q, B, R]) Group() Group        { return d.group }
func (d Descriptor[Q, B, R]) Name() string        { return d.name }
func (d Descriptor[Q, B, R]) Method() string      { return d.method }
func (d Descriptor[Q, B, R]) PartialPath() string { return d.partial }

// Path returns the group prefix joined with the partial path template.
func (d Descriptor[Q, B, R]) Path() string {
	return d.group.Prefix + d.partial
}

// BuildPath substitutes the ":param" segments of Path in order.
func (d Descriptor[Q, B, R]) BuildPath(params ...any) (string, error) {
	segments := strings.Split(d.Path(), "/")
	next := 0
	for i, segment := range segments {
		if !strings.HasPrefix(segment, ":") {
			continue
		}
		if next >= len(params) {
			return "", fmt.Errorf("endpoint %s: missing value for %s", d.name, segment)
		}
		segments[i] = fmt.Sprint(params[next])
		next++
	}
	if next != len(params) {
		return "", fmt.Errorf("endpoint %s: expected %d path params, got %d", d.name, next, len(params))
	}
	return strings.Join(segments, "/"), nil
}

// ParamNames lists the ":param" names of the path template.
func (d Descriptor[Q, B, R]) ParamNames() []string {
	var names []string
	for _, segment := range strings.Split(d.partial, "/") {
		if strings.HasPrefix(segment, ":") {
			names = append(names, segment[1:])
		}
	}
	return names
}

func (d Descriptor[Q, B, R]) String() string {
	return d.method + " " + d.Path()
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a domain error. Numeric codes are part of the public API and
// must never be reused once shipped.
type Kind uint32

const (
	Internal Kind = 10_001

	InvalidInput Kind = 20_001

	NotFound Kind = 40_001
	Conflict Kind = 40_002

	AuthorizationRequired Kind = 60_001
	InvalidToken          Kind = 60_002
	Forbidden             Kind = 60_003
	NoAccess              Kind = 60_004

	Obsolete Kind = 70_001
)

// Class groups kinds by how the transport should report them.
type Class string

const (
	ClassInternal          Class = "internal"
	ClassBadInput          Class = "bad-input"
	ClassNotFound          Class = "not-found"
	ClassConflict          Class = "conflict"
	ClassUnauthenticated   Class = "unauthenticated"
	ClassForbidden         Class = "forbidden"
	ClassInsufficientScope Class = "insufficient-scope"
	ClassObsoleteVersion   Class = "obsolete-version"
)

// ErrUnknownKind is returned when a wire code does not belong to the catalog.
var ErrUnknownKind = errors.New("errors: unknown error kind")

type kindInfo struct {
	name    string
	message string
	class   Class
	status  int
}

var catalog = map[Kind]kindInfo{
	Internal:              {"Internal", "Internal server error", ClassInternal, http.StatusInternalServerError},
	InvalidInput:          {"InvalidInput", "Invalid data in params (query/body)", ClassBadInput, http.StatusBadRequest},
	NotFound:              {"NotFound", "Object not found", ClassNotFound, http.StatusNotFound},
	Conflict:              {"Conflict", "New object conflicts with existing", ClassConflict, http.StatusConflict},
	AuthorizationRequired: {"AuthorizationRequired", "Endpoint requires authorization", ClassUnauthenticated, http.StatusUnauthorized},
	InvalidToken:          {"InvalidToken", "Invalid or expired authorization token", ClassUnauthenticated, http.StatusUnauthorized},
	Forbidden:             {"Forbidden", "Not enough rights to access resource", ClassForbidden, http.StatusForbidden},
	NoAccess:              {"NoAccess", "Not enough scopes to access resource", ClassInsufficientScope, http.StatusForbidden},
	Obsolete:              {"Obsolete", "Outdated API version", ClassObsoleteVersion, http.StatusNotFound},
}

// Kinds returns every kind in the catalog ordered by code.
func Kinds() []Kind {
	return []Kind{
		Internal,
		InvalidInput,
		NotFound,
		Conflict,
		AuthorizationRequired,
		InvalidToken,
		Forbidden,
		NoAccess,
		Obsolete,
	}
}

// ParseKind maps a wire code back to its Kind.
func ParseKind(code uint32) (Kind, error) {
	k := Kind(code)
	if _, ok := catalog[k]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownKind, code)
	}
	return k, nil
}

// MustParseKind is like ParseKind but panics on unknown codes.
func MustParseKind(code uint32) Kind {
	k, err := ParseKind(code)
	if err != nil {
		panic(err)
	}
	return k
}

// Valid reports whether k is part of the catalog.
func (k Kind) Valid() bool {
	_, ok := catalog[k]
	return ok
}

// Code returns the stable machine readable code.
func (k Kind) Code() uint32 { return uint32(k) }

// Name returns the identifier used on the wire as error_name.
func (k Kind) Name() string { return k.info().name }

// Message returns the human readable description of the kind.
func (k Kind) Message() string { return k.info().message }

// Class returns the transport classification.
func (k Kind) Class() Class { return k.info().class }

// StatusCode returns the HTTP status used when the kind is sent to clients.
func (k Kind) StatusCode() int { return k.info().status }

func (k Kind) String() string { return k.Name() }

func (k Kind) info() kindInfo {
	info, ok := catalog[k]
	if !ok {
		// Only reachable through a raw conversion; ParseKind guards the wire.
		return catalog[Internal]
	}
	return info
}

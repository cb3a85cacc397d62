package v1

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownTag is returned when an integer or name does not map to a variant
// of a type tag. Stored values hitting it are corrupt or written by newer code.
var ErrUnknownTag = errors.New("unknown type tag")

// tagTable holds the densely packed variant names of a type tag, indexed by the
// integer encoding.
type tagTable[T ~int64] struct {
	kind  string
	names []string
}

func (t tagTable[T]) name(v T) string {
	if v < 0 || int(v) >= len(t.names) {
		return fmt.Sprintf("%s(%d)", t.kind, int64(v))
	}
	return t.names[v]
}

func (t tagTable[T]) valid(v T) bool {
	return v >= 0 && int(v) < len(t.names)
}

func (t tagTable[T]) all() []T {
	out := make([]T, len(t.names))
	for i := range t.names {
		out[i] = T(i)
	}
	return out
}

func (t tagTable[T]) fromBits(bits int64) (T, error) {
	if bits < 0 || bits >= int64(len(t.names)) {
		return 0, fmt.Errorf("%w: %s %d", ErrUnknownTag, t.kind, bits)
	}
	return T(bits), nil
}

func (t tagTable[T]) parse(name string) (T, error) {
	for i, n := range t.names {
		if n == name {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownTag, t.kind, name)
}

func (t tagTable[T]) marshalJSON(v T) ([]byte, error) {
	if !t.valid(v) {
		return nil, fmt.Errorf("%w: %s %d", ErrUnknownTag, t.kind, int64(v))
	}
	return json.Marshal(t.names[v])
}

func (t tagTable[T]) unmarshalJSON(data []byte) (T, error) {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return 0, fmt.Errorf("%s: %w", t.kind, err)
	}
	return t.parse(name)
}

func (t tagTable[T]) scan(src any) (T, error) {
	switch v := src.(type) {
	case int64:
		return t.fromBits(v)
	case int32:
		return t.fromBits(int64(v))
	case int:
		return t.fromBits(int64(v))
	case []byte:
		var bits int64
		if _, err := fmt.Sscan(string(v), &bits); err != nil {
			return 0, fmt.Errorf("%s: scan %q: %w", t.kind, v, err)
		}
		return t.fromBits(bits)
	case nil:
		return 0, fmt.Errorf("%w: %s NULL", ErrUnknownTag, t.kind)
	default:
		return 0, fmt.Errorf("%s: unsupported scan type %T", t.kind, src)
	}
}

func (t tagTable[T]) value(v T) (driver.Value, error) {
	if !t.valid(v) {
		return nil, fmt.Errorf("%w: %s %d", ErrUnknownTag, t.kind, int64(v))
	}
	return int64(v), nil
}

// UserTy classifies users.
type UserTy int64

const (
	// UserUnregistered must confirm registration.
	UserUnregistered UserTy = iota
	// UserUnverified awaits moderator confirmation.
	UserUnverified
	// UserNormal is a regular user.
	UserNormal
)

var userTys = tagTable[UserTy]{kind: "UserTy", names: []string{"Unregistered", "Unverified", "Normal"}}

// UserTys lists every UserTy.
func UserTys() []UserTy { return userTys.all() }

// ParseUserTy resolves a variant name such as "Normal".
func ParseUserTy(name string) (UserTy, error) { return userTys.parse(name) }

// UserTyFromBits decodes the stored integer form.
func UserTyFromBits(bits int64) (UserTy, error) { return userTys.fromBits(bits) }

func (t UserTy) String() string                { return userTys.name(t) }
func (t UserTy) Valid() bool                   { return userTys.valid(t) }
func (t UserTy) MarshalJSON() ([]byte, error)  { return userTys.marshalJSON(t) }
func (t UserTy) Value() (driver.Value, error)  { return userTys.value(t) }
func (t *UserTy) UnmarshalJSON(b []byte) error { return assign(t, b, userTys.unmarshalJSON) }
func (t *UserTy) Scan(src any) error           { return assign(t, src, userTys.scan) }

// UserTokenTy classifies bearer tokens and fixes their lifetime.
type UserTokenTy int64

const (
	// TokenUserLimited is the long lived general session.
	TokenUserLimited UserTokenTy = iota
	// TokenTelegramAuthorization is the short lived session issued through the bridge.
	TokenTelegramAuthorization
)

var userTokenTys = tagTable[UserTokenTy]{kind: "UserTokenTy", names: []string{"UserLimited", "TelegramAuthorization"}}

// UserTokenTys lists every UserTokenTy.
func UserTokenTys() []UserTokenTy { return userTokenTys.all() }

// ParseUserTokenTy resolves a variant name such as "UserLimited".
func ParseUserTokenTy(name string) (UserTokenTy, error) { return userTokenTys.parse(name) }

// UserTokenTyFromBits decodes the stored integer form.
func UserTokenTyFromBits(bits int64) (UserTokenTy, error) { return userTokenTys.fromBits(bits) }

// LifetimeMillis is how long a token of this type lives, in milliseconds.
func (t UserTokenTy) LifetimeMillis() int64 {
	switch t {
	case TokenUserLimited:
		return 999999999
	case TokenTelegramAuthorization:
		return 20 * 60 * 1000
	default:
		return 0
	}
}

func (t UserTokenTy) String() string                { return userTokenTys.name(t) }
func (t UserTokenTy) Valid() bool                   { return userTokenTys.valid(t) }
func (t UserTokenTy) MarshalJSON() ([]byte, error)  { return userTokenTys.marshalJSON(t) }
func (t UserTokenTy) Value() (driver.Value, error)  { return userTokenTys.value(t) }
func (t *UserTokenTy) UnmarshalJSON(b []byte) error { return assign(t, b, userTokenTys.unmarshalJSON) }
func (t *UserTokenTy) Scan(src any) error           { return assign(t, src, userTokenTys.scan) }

// ProjectTy classifies projects.
type ProjectTy int64

const (
	// ProjectLegacy is the only project type so far.
	ProjectLegacy ProjectTy = iota
)

var projectTys = tagTable[ProjectTy]{kind: "ProjectTy", names: []string{"Legacy"}}

// ProjectTys lists every ProjectTy.
func ProjectTys() []ProjectTy { return projectTys.all() }

// ParseProjectTy resolves a variant name such as "Legacy".
func ParseProjectTy(name string) (ProjectTy, error) { return projectTys.parse(name) }

// ProjectTyFromBits decodes the stored integer form.
func ProjectTyFromBits(bits int64) (ProjectTy, error) { return projectTys.fromBits(bits) }

func (t ProjectTy) String() string                { return projectTys.name(t) }
func (t ProjectTy) Valid() bool                   { return projectTys.valid(t) }
func (t ProjectTy) MarshalJSON() ([]byte, error)  { return projectTys.marshalJSON(t) }
func (t ProjectTy) Value() (driver.Value, error)  { return projectTys.value(t) }
func (t *ProjectTy) UnmarshalJSON(b []byte) error { return assign(t, b, projectTys.unmarshalJSON) }
func (t *ProjectTy) Scan(src any) error           { return assign(t, src, projectTys.scan) }

func assign[T any, S any](dst *T, src S, decode func(S) (T, error)) error {
	v, err := decode(src)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

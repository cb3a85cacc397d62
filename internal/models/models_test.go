package models

import (
	"testing"

	v1 "github.com/dpweb/dpweb/pkg/api/v1"
)

func TestTableNames(t *testing.T) {
	cases := map[string]interface{ TableName() string }{
		"user":       User{},
		"usertoken":  UserToken{},
		"userinvite": UserInvite{},
		"project":    Project{},
	}
	for want, model := range cases {
		if got := model.TableName(); got != want {
			t.Fatalf("expected table %q, got %q", want, got)
		}
	}
}

func TestToAPI(t *testing.T) {
	user := User{ID: 3, Ty: v1.UserNormal, Username: "bob", TelegramID: 42}
	if got := user.ToAPI(); got != (v1.User{ID: 3, Ty: v1.UserNormal, Username: "bob", TelegramID: 42}) {
		t.Fatalf("unexpected user %+v", got)
	}

	token := UserToken{ID: 1, UserID: 3, Token: "s", IssuedAt: 10, Ty: v1.TokenTelegramAuthorization, Scope: 5}
	apiToken := token.ToAPI()
	if apiToken.UserID != 3 || apiToken.Ty != v1.TokenTelegramAuthorization || apiToken.Scope != 5 {
		t.Fatalf("unexpected token %+v", apiToken)
	}
	if apiToken.ExpiresAt() != 10+v1.TokenTelegramAuthorization.LifetimeMillis() {
		t.Fatalf("unexpected expiry %d", apiToken.ExpiresAt())
	}

	desc := "d"
	project := Project{ID: 7, Title: "tt", Descript: &desc, AuthorID: 3}
	info := project.ToAPI()
	if info.Description == nil || *info.Description != "d" || info.AuthorID != 3 || info.Ty != v1.ProjectLegacy {
		t.Fatalf("unexpected project %+v", info)
	}
}

func TestInviteClaimed(t *testing.T) {
	var invite UserInvite
	if invite.Claimed() {
		t.Fatal("fresh invite must not be claimed")
	}
	id := int64(1)
	invite.ClaimedUserID = &id
	if !invite.Claimed() {
		t.Fatal("expected invite to be claimed")
	}
}

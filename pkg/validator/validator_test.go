package validator

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type claimPayload struct {
	Invite     string `json:"invite" validate:"required"`
	Username   string `json:"username" validate:"username"`
	TelegramID int64  `json:"telegram_id" validate:"gte=0"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := claimPayload{
		Invite:     "abc",
		Username:   "alice.b0b",
		TelegramID: 0,
	}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	payload := claimPayload{
		Invite:     "",
		Username:   "alice bob",
		TelegramID: -1,
	}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	if len(vErrs) != 3 {
		t.Fatalf("expected 3 validation errors, got %d", len(vErrs))
	}

	foundUsername := false
	for _, v := range vErrs {
		if v.Field == "username" && v.Tag == "username" {
			foundUsername = true
		}
	}

	if !foundUsername {
		t.Fatal("expected username field to be present in validation errors")
	}
}

func TestIsUsername(t *testing.T) {
	cases := map[string]bool{
		"alice":                  true,
		"a.b.c":                  true,
		"User42":                 true,
		"dash-name":              true,
		"totally-valid-username": true,
		strings.Repeat("a", 200): true,
		"":                       false,
		"with space":             false,
		"not valid username":     false,
		"under_score":            false,
		"tab\t":                  false,
		"юзер":                   false,
	}
	for input, want := range cases {
		if got := IsUsername(input); got != want {
			t.Errorf("IsUsername(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestFormTagNamesFields(t *testing.T) {
	type query struct {
		Limit uint32 `form:"limit" validate:"lte=50"`
	}

	err := ValidateStruct(query{Limit: 51})
	vErrs, ok := err.(ValidationErrors)
	if !ok || len(vErrs) != 1 {
		t.Fatalf("expected one validation error, got %v", err)
	}
	if vErrs[0].Field != "limit" || vErrs[0].Param != "50" {
		t.Fatalf("unexpected failure %+v", vErrs[0])
	}
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("dpweb", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "dpweb"
	})
	if err != nil {
		t.Fatalf("register validation: %v", err)
	}

	type custom struct {
		Value string `validate:"dpweb"`
	}

	if err := ValidateStruct(custom{Value: "dpweb"}); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
	if err := ValidateStruct(custom{Value: "other"}); err == nil {
		t.Fatal("expected validation to fail for non-matching value")
	}
}

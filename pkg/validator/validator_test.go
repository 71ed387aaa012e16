package validator

import (
	"errors"
	"testing"
)

func TestValidateStruct(t *testing.T) {
	type TestStruct struct {
		VersionName string  `json:"version_name" validate:"required,max=10"`
		RoleName    string  `json:"role_name" validate:"oneof=TL|MB"`
		Question    *string `json:"question" validate:"required"`
		Nickname    string  `validate:"min=3"`
	}

	question := "Pet?"

	tests := []struct {
		name       string
		input      TestStruct
		wantFields []string
	}{
		{
			name:  "valid struct",
			input: TestStruct{VersionName: "v1", RoleName: "TL", Question: &question, Nickname: "abc"},
		},
		{
			name:       "missing required field",
			input:      TestStruct{VersionName: "  ", Question: &question, Nickname: "abc"},
			wantFields: []string{"version_name"},
		},
		{
			name:       "too long",
			input:      TestStruct{VersionName: "01234567890", Question: &question, Nickname: "abc"},
			wantFields: []string{"version_name"},
		},
		{
			name:       "invalid choice and nil pointer",
			input:      TestStruct{VersionName: "v1", RoleName: "XX", Nickname: "abc"},
			wantFields: []string{"role_name", "question"},
		},
		{
			name:       "untagged field uses go name",
			input:      TestStruct{VersionName: "v1", Question: &question, Nickname: "ab"},
			wantFields: []string{"Nickname"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}

			var errs Errors
			if !errors.As(err, &errs) {
				t.Fatalf("Expected Errors, got %T (%v)", err, err)
			}
			if len(errs) != len(tt.wantFields) {
				t.Errorf("Expected %d failing fields, got %v", len(tt.wantFields), errs)
			}
			for _, f := range tt.wantFields {
				if len(errs[f]) == 0 {
					t.Errorf("Expected an error for %s, got %v", f, errs)
				}
			}
		})
	}
}

func TestValidateStructRejectsNonStruct(t *testing.T) {
	if err := ValidateStruct("nope"); err == nil {
		t.Error("Expected error for non-struct input")
	}
}

func TestErrorsRenderingIsSorted(t *testing.T) {
	errs := Errors{}
	errs.Add("state", "bad")
	errs.Add("role_name", "worse")
	if got := errs.Error(); got != "role_name: worse; state: bad" {
		t.Errorf("Unexpected rendering: %q", got)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     string
	}{
		{"@Abcde12345", ""},
		{"Abcd1234!", ""},
		{"ABCDE12345@", PasswordLowercase},
		{"abcde12345@", PasswordUppercase},
		{"Abcdefghi@", PasswordDigit},
		{"Abcde12345", PasswordSpecial},
		{"Abc de123@", PasswordSpace},
		{"Ab1@", PasswordLength},
		{"@Abcde1234567", PasswordLength},
		{"@Abcde12", ""},
		{"@Abcde123456", ""},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.want == "" {
				if err != nil {
					t.Errorf("Expected %q to pass, got %v", tt.password, err)
				}
				return
			}
			if err == nil || err.Error() != tt.want {
				t.Errorf("ValidatePassword(%q) = %v, want %q", tt.password, err, tt.want)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  v1\x00 "); got != "v1" {
		t.Errorf("SanitizeString = %q", got)
	}
}

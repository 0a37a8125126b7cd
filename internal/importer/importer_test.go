package importer

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	input := "Email, Role ,password,name\n" +
		"ada@crm.test,agent,secret1,Ada\n" +
		"ben@crm.test,manager,secret2,Ben\n"

	records, err := Parse(strings.NewReader(input), "csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Email != "ada@crm.test" || records[0].Role != "agent" || records[0].Password != "secret1" || records[0].Name != "Ada" {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1].Phone != "" {
		t.Errorf("phone = %q, want empty for absent column", records[1].Phone)
	}
}

func TestParseCSVMissingColumn(t *testing.T) {
	input := "email,name\nada@crm.test,Ada\n"

	if _, err := Parse(strings.NewReader(input), "csv"); err == nil {
		t.Fatal("expected error for missing password/role columns")
	}
}

func TestParseJSON(t *testing.T) {
	input := `[
		{"email":"ada@crm.test","password":"secret1","role":"agent","name":"Ada"},
		{"email":"ben@crm.test","password":"secret2","role":"admin"}
	]`

	records, err := Parse(strings.NewReader(input), "json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[1].Email != "ben@crm.test" || records[1].Role != "admin" {
		t.Errorf("records[1] = %+v", records[1])
	}
}

func TestParseJSONRejectsObject(t *testing.T) {
	if _, err := Parse(strings.NewReader(`{"email":"x"}`), "json"); err == nil {
		t.Fatal("expected error for non-array json")
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	if _, err := Parse(strings.NewReader(""), "xml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParseFilename(t *testing.T) {
	records, err := ParseFilename(strings.NewReader("email,password,role\nada@crm.test,pw,agent\n"), "Users.CSV")
	if err != nil {
		t.Fatalf("ParseFilename: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}

	if _, err := ParseFilename(strings.NewReader(""), "users.xlsx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

package pubmed

import (
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestBuildTerm_JoinsTokensWithAND(t *testing.T) {
	term := BuildTerm("diabetes treatment", fixedNow)

	if !strings.HasPrefix(term, "diabetes+AND+treatment+AND+") {
		t.Errorf("term = %q, want diabetes+AND+treatment+AND+<date filter> prefix", term)
	}
}

func TestBuildTerm_StripsPunctuation(t *testing.T) {
	term := BuildTerm("covid-19, (vaccine)!", fixedNow)

	// The hyphen, comma, parens, and bang are stripped; the digits stay.
	if !strings.HasPrefix(term, "covid19+AND+vaccine+AND+") {
		t.Errorf("term = %q, want covid19+AND+vaccine prefix", term)
	}
}

func TestBuildTerm_KeepsQuotes(t *testing.T) {
	term := BuildTerm(`"heart failure"`, fixedNow)

	if !strings.HasPrefix(term, "%22heart+AND+failure%22+AND+") {
		t.Errorf("term = %q, quotes should survive sanitization and be encoded", term)
	}
}

func TestBuildTerm_DateWindow(t *testing.T) {
	term := BuildTerm("diabetes", fixedNow)

	// Five years before the fixed clock.
	if !strings.Contains(term, "2020%2F06%2F15") {
		t.Errorf("term = %q, want encoded 2020/06/15 window start", term)
	}
	if !strings.Contains(term, "%223000%22") {
		t.Errorf("term = %q, want open-ended \"3000\" window end", term)
	}
	if !strings.Contains(term, "%5BDate+-+Publication%5D") {
		t.Errorf("term = %q, want encoded [Date - Publication] field tag", term)
	}
}

func TestBuildTerm_Deterministic(t *testing.T) {
	a := BuildTerm("ai in cardiology", fixedNow)
	b := BuildTerm("ai in cardiology", fixedNow)
	if a != b {
		t.Errorf("same query and clock produced different terms:\n%q\n%q", a, b)
	}
}

func TestBuildTerm_EmptyQuery(t *testing.T) {
	term := BuildTerm("?!", fixedNow)

	// Nothing but the date filter remains.
	if strings.Contains(term, "+AND+") {
		t.Errorf("term = %q, want only the date filter", term)
	}
	if !strings.Contains(term, "2020%2F06%2F15") {
		t.Errorf("term = %q, want the date filter", term)
	}
}

package holdex

import "testing"

func classify(text string) (map[int]bool, []Line) {
	lines := SplitLines(text)
	cls := summaryClassifier{cfg: DefaultConfig().withDefaults()}
	return cls.excluded(lines), lines
}

func TestSummaryClassifier_totalKeywordTaintsOwnLine(t *testing.T) {
	excluded, _ := classify("Value: 200'288.00\nTOTAL PORTFOLIO VALUE: 399'368.00 USD")
	if !excluded[1] {
		t.Error("total line not excluded")
	}
	if excluded[0] {
		t.Error("detail row adjacent to the total line was swallowed")
	}
}

func TestSummaryClassifier_keywordNumberOnNextLine(t *testing.T) {
	excluded, _ := classify("Grand Total\n399'368.00 USD\nsomething else")
	if !excluded[1] {
		t.Error("numeric line following the bare keyword line not excluded")
	}
}

func TestSummaryClassifier_sectionEndsOnBlankRun(t *testing.T) {
	text := "Asset Allocation\nBonds 60%\nEquities 40%\n\n\nDETAIL ROWS START HERE"
	excluded, lines := classify(text)
	for i := 0; i <= 4; i++ {
		if !excluded[i] {
			t.Errorf("line %d of the summary section not excluded", i)
		}
	}
	last := lines[len(lines)-1].Index
	if excluded[last] {
		t.Error("line after the blank run wrongly excluded")
	}
}

func TestSummaryClassifier_sectionEndsOnKeyword(t *testing.T) {
	text := "Summary of assets\nBonds 60%\nEnd of summary\nDETAIL"
	excluded, _ := classify(text)
	if !excluded[0] || !excluded[1] || !excluded[2] {
		t.Error("summary section span incomplete")
	}
	if excluded[3] {
		t.Error("line after the end keyword wrongly excluded")
	}
}

func TestSummaryClassifier_unterminatedSectionRunsToEnd(t *testing.T) {
	excluded, lines := classify("Asset Allocation\nBonds 60%\nEquities 40%")
	for _, l := range lines {
		if !excluded[l.Index] {
			t.Errorf("line %d not excluded in unterminated section", l.Index)
		}
	}
}

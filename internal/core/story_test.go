package core

import "testing"

func TestActionAllows(t *testing.T) {
	statuses := []Status{StatusDetected, StatusDrafting, StatusReview, StatusPublished, StatusArchived}

	testCases := []struct {
		action  Action
		allowed map[Status]bool
	}{
		{ActionApprove, map[Status]bool{StatusDetected: true}},
		{ActionPublish, map[Status]bool{StatusReview: true}},
		{ActionReject, map[Status]bool{StatusReview: true}},
		{ActionSkip, map[Status]bool{StatusDetected: true, StatusReview: true}},
		{Action("delete"), map[Status]bool{}},
	}

	for _, tc := range testCases {
		for _, s := range statuses {
			if got := tc.action.Allows(s); got != tc.allowed[s] {
				t.Errorf("%s.Allows(%s) = %v, want %v", tc.action, s, got, tc.allowed[s])
			}
		}
	}
}

func TestStatusValid(t *testing.T) {
	if !StatusReview.Valid() {
		t.Error("review should be valid")
	}
	if Status("pending").Valid() {
		t.Error("pending should not be valid")
	}
}

func TestSlugify(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"NIH Cuts Indirect Cost Rates to 15%", "nih-cuts-indirect-cost-rates-to-15"},
		{"  What the New NOFO Means for You!  ", "what-the-new-nofo-means-for-you"},
		{"Déjà vu: RFPs & grants", "d-j-vu-rfps-grants"},
		{"---", ""},
		{"", ""},
	}

	for _, tc := range testCases {
		if got := Slugify(tc.input); got != tc.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestSlugify_Truncates(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "grant "
	}
	slug := Slugify(long)
	if len(slug) > maxSlugLength {
		t.Errorf("Slug length %d exceeds %d", len(slug), maxSlugLength)
	}
	if slug[len(slug)-1] == '-' {
		t.Errorf("Slug should not end with a dash: %q", slug)
	}
}

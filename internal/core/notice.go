package core

// ReviewNotice is what a reviewer receives once a draft reaches review.
type ReviewNotice struct {
	Story      Story
	PublishURL string
	RejectURL  string
	SkipURL    string

	// Warnings are advisory editorial checks; they never block publishing.
	Warnings []string
}

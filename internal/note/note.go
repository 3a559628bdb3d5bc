package note

import "time"

// storageKey is the blob key notes live under in the local store.
const storageKey = "ctrlfund_notes"

type Note struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	IsArchived bool      `json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func parseFixtureTime(value string) time.Time {
	t, _ := time.Parse(time.RFC3339, value)
	return t
}

// seedNotes is the dataset a fresh installation starts with.
func seedNotes() []Note {
	return []Note{
		{
			ID:        "1",
			UserID:    "1",
			Title:     "Project Meeting Notes",
			Content:   "Discussed project timeline and deliverables. Next meeting scheduled for next week.",
			CreatedAt: parseFixtureTime("2024-01-15T10:00:00Z"),
			UpdatedAt: parseFixtureTime("2024-01-15T10:00:00Z"),
		},
		{
			ID:        "2",
			UserID:    "1",
			Title:     "Budget Planning",
			Content:   "Need to review Q1 budget allocations and plan for Q2 expenses.",
			CreatedAt: parseFixtureTime("2024-01-14T14:30:00Z"),
			UpdatedAt: parseFixtureTime("2024-01-14T14:30:00Z"),
		},
		{
			ID:        "3",
			UserID:    "2",
			Title:     "Team Feedback",
			Content:   "Collected feedback from team members on current processes and improvements.",
			CreatedAt: parseFixtureTime("2024-01-13T09:15:00Z"),
			UpdatedAt: parseFixtureTime("2024-01-13T09:15:00Z"),
		},
	}
}

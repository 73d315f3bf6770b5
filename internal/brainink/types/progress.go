package types

// Rank is a progression tier.
type Rank struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Tier       string `json:"tier"`
	Level      int    `json:"level"`
	RequiredXP int64  `json:"required_xp"`
	Emoji      string `json:"emoji,omitempty"`
}

// UserProgress is the acting user's progression summary.
type UserProgress struct {
	TotalXP            int64   `json:"total_xp"`
	CurrentRank        *Rank   `json:"current_rank,omitempty"`
	LoginStreak        int     `json:"login_streak"`
	TotalQuizCompleted int     `json:"total_quiz_completed"`
	TournamentsWon     int     `json:"tournaments_won"`
	TournamentsEntered int     `json:"tournaments_entered"`
	CoursesCompleted   int     `json:"courses_completed"`
	TimeSpentHours     float64 `json:"time_spent_hours"`
}

// ActivityStats holds the activity counters nested in UserStats.
type ActivityStats struct {
	LoginStreak        int     `json:"login_streak"`
	TotalQuizCompleted int     `json:"total_quiz_completed"`
	TournamentsWon     int     `json:"tournaments_won"`
	TournamentsEntered int     `json:"tournaments_entered"`
	CoursesCompleted   int     `json:"courses_completed"`
	TimeSpentHours     float64 `json:"time_spent_hours"`
}

// UserStats is the acting user's aggregate statistics.
type UserStats struct {
	UserID            int64         `json:"user_id"`
	Username          string        `json:"username"`
	TotalXP           int64         `json:"total_xp"`
	CurrentRank       string        `json:"current_rank"`
	AchievementsCount int           `json:"achievements_count"`
	Stats             ActivityStats `json:"stats"`
}

// Achievement is an unlockable badge. EarnedAt is nil while locked.
type Achievement struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	BadgeIcon   string     `json:"badge_icon,omitempty"`
	XPReward    int64      `json:"xp_reward"`
	EarnedAt    *Timestamp `json:"earned_at,omitempty"`
}

// IsEarned reports whether the achievement has been unlocked.
func (a Achievement) IsEarned() bool {
	return a.EarnedAt != nil && !a.EarnedAt.IsZero()
}

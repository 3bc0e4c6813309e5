package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"time"
)

// ProfileResponse excludes sensitive info like password hash
type ProfileResponse struct {
	ID                  string      `json:"id"`
	Email               string      `json:"email"`
	FullName            string      `json:"fullName"`
	AvatarURL           string      `json:"avatarUrl,omitempty"`
	Role                domain.Role `json:"role"`
	OnboardingCompleted bool        `json:"onboardingCompleted"`
	domain.StudentAttributes
	CreatedAt time.Time `json:"createdAt"`
}

// MapProfileToResponse converts a domain Profile to a ProfileResponse DTO.
func MapProfileToResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:                  p.ID.Hex(),
		Email:               p.Email,
		FullName:            p.FullName,
		AvatarURL:           p.AvatarURL,
		Role:                p.Role,
		OnboardingCompleted: p.OnboardingCompleted,
		StudentAttributes:   p.StudentAttributes,
		CreatedAt:           p.CreatedAt,
	}
}

func MapProfilesToResponse(profiles []domain.Profile) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, MapProfileToResponse(&profiles[i]))
	}
	return out
}

type SessionResponse struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	ExpiresAt    time.Time       `json:"expiresAt"`
	User         ProfileResponse `json:"user"`
}

func MapSessionToResponse(s *service.Session) SessionResponse {
	return SessionResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
		User:         MapProfileToResponse(s.Profile),
	}
}

// CommentResponse flattens the comment target into type plus the one key
// that variant carries.
type CommentResponse struct {
	ID           string             `json:"id"`
	StudentID    string             `json:"studentId"`
	Type         domain.CommentType `json:"type"`
	RoutineID    string             `json:"routineId,omitempty"`
	WeekNumber   int                `json:"weekNumber,omitempty"`
	WorkoutDayID string             `json:"workoutDayId,omitempty"`
	ExerciseID   string             `json:"exerciseId,omitempty"`
	Content      string             `json:"content"`
	CreatedAt    time.Time          `json:"createdAt"`
}

func MapCommentToResponse(c *domain.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID.Hex(),
		StudentID: c.StudentID.Hex(),
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
	if c.Target == nil {
		return resp
	}
	resp.Type = c.Target.Type()
	switch t := c.Target.(type) {
	case domain.WeekTarget:
		resp.RoutineID, resp.WeekNumber = t.RoutineID.Hex(), t.WeekNumber
	case domain.DayTarget:
		resp.WorkoutDayID = t.WorkoutDayID.Hex()
	case domain.ExerciseTarget:
		resp.ExerciseID = t.ExerciseID.Hex()
	}
	return resp
}

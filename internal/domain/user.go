package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles. A profile carries exactly one.
const (
	RoleStudent Role = "student"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTrainer, RoleAdmin:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

func (l ExperienceLevel) Valid() bool {
	return l == ExperienceBeginner || l == ExperienceIntermediate || l == ExperienceAdvanced
}

// StudentAttributes is the optional evaluation data collected for students
// during onboarding. Every field is optional.
type StudentAttributes struct {
	Objective        *string          `bson:"objective,omitempty" json:"objective,omitempty"`
	BirthDate        *time.Time       `bson:"birthDate,omitempty" json:"birthDate,omitempty"`
	Gender           *Gender          `bson:"gender,omitempty" json:"gender,omitempty"`
	HeightCM         *float64         `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	WeightKG         *float64         `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	ExperienceLevel  *ExperienceLevel `bson:"experienceLevel,omitempty" json:"experienceLevel,omitempty"`
	Injuries         *string          `bson:"injuries,omitempty" json:"injuries,omitempty"`
	MedicalNotes     *string          `bson:"medicalNotes,omitempty" json:"medicalNotes,omitempty"`
	DesiredFrequency *int             `bson:"desiredFrequency,omitempty" json:"desiredFrequency,omitempty"`
	Notes            *string          `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Profile represents a user account. The role claim issued at sign-up is
// mirrored here and is the source of truth for authorization.
type Profile struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email               string             `bson:"email" json:"email"` // unique
	FullName            string             `bson:"fullName" json:"fullName"`
	AvatarURL           string             `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	PasswordHash        string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role                Role               `bson:"role" json:"role"`
	OnboardingCompleted bool               `bson:"onboardingCompleted" json:"onboardingCompleted"`
	StudentAttributes   `bson:",inline"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (p *Profile) IsTrainer() bool {
	return p.Role == RoleTrainer
}

func (p *Profile) IsStudent() bool {
	return p.Role == RoleStudent
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

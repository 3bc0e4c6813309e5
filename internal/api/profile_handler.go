package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService service.ProfileService
	adminService   service.AdminService
}

func NewProfileHandler(profileService service.ProfileService, adminService service.AdminService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, adminService: adminService}
}

// UpdateProfileRequest mirrors service.ProfilePatch; absent fields are untouched.
type UpdateProfileRequest struct {
	FullName  *string `json:"fullName"`
	AvatarURL *string `json:"avatarUrl" binding:"omitempty,url"`

	Objective        *string                 `json:"objective"`
	BirthDate        *time.Time              `json:"birthDate"`
	Gender           *domain.Gender          `json:"gender" binding:"omitempty,oneof=male female other"`
	HeightCM         *float64                `json:"heightCm" binding:"omitempty,gt=0"`
	WeightKG         *float64                `json:"weightKg" binding:"omitempty,gt=0"`
	ExperienceLevel  *domain.ExperienceLevel `json:"experienceLevel" binding:"omitempty,oneof=beginner intermediate advanced"`
	Injuries         *string                 `json:"injuries"`
	MedicalNotes     *string                 `json:"medicalNotes"`
	DesiredFrequency *int                    `json:"desiredFrequency" binding:"omitempty,weekday"`
	Notes            *string                 `json:"notes"`
}

func (r UpdateProfileRequest) patch() service.ProfilePatch {
	return service.ProfilePatch{
		FullName:         r.FullName,
		AvatarURL:        r.AvatarURL,
		Objective:        r.Objective,
		BirthDate:        r.BirthDate,
		Gender:           r.Gender,
		HeightCM:         r.HeightCM,
		WeightKG:         r.WeightKG,
		ExperienceLevel:  r.ExperienceLevel,
		Injuries:         r.Injuries,
		MedicalNotes:     r.MedicalNotes,
		DesiredFrequency: r.DesiredFrequency,
		Notes:            r.Notes,
	}
}

type CreateUserRequest struct {
	FullName string      `json:"fullName" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     domain.Role `json:"role" binding:"required,role"`
}

type ChangeRoleRequest struct {
	Role domain.Role `json:"role" binding:"required,role"`
}

// GetProfile godoc
// @Summary Get a profile
// @Description Owners, the student's trainers and admins can read a profile.
// @Tags Profiles
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Success 200 {object} ProfileResponse
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Profile not found"
// @Router /profiles/{id} [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	profile, err := h.profileService.GetProfile(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// UpdateProfile godoc
// @Summary Update a profile and, for students, their evaluation data
// @Tags Profiles
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Param profile body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} ProfileResponse
// @Router /profiles/{id} [patch]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	profile, err := h.profileService.UpdateProfile(c.Request.Context(), actor, id, req.patch())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// CompleteOnboarding godoc
// @Summary Mark the caller's onboarding as done
// @Tags Profiles
// @Security BearerAuth
// @Router /me/onboarding [post]
func (h *ProfileHandler) CompleteOnboarding(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	profile, err := h.profileService.CompleteOnboarding(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// ListUsers godoc
// @Summary List users, optionally filtered by role
// @Tags Admin
// @Security BearerAuth
// @Param role query string false "student, trainer or admin"
// @Router /admin/users [get]
func (h *ProfileHandler) ListUsers(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	role := domain.Role(c.Query("role"))
	if role != "" && !role.Valid() {
		abortWithError(c, http.StatusBadRequest, "Invalid role filter")
		return
	}
	users, err := h.adminService.ListUsers(c.Request.Context(), actor, role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProfilesToResponse(users))
}

// CreateUser godoc
// @Summary Create an account with any role
// @Tags Admin
// @Security BearerAuth
// @Router /admin/users [post]
func (h *ProfileHandler) CreateUser(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	profile, err := h.adminService.CreateUser(c.Request.Context(), actor, service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapProfileToResponse(profile))
}

// ChangeRole godoc
// @Summary Replace a user's role
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Router /admin/users/{id}/role [put]
func (h *ProfileHandler) ChangeRole(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	profile, err := h.adminService.ChangeRole(c.Request.Context(), actor, id, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// Report godoc
// @Summary Usage counts for the admin dashboard
// @Tags Admin
// @Security BearerAuth
// @Success 200 {object} service.Report
// @Router /admin/reports [get]
func (h *ProfileHandler) Report(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	report, err := h.adminService.Report(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

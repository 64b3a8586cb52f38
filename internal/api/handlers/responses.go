package handlers

import (
	"time"

	"github.com/kimbia-events/server/internal/domain/categories"
	"github.com/kimbia-events/server/internal/domain/marathons"
	"github.com/kimbia-events/server/internal/domain/payments"
	"github.com/kimbia-events/server/internal/domain/sponsors"
	"github.com/kimbia-events/server/internal/domain/users"
)

type userResponse struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	FullName    string  `json:"full_name"`
	Phone       *string `json:"phone"`
	Gender      *string `json:"gender"`
	IsActive    bool    `json:"is_active"`
	DateJoined  string  `json:"date_joined"`
	IsAdmin     bool    `json:"is_admin"`
	IsOrganizer bool    `json:"is_organizer"`
	IsClient    bool    `json:"is_client"`
}

func toUserResponse(u *users.User) userResponse {
	var gender *string
	if u.Gender != nil {
		value := string(*u.Gender)
		gender = &value
	}
	return userResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		Role:        string(u.Role),
		FullName:    u.FullName,
		Phone:       u.Phone,
		Gender:      gender,
		IsActive:    u.IsActive,
		DateJoined:  u.DateJoined.Format(time.RFC3339),
		IsAdmin:     u.IsAdmin(),
		IsOrganizer: u.IsOrganizer(),
		IsClient:    u.IsClient(),
	}
}

type categoryResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Marathon string  `json:"marathon"`
}

func toCategoryResponse(c *categories.Category) categoryResponse {
	return categoryResponse{
		ID:       c.ID.String(),
		Name:     string(c.Name),
		Price:    c.Price,
		Currency: string(c.Currency),
		Marathon: c.MarathonID.String(),
	}
}

type sponsorResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Marathon string `json:"marathon"`
}

func toSponsorResponse(s *sponsors.Sponsor) sponsorResponse {
	return sponsorResponse{
		ID:       s.ID.String(),
		Name:     s.Name,
		Marathon: s.MarathonID.String(),
	}
}

type organizerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type marathonResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Theme      *string            `json:"theme"`
	Organizer  organizerResponse  `json:"organizer"`
	StartDate  string             `json:"start_date"`
	EndDate    string             `json:"end_date"`
	Categories []categoryResponse `json:"categories"`
	Sponsors   []sponsorResponse  `json:"sponsors"`
}

func toMarathonResponse(m *marathons.Marathon) marathonResponse {
	response := marathonResponse{
		ID:    m.ID.String(),
		Name:  m.Name,
		Theme: m.Theme,
		Organizer: organizerResponse{
			ID:       m.Organizer.ID.String(),
			Username: m.Organizer.Username,
			FullName: m.Organizer.FullName,
		},
		StartDate:  m.StartDate.Format(time.RFC3339),
		EndDate:    m.EndDate.Format(time.RFC3339),
		Categories: make([]categoryResponse, 0, len(m.Categories)),
		Sponsors:   make([]sponsorResponse, 0, len(m.Sponsors)),
	}
	for i := range m.Categories {
		response.Categories = append(response.Categories, toCategoryResponse(&m.Categories[i]))
	}
	for i := range m.Sponsors {
		response.Sponsors = append(response.Sponsors, toSponsorResponse(&m.Sponsors[i]))
	}
	return response
}

type paymentResponse struct {
	ID             string  `json:"id"`
	Marathon       string  `json:"marathon"`
	Category       string  `json:"category"`
	User           string  `json:"user"`
	Status         string  `json:"status"`
	ValidationDate *string `json:"validation_date"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func toPaymentResponse(p *payments.Payment) paymentResponse {
	var validationDate *string
	if p.ValidationDate != nil {
		value := p.ValidationDate.Format(time.RFC3339)
		validationDate = &value
	}
	return paymentResponse{
		ID:             p.ID.String(),
		Marathon:       p.MarathonID.String(),
		Category:       p.CategoryID.String(),
		User:           p.UserID.String(),
		Status:         string(p.Status),
		ValidationDate: validationDate,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}
}

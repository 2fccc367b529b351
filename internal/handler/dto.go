package handler

import (
	"github.com/msomdec/user-dashboard/internal/domain"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

func toUserDTO(u domain.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Department: u.Department,
	}
}

func toUserDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	return dtos
}

// UserFieldsDTO is the JSON body accepted on create and update.
type UserFieldsDTO struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

func (d UserFieldsDTO) toDomain() domain.UserFields {
	return domain.UserFields{
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		Email:      d.Email,
		Department: d.Department,
	}
}

func fromUserFields(f domain.UserFields) UserFieldsDTO {
	return UserFieldsDTO{
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Email:      f.Email,
		Department: f.Department,
	}
}

// ViewDTO is the JSON representation of one page of the user list.
type ViewDTO struct {
	Users      []UserDTO `json:"users"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
	Total      int       `json:"total"`
}

func toViewDTO(v domain.View, page int) ViewDTO {
	return ViewDTO{
		Users:      toUserDTOs(v.Users),
		Page:       page,
		TotalPages: v.TotalPages,
		Total:      v.Total,
	}
}

// dashboardSignals mirrors the datastar signals held by the dashboard page.
type dashboardSignals struct {
	Search     string        `json:"search"`
	Department string        `json:"department"`
	Page       int           `json:"page"`
	Form       UserFieldsDTO `json:"form"`
}

func (s dashboardSignals) query() domain.Query {
	return domain.Query{Search: s.Search, Department: s.Department, Page: max(s.Page, 1)}
}
